package report

import "fmt"

var scales = []string{"", "K", "M", "G", "T", "P", "E"}

// Human renders a byte count in the compact legacy format: plain below 1000,
// otherwise four characters of the scaled value and a decimal suffix.
func Human(v uint64) string {
	if v < 1000 {
		return fmt.Sprintf("%d", v)
	}
	p := log1000(v)
	small := float64(v / pow10(3*(p-1)))
	return fmt.Sprintf("%f", small/1000)[:4] + scales[p]
}

func log1000(v uint64) int {
	p := 0
	for v >= 1000 && p < len(scales)-1 {
		v /= 1000
		p++
	}
	return p
}

func pow10(n int) uint64 {
	r := uint64(1)
	for ; n > 0; n-- {
		r *= 10
	}
	return r
}
