package probe

import "github.com/srodi/cachespot/pkg/osfile"

// Opener maps the file at path for probing. The returned release func unmaps it.
type Opener func(path string) (Region, func() error, error)

// MapFile opens and maps path, closing the descriptor once mapped.
func MapFile(path string) (Region, func() error, error) {
	f, err := osfile.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	m, err := f.Map()
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}
