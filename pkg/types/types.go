package types

import "time"

// Defaults shared by the CLI, the configuration layer and the engine.
const (
	// DefaultSlots is how many bins a traced file is split into.
	DefaultSlots = 48
	// DefaultThreshold is the Diff above which a new trace snapshot is reported.
	DefaultThreshold = 0.1
	// DefaultCount is how many trace snapshots are taken.
	DefaultCount = 1
	// DefaultDelay is the trace sampling interval.
	DefaultDelay = time.Duration(0)
	// DefaultTopK is how many entries the top reducer keeps.
	DefaultTopK = 16
	// DefaultBlock is the read load generator request size.
	DefaultBlock = 4096
)

// NodeType classifies a directory walk event.
type NodeType int

const (
	Invalid NodeType = iota
	File
	Dir
	Link
	Other
	Access
)

func (t NodeType) String() string {
	switch t {
	case File:
		return "file"
	case Dir:
		return "dir"
	case Link:
		return "link"
	case Other:
		return "other"
	case Access:
		return "access"
	default:
		return "invalid"
	}
}
