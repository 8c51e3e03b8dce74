package rleseq

import "errors"

// ErrNotFound is returned when an index is past the end of a container.
var ErrNotFound = errors.New("rleseq: not found")

// ErrInvariant is returned when a container's chunk list is inconsistent.
var ErrInvariant = errors.New("rleseq: invariant violation")

// ErrBadFormat is returned when a stream cannot be parsed.
var ErrBadFormat = errors.New("rleseq: bad format")

var (
	errClosed         = errors.New("rleseq: is closed")
	errBadCompression = errors.New("rleseq: bad compression codec")
	errReleased       = errors.New("rleseq: iterator was released")
)

// Chunk is a single run of identical values.
type Chunk[T any] struct {
	Repetitions  uint64 // number of consecutive occurrences, always >= 1
	Value        T      // the repeated value
	PrevBlockEnd uint64 // logical index of the first occurrence
}

// End returns the logical index just past the chunk.
func (c Chunk[T]) End() uint64 { return c.PrevBlockEnd + c.Repetitions }

// Run is a (count, value) pair used for bulk construction.
type Run[T any] struct {
	Count uint64
	Value T
}

// Fixed is the set of value types that can be persisted.
// They all have a fixed binary width.
type Fixed interface {
	~bool |
		~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// --------------------------------------------------------------------

// Compression is the compression codec applied to a whole stream.
type Compression byte

func (c Compression) isValid() bool {
	return c >= NoCompression && c < unknownCompression
}

// String returns the codec name.
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case SnappyCompression:
		return "snappy"
	case ZstdCompression:
		return "zstd"
	case LZ4Compression:
		return "lz4"
	}
	return "unknown"
}

// ParseCompression parses a codec name as returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	for c := NoCompression; c < unknownCompression; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return unknownCompression, errBadCompression
}

// Supported compression codecs. NoCompression produces the canonical layout.
const (
	NoCompression Compression = iota
	SnappyCompression
	ZstdCompression
	LZ4Compression
	unknownCompression
)
