package rleseq

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// chunkSize returns the packed size of a chunk record.
func chunkSize[T Fixed]() int {
	var zero T
	return 16 + binary.Size(zero)
}

func appendChunk[T Fixed](dst []byte, ch Chunk[T]) ([]byte, error) {
	dst = binary.LittleEndian.AppendUint64(dst, ch.Repetitions)
	dst, err := binary.Append(dst, binary.LittleEndian, ch.Value)
	if err != nil {
		return dst, err
	}
	return binary.LittleEndian.AppendUint64(dst, ch.PrevBlockEnd), nil
}

func parseChunk[T Fixed](src []byte) (Chunk[T], error) {
	var ch Chunk[T]

	ch.Repetitions = binary.LittleEndian.Uint64(src)
	n, err := binary.Decode(src[8:], binary.LittleEndian, &ch.Value)
	if err != nil {
		return ch, err
	}
	ch.PrevBlockEnd = binary.LittleEndian.Uint64(src[8+n:])
	return ch, nil
}

// EncodedSize returns the number of bytes the canonical layout of a
// container occupies, given the number of metadata values.
func EncodedSize[T Fixed](c *Container[T], numMeta int) int64 {
	return 8 + 4*int64(numMeta) + 16 + int64(len(c.chunks))*int64(chunkSize[T]())
}

// Stats summarises the size of a container.
type Stats struct {
	NumChunks   int    // number of chunks
	Len         uint64 // number of values
	RawSize     int64  // bytes of the decoded values
	EncodedSize int64  // bytes of the canonical layout
}

// Ratio returns EncodedSize/RawSize, or 0 for empty containers.
func (s Stats) Ratio() float64 {
	if s.RawSize == 0 {
		return 0
	}
	return float64(s.EncodedSize) / float64(s.RawSize)
}

// ContainerStats returns size statistics of a container stored with numMeta
// metadata values.
func ContainerStats[T Fixed](c *Container[T], numMeta int) Stats {
	var zero T
	return Stats{
		NumChunks:   len(c.chunks),
		Len:         c.size,
		RawSize:     int64(c.size) * int64(binary.Size(zero)),
		EncodedSize: EncodedSize(c, numMeta),
	}
}

// Marshal returns the canonical binary representation of a container and
// its metadata.
func Marshal[T Fixed](c *Container[T], meta []int32) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, EncodedSize(c, len(meta))))
	w, err := NewWriter[T](buf, nil)
	if err != nil {
		return nil, err
	}
	if err := w.Write(c, meta); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses data produced by Marshal.
func Unmarshal[T Fixed](data []byte) (*Container[T], []int32, error) {
	br := bytes.NewReader(data)
	r, err := NewReader[T](br, nil)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	c := New[T](nil)
	meta, err := r.Read(c)
	if errors.Is(err, io.EOF) {
		return nil, nil, io.ErrUnexpectedEOF
	} else if err != nil {
		return nil, nil, err
	}
	if br.Len() != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrBadFormat, br.Len())
	}
	return c, meta, nil
}

// WriteFile writes a container and its metadata to a named file.
func WriteFile[T Fixed](name string, c *Container[T], meta []int32, o *WriterOptions) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := NewWriter[T](f, o)
	if err != nil {
		return err
	}
	if err := w.Write(c, meta); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadFile reads a container and its metadata from a named file.
func ReadFile[T Fixed](name string, o *ReaderOptions) (*Container[T], []int32, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r, err := NewReader[T](f, o)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	c := New[T](nil)
	meta, err := r.Read(c)
	if errors.Is(err, io.EOF) {
		return nil, nil, io.ErrUnexpectedEOF
	} else if err != nil {
		return nil, nil, err
	}
	return c, meta, nil
}
