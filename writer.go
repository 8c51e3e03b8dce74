package rleseq

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// The compression codec to use. Compressed streams wrap the
	// canonical layout and must be read with the same codec.
	// Default: NoCompression.
	Compression Compression

	// BufferSize is the number of bytes buffered before they are
	// passed on to the underlying writer.
	// Default: 64KiB.
	BufferSize int

	// Logger receives debug information.
	// Default: log.NewNopLogger().
	Logger log.Logger
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if !oo.Compression.isValid() {
		oo.Compression = NoCompression
	}
	if oo.BufferSize < 1 {
		oo.BufferSize = 1 << 16
	}
	if oo.Logger == nil {
		oo.Logger = log.NewNopLogger()
	}

	return &oo
}

// Writer instances can write containers.
type Writer[T Fixed] struct {
	w  io.Writer      // destination, possibly compressing
	cw io.WriteCloser // compressing layer, if any
	o  *WriterOptions

	buf []byte // plain buffer
	n   int64  // number of bytes flushed
	err error  // first write error, sticky
}

// NewWriter wraps a writer and returns a Writer.
func NewWriter[T Fixed](w io.Writer, o *WriterOptions) (*Writer[T], error) {
	o = o.norm()

	cw, err := compressWriter(w, o.Compression)
	if err != nil {
		return nil, err
	}

	wr := &Writer[T]{w: w, o: o, buf: make([]byte, 0, o.BufferSize)}
	if cw != nil {
		wr.w, wr.cw = cw, cw
	}
	return wr, nil
}

func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case NoCompression:
		return nil, nil
	case SnappyCompression:
		return snappy.NewBufferedWriter(w), nil
	case ZstdCompression:
		return zstd.NewWriter(w)
	case LZ4Compression:
		return lz4.NewWriter(w), nil
	}
	return nil, errBadCompression
}

// Write writes a container together with its metadata.
func (w *Writer[T]) Write(c *Container[T], meta []int32) error {
	if w.buf == nil {
		return errClosed
	}
	if w.err != nil {
		return w.err
	}

	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(len(meta)))
	for _, m := range meta {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(m))
		if err := w.maybeFlush(); err != nil {
			return err
		}
	}

	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(len(c.chunks)))
	w.buf = binary.LittleEndian.AppendUint64(w.buf, c.size)

	var err error
	for _, ch := range c.chunks {
		if w.buf, err = appendChunk(w.buf, ch); err != nil {
			return err
		}
		if err := w.maybeFlush(); err != nil {
			return err
		}
	}

	level.Debug(w.o.Logger).Log(
		"msg", "wrote container",
		"chunks", len(c.chunks),
		"values", c.size,
		"meta", len(meta),
		"record_size", chunkSize[T](),
		"compression", w.o.Compression,
	)
	return nil
}

// Close flushes buffered data and closes the writer.
// It does not close the underlying writer.
func (w *Writer[T]) Close() error {
	if w.buf == nil {
		return errClosed
	}
	if err := w.flush(); err != nil {
		if w.cw != nil {
			_ = w.cw.Close()
		}
		w.buf = nil
		return err
	}
	if w.cw != nil {
		if err := w.cw.Close(); err != nil {
			return fmt.Errorf("rleseq: close %s stream: %w", w.o.Compression, err)
		}
	}

	level.Debug(w.o.Logger).Log("msg", "closed writer", "bytes", w.n)
	w.buf = nil
	return nil
}

func (w *Writer[T]) maybeFlush() error {
	if len(w.buf) < w.o.BufferSize {
		return nil
	}
	return w.flush()
}

func (w *Writer[T]) flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.buf) == 0 {
		return nil
	}

	n, err := w.w.Write(w.buf)
	w.n += int64(n)
	if err != nil {
		w.err = fmt.Errorf("rleseq: write: %w", err)
		return w.err
	}
	w.buf = w.buf[:0]
	return nil
}
