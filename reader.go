package rleseq

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ReaderOptions define reader specific options.
type ReaderOptions struct {
	// The compression codec the stream was written with.
	// Default: NoCompression.
	Compression Compression

	// MaxMetadata is the maximum number of metadata values accepted
	// from a stream.
	// Default: 65536.
	MaxMetadata int

	// MaxChunks is the maximum number of chunks accepted per container.
	// Default: 0 (no limit).
	MaxChunks uint64

	// Logger receives debug information.
	// Default: log.NewNopLogger().
	Logger log.Logger
}

func (o *ReaderOptions) norm() *ReaderOptions {
	var oo ReaderOptions
	if o != nil {
		oo = *o
	}

	if !oo.Compression.isValid() {
		oo.Compression = NoCompression
	}
	if oo.MaxMetadata < 1 {
		oo.MaxMetadata = 1 << 16
	}
	if oo.Logger == nil {
		oo.Logger = log.NewNopLogger()
	}

	return &oo
}

// maxPrealloc limits allocations driven by untrusted chunk counts.
const maxPrealloc = 1 << 16

// Reader instances can read containers.
type Reader[T Fixed] struct {
	r     io.Reader
	close func()
	o     *ReaderOptions

	tmp []byte
}

// NewReader wraps a reader and returns a Reader.
func NewReader[T Fixed](r io.Reader, o *ReaderOptions) (*Reader[T], error) {
	o = o.norm()

	rd := &Reader[T]{o: o, tmp: make([]byte, chunkSize[T]())}
	switch o.Compression {
	case NoCompression:
		if _, ok := r.(io.ByteReader); ok {
			rd.r = r
		} else {
			rd.r = bufio.NewReader(r)
		}
	case SnappyCompression:
		rd.r = snappy.NewReader(r)
	case ZstdCompression:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		rd.r, rd.close = dec, dec.Close
	case LZ4Compression:
		rd.r = lz4.NewReader(r)
	default:
		return nil, errBadCompression
	}
	return rd, nil
}

// Read reads the next container into c and returns its metadata. It returns
// io.EOF if the stream is exhausted. On any error c is left empty.
func (r *Reader[T]) Read(c *Container[T]) ([]int32, error) {
	if r.tmp == nil {
		return nil, errClosed
	}

	c.Clear()
	meta, err := r.read(c)
	if err != nil {
		c.Clear()
		return nil, err
	}
	c.index.reset(c.chunks)

	level.Debug(r.o.Logger).Log(
		"msg", "read container",
		"chunks", len(c.chunks),
		"values", c.size,
		"meta", len(meta),
	)
	return meta, nil
}

// Close releases resources. It does not close the underlying reader.
func (r *Reader[T]) Close() error {
	if r.tmp == nil {
		return errClosed
	}
	if r.close != nil {
		r.close()
	}
	r.tmp = nil
	return nil
}

func (r *Reader[T]) read(c *Container[T]) ([]int32, error) {
	if _, err := io.ReadFull(r.r, r.tmp[:8]); err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, fmt.Errorf("rleseq: read metadata count: %w", err)
	}
	numMeta := binary.LittleEndian.Uint64(r.tmp)
	if numMeta > uint64(r.o.MaxMetadata) {
		return nil, fmt.Errorf("%w: %d metadata values exceed the limit of %d", ErrBadFormat, numMeta, r.o.MaxMetadata)
	}

	meta := make([]int32, 0, int(numMeta))
	for i := uint64(0); i < numMeta; i++ {
		if err := r.readFull(r.tmp[:4]); err != nil {
			return nil, fmt.Errorf("rleseq: read metadata %d: %w", i, err)
		}
		meta = append(meta, int32(binary.LittleEndian.Uint32(r.tmp)))
	}

	numChunks, err := r.readUint64()
	if err != nil {
		return nil, fmt.Errorf("rleseq: read chunk count: %w", err)
	}
	size, err := r.readUint64()
	if err != nil {
		return nil, fmt.Errorf("rleseq: read uncompressed size: %w", err)
	}
	if numChunks > size {
		return nil, fmt.Errorf("%w: %d chunks cannot hold %d values", ErrBadFormat, numChunks, size)
	}
	if limit := r.o.MaxChunks; limit != 0 && numChunks > limit {
		return nil, fmt.Errorf("%w: %d chunks exceed the limit of %d", ErrBadFormat, numChunks, limit)
	}

	if n := min(numChunks, maxPrealloc); cap(c.chunks) < int(n) {
		c.chunks = make([]Chunk[T], 0, int(n))
	}

	var sum uint64
	for i := uint64(0); i < numChunks; i++ {
		if err := r.readFull(r.tmp); err != nil {
			return nil, fmt.Errorf("rleseq: read chunk %d: %w", i, err)
		}

		ch, err := parseChunk[T](r.tmp)
		if err != nil {
			return nil, fmt.Errorf("rleseq: parse chunk %d: %w", i, err)
		}
		if ch.Repetitions == 0 {
			return nil, fmt.Errorf("%w: chunk %d is empty", ErrBadFormat, i)
		}
		if ch.PrevBlockEnd != sum {
			return nil, fmt.Errorf("%w: chunk %d starts at %d, expected %d", ErrBadFormat, i, ch.PrevBlockEnd, sum)
		}
		if sum += ch.Repetitions; sum < ch.Repetitions || sum > size {
			return nil, fmt.Errorf("%w: chunk %d overflows %d values", ErrBadFormat, i, size)
		}
		c.chunks = append(c.chunks, ch)
	}
	if sum != size {
		return nil, fmt.Errorf("%w: chunks cover %d values, expected %d", ErrBadFormat, sum, size)
	}

	c.size = size
	return meta, nil
}

func (r *Reader[T]) readUint64() (uint64, error) {
	if err := r.readFull(r.tmp[:8]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(r.tmp), nil
}

func (r *Reader[T]) readFull(p []byte) error {
	_, err := io.ReadFull(r.r, p)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
