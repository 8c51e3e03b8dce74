package rleseq_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/bsm/rleseq"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reader", func() {
	var data []byte

	ref6 := []int32{0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5}
	meta := []int32{3, 2, 2}

	BeforeEach(func() {
		var err error
		data, err = rleseq.Marshal(rleseq.Encode(ref6), meta)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should round-trip", func() {
		c, m, err := rleseq.Unmarshal[int32](data)
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal(meta))
		Expect(c.Decode()).To(Equal(ref6))
		Expect(c.Equal(rleseq.Encode(ref6))).To(BeTrue())
		Expect(c.Validate()).To(Succeed())
	})

	It("should round-trip empty", func() {
		data, err := rleseq.Marshal(rleseq.New[int32](nil), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(HaveLen(24))

		c, m, err := rleseq.Unmarshal[int32](data)
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeEmpty())
		Expect(c.Len()).To(Equal(uint64(0)))
		Expect(c.Decode()).To(BeEmpty())
	})

	It("should round-trip other types", func() {
		type label uint16

		c := rleseq.Encode([]label{4, 4, 4, 9, 1, 1})
		data, err := rleseq.Marshal(c, []int32{6})
		Expect(err).NotTo(HaveOccurred())

		d, m, err := rleseq.Unmarshal[label](data)
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(Equal([]int32{6}))
		Expect(d.Chunks()).To(Equal(c.Chunks()))

		f := rleseq.Encode([]float64{0.5, 0.5, -1})
		data, err = rleseq.Marshal(f, nil)
		Expect(err).NotTo(HaveOccurred())
		g, _, err := rleseq.Unmarshal[float64](data)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Decode()).To(Equal([]float64{0.5, 0.5, -1}))
	})

	It("should rebuild the index", func() {
		seq := seedSequence(3000)
		data, err := rleseq.Marshal(rleseq.Encode(seq), nil)
		Expect(err).NotTo(HaveOccurred())

		c, _, err := rleseq.Unmarshal[int32](data)
		Expect(err).NotTo(HaveOccurred())
		for i, v := range seq {
			Expect(c.Get(uint64(i))).To(Equal(v), "for %d", i)
		}
	})

	It("should reject truncated input", func() {
		for n := 0; n < len(data); n++ {
			_, _, err := rleseq.Unmarshal[int32](data[:n])
			Expect(err).To(MatchError(io.ErrUnexpectedEOF), "for %d", n)
		}
	})

	It("should reject trailing bytes", func() {
		_, _, err := rleseq.Unmarshal[int32](append(data, 0))
		Expect(err).To(MatchError(rleseq.ErrBadFormat))
	})

	It("should reject corrupt chunks", func() {
		// first chunk record starts after 8+12 bytes of metadata and 16 bytes of counts
		const chunk0 = 8 + 12 + 16

		bad := append([]byte(nil), data...)
		binary.LittleEndian.PutUint64(bad[chunk0:], 0)
		_, _, err := rleseq.Unmarshal[int32](bad)
		Expect(err).To(MatchError(rleseq.ErrBadFormat))

		bad = append([]byte(nil), data...)
		binary.LittleEndian.PutUint64(bad[chunk0+12:], 1)
		_, _, err = rleseq.Unmarshal[int32](bad)
		Expect(err).To(MatchError(rleseq.ErrBadFormat))

		bad = append([]byte(nil), data...)
		binary.LittleEndian.PutUint64(bad[chunk0-8:], 13)
		_, _, err = rleseq.Unmarshal[int32](bad)
		Expect(err).To(MatchError(rleseq.ErrBadFormat))

		bad = append([]byte(nil), data...)
		binary.LittleEndian.PutUint64(bad[chunk0-16:], 13)
		_, _, err = rleseq.Unmarshal[int32](bad)
		Expect(err).To(MatchError(rleseq.ErrBadFormat))
	})

	It("should limit metadata", func() {
		r, err := rleseq.NewReader[int32](bytes.NewReader(data), &rleseq.ReaderOptions{MaxMetadata: 2})
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		_, err = r.Read(rleseq.New[int32](nil))
		Expect(err).To(MatchError(rleseq.ErrBadFormat))
	})

	It("should limit chunks", func() {
		r, err := rleseq.NewReader[int32](bytes.NewReader(data), &rleseq.ReaderOptions{MaxChunks: 5})
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		c := rleseq.New[int32](nil)
		_, err = r.Read(c)
		Expect(err).To(MatchError(rleseq.ErrBadFormat))
		Expect(err.Error()).To(ContainSubstring("6 chunks exceed the limit of 5"))
		Expect(c.Len()).To(Equal(uint64(0)))

		r, err = rleseq.NewReader[int32](bytes.NewReader(data), &rleseq.ReaderOptions{MaxChunks: 6})
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		Expect(r.Read(c)).To(Equal(meta))
		Expect(c.Decode()).To(Equal(ref6))
	})

	It("should clear on failure", func() {
		r, err := rleseq.NewReader[int32](bytes.NewReader(data[:len(data)-3]), nil)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		c := rleseq.Encode([]int32{1, 2, 3})
		_, err = r.Read(c)
		Expect(err).To(MatchError(io.ErrUnexpectedEOF))
		Expect(c.Len()).To(Equal(uint64(0)))
		Expect(c.NumChunks()).To(Equal(0))
		_, err = c.Get(0)
		Expect(err).To(MatchError(rleseq.ErrNotFound))
	})

	It("should read sequentially", func() {
		buf := new(bytes.Buffer)
		w, err := rleseq.NewWriter[int32](buf, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Write(rleseq.Encode([]int32{1, 1}), []int32{2})).To(Succeed())
		Expect(w.Write(rleseq.Encode([]int32{3}), nil)).To(Succeed())
		Expect(w.Close()).To(Succeed())

		r, err := rleseq.NewReader[int32](io.MultiReader(buf), nil)
		Expect(err).NotTo(HaveOccurred())
		defer r.Close()

		c := rleseq.New[int32](nil)
		Expect(r.Read(c)).To(Equal([]int32{2}))
		Expect(c.Decode()).To(Equal([]int32{1, 1}))

		m, err := r.Read(c)
		Expect(err).NotTo(HaveOccurred())
		Expect(m).To(BeEmpty())
		Expect(c.Decode()).To(Equal([]int32{3}))

		_, err = r.Read(c)
		Expect(err).To(Equal(io.EOF))
	})

	It("should fail when closed", func() {
		r, err := rleseq.NewReader[int32](bytes.NewReader(data), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Close()).To(Succeed())
		Expect(r.Close()).To(MatchError(`rleseq: is closed`))

		_, err = r.Read(rleseq.New[int32](nil))
		Expect(err).To(MatchError(`rleseq: is closed`))
	})

	Describe("files", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "rleseq-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			Expect(os.RemoveAll(dir)).To(Succeed())
		})

		It("should write and read", func() {
			fname := filepath.Join(dir, "plain.rle")
			Expect(rleseq.WriteFile(fname, rleseq.Encode(ref6), meta, nil)).To(Succeed())

			stat, err := os.Stat(fname)
			Expect(err).NotTo(HaveOccurred())
			Expect(stat.Size()).To(Equal(int64(len(data))))

			c, m, err := rleseq.ReadFile[int32](fname, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(Equal(meta))
			Expect(c.Decode()).To(Equal(ref6))
		})

		It("should write and read compressed", func() {
			seq := seedSequence(2000)

			for _, codec := range []rleseq.Compression{
				rleseq.SnappyCompression,
				rleseq.ZstdCompression,
				rleseq.LZ4Compression,
			} {
				fname := filepath.Join(dir, codec.String()+".rle")
				Expect(rleseq.WriteFile(fname, rleseq.Encode(seq), meta, &rleseq.WriterOptions{Compression: codec})).To(Succeed())

				c, m, err := rleseq.ReadFile[int32](fname, &rleseq.ReaderOptions{Compression: codec})
				Expect(err).NotTo(HaveOccurred(), "for %s", codec)
				Expect(m).To(Equal(meta))
				Expect(c.Decode()).To(Equal(seq))
			}
		})

		It("should fail on missing files", func() {
			_, _, err := rleseq.ReadFile[int32](filepath.Join(dir, "missing.rle"), nil)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("should fail on empty files", func() {
			fname := filepath.Join(dir, "empty.rle")
			Expect(os.WriteFile(fname, nil, 0o644)).To(Succeed())

			_, _, err := rleseq.ReadFile[int32](fname, nil)
			Expect(err).To(MatchError(io.ErrUnexpectedEOF))
		})
	})
})
