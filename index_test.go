package rleseq

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("index", func() {
	var subject *index[int]

	seedChunks := func(n int) []Chunk[int] {
		chunks := make([]Chunk[int], 0, n)
		var pos uint64
		for i := 0; i < n; i++ {
			reps := uint64(i%3 + 1)
			chunks = append(chunks, Chunk[int]{Repetitions: reps, Value: i, PrevBlockEnd: pos})
			pos += reps
		}
		return chunks
	}

	linearSeek := func(chunks []Chunk[int], pos uint64) int {
		for i, ch := range chunks {
			if pos < ch.End() {
				return i
			}
		}
		return len(chunks)
	}

	BeforeEach(func() {
		subject = new(index[int])
	})

	It("should compute step", func() {
		subject.reset(nil)
		Expect(subject.step).To(Equal(1))
		Expect(subject.samples).To(BeEmpty())

		subject.reset(seedChunks(100))
		Expect(subject.step).To(Equal(11))

		subject.reset(seedChunks(50000))
		Expect(subject.step).To(Equal(192))
	})

	It("should sample at even intervals", func() {
		chunks := seedChunks(1000)
		subject.reset(chunks)
		Expect(subject.samples).To(HaveLen(49))
		Expect(subject.samples[0]).To(Equal(sample{Pos: chunks[20].PrevBlockEnd, Offset: 20}))
		Expect(subject.samples[24].Offset).To(Equal(500))
		Expect(subject.samples[48].Offset).To(Equal(980))
	})

	It("should respect options", func() {
		subject.o = (&Options{MaxStep: 4, Resolution: 3}).norm()
		subject.reset(seedChunks(100))
		Expect(subject.step).To(Equal(4))
		Expect(subject.samples).To(Equal([]sample{
			{Pos: 49, Offset: 25},
			{Pos: 99, Offset: 50},
			{Pos: 150, Offset: 75},
		}))
	})

	It("should rebuild on drift", func() {
		chunks := seedChunks(640)
		subject.reset(chunks)

		subject.update(seedChunks(650))
		Expect(subject.built).To(Equal(640))

		subject.update(seedChunks(651))
		Expect(subject.built).To(Equal(651))

		subject.update(seedChunks(10))
		Expect(subject.built).To(Equal(10))
	})

	It("should seek", func() {
		chunks := seedChunks(10000)
		subject.reset(chunks)

		last := chunks[len(chunks)-1].End()
		for pos := uint64(0); pos < last; pos += 7 {
			Expect(subject.seek(chunks, pos)).To(Equal(linearSeek(chunks, pos)), "for %d", pos)
		}
		Expect(subject.seek(chunks, last-1)).To(Equal(len(chunks) - 1))
	})

	It("should seek without samples", func() {
		chunks := seedChunks(300)
		for pos := uint64(0); pos < chunks[299].End(); pos++ {
			Expect(subject.seek(chunks, pos)).To(Equal(linearSeek(chunks, pos)), "for %d", pos)
		}
	})

	It("should tolerate stale samples", func() {
		subject.reset(seedChunks(5000))

		chunks := seedChunks(200)
		for pos := uint64(0); pos < chunks[199].End(); pos++ {
			Expect(subject.seek(chunks, pos)).To(Equal(linearSeek(chunks, pos)), "for %d", pos)
		}

		chunks = seedChunks(8000)
		for pos := uint64(0); pos < chunks[7999].End(); pos += 3 {
			Expect(subject.seek(chunks, pos)).To(Equal(linearSeek(chunks, pos)), "for %d", pos)
		}
	})
})
