package rleseq

import (
	"math"
	"sort"
)

// Options define container specific options.
type Options struct {
	// MaxStep caps the stride, in chunks, of the coarse scan which follows
	// a lookup table hit.
	// Default: 192.
	MaxStep int

	// Resolution is the number of samples in the lookup table. Samples are
	// spread evenly across the chunk list, so the default of 49 places a sample
	// at every 2% of the chunks.
	// Default: 49.
	Resolution int

	// RebuildDrift controls how often appends refresh the lookup table. It is
	// rebuilt once the number of chunks moved by more than 1/RebuildDrift of
	// the number it was built for.
	// Default: 64.
	RebuildDrift int
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if oo.MaxStep < 1 {
		oo.MaxStep = 192
	}
	if oo.Resolution < 1 {
		oo.Resolution = 49
	}
	if oo.RebuildDrift < 1 {
		oo.RebuildDrift = 64
	}

	return &oo
}

type sample struct {
	Pos    uint64 // logical start of the sampled chunk
	Offset int    // the sampled chunk offset
}

// index is a disposable lookup table over a chunk list. It never holds
// authoritative state: every sample is verified against the chunk list
// before it is used.
type index[T any] struct {
	o *Options

	samples []sample
	step    int // coarse scan stride
	built   int // number of chunks at the last reset
}

func (x *index[T]) opts() *Options {
	if x.o == nil {
		x.o = (*Options)(nil).norm()
	}
	return x.o
}

// reset rebuilds the table from scratch.
func (x *index[T]) reset(chunks []Chunk[T]) {
	o := x.opts()
	n := len(chunks)

	x.built = n
	x.step = int(math.Sqrt(float64(n))) + 1
	if x.step > o.MaxStep {
		x.step = o.MaxStep
	}

	x.samples = x.samples[:0]
	if n == 0 {
		return
	}
	if cap(x.samples) < o.Resolution {
		x.samples = make([]sample, 0, o.Resolution)
	}
	for i := 0; i < o.Resolution; i++ {
		off := (i + 1) * n / (o.Resolution + 1)
		x.samples = append(x.samples, sample{Pos: chunks[off].PrevBlockEnd, Offset: off})
	}
}

// update rebuilds the table after chunks were appended, but only once the
// chunk count drifted far enough from the last build.
func (x *index[T]) update(chunks []Chunk[T]) {
	delta := len(chunks) - x.built
	if delta < 0 || delta > x.built/x.opts().RebuildDrift {
		x.reset(chunks)
	}
}

// seek returns the position of the chunk covering pos. The caller must
// ensure that pos is within the bounds of the chunk list.
func (x *index[T]) seek(chunks []Chunk[T], pos uint64) int {
	adv := 0

	// jump to the closest sample that starts at or before pos
	if i := sort.Search(len(x.samples), func(i int) bool {
		return x.samples[i].Pos > pos
	}) - 1; i > -1 {
		if s := x.samples[i]; s.Offset < len(chunks) && chunks[s.Offset].PrevBlockEnd <= pos {
			adv = s.Offset
		}
	}

	// coarse scan in strides
	if step := x.step; step > 1 {
		for adv+step < len(chunks) && chunks[adv+step].PrevBlockEnd <= pos {
			adv += step
		}
	}

	// fine scan
	for end := chunks[adv].End(); end <= pos; end += chunks[adv].Repetitions {
		adv++
	}
	return adv
}
