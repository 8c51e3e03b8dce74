package rleseq

import (
	"fmt"
	"slices"
)

// Container is a run-length encoded sequence of values with fast random
// access. The zero value is an empty container, ready to use.
//
// Containers are not safe for concurrent use. Read-only methods may run
// concurrently only while nothing mutates the container.
type Container[T comparable] struct {
	chunks []Chunk[T]
	size   uint64
	index  index[T]
}

// New creates an empty container.
func New[T comparable](o *Options) *Container[T] {
	return &Container[T]{index: index[T]{o: o.norm()}}
}

// Encode returns a new container holding seq.
func Encode[T comparable](seq []T) *Container[T] {
	c := New[T](nil)
	c.Encode(seq)
	return c
}

// EncodeRuns returns a new container holding the expanded runs.
// Runs with a zero count are skipped.
func EncodeRuns[T comparable](runs []Run[T]) *Container[T] {
	c := New[T](nil)
	c.EncodeRuns(runs)
	return c
}

// Len returns the number of logical values.
func (c *Container[T]) Len() uint64 { return c.size }

// NumChunks returns the number of stored chunks.
func (c *Container[T]) NumChunks() int { return len(c.chunks) }

// Chunk returns the chunk at position pos. It returns false if pos is out of
// bounds, in particular for the NumChunks() position returned by At.
func (c *Container[T]) Chunk(pos int) (Chunk[T], bool) {
	if pos < 0 || pos >= len(c.chunks) {
		return Chunk[T]{}, false
	}
	return c.chunks[pos], true
}

// Chunks returns a copy of the chunk list.
func (c *Container[T]) Chunks() []Chunk[T] { return slices.Clone(c.chunks) }

// Runs returns the chunk list as (count, value) runs.
func (c *Container[T]) Runs() []Run[T] {
	runs := make([]Run[T], 0, len(c.chunks))
	for _, ch := range c.chunks {
		runs = append(runs, Run[T]{Count: ch.Repetitions, Value: ch.Value})
	}
	return runs
}

// Add appends a single value.
func (c *Container[T]) Add(v T) { c.AddRun(1, v) }

// AddRun appends count copies of v. A zero count is a no-op.
func (c *Container[T]) AddRun(count uint64, v T) {
	if count == 0 {
		return
	}

	if n := len(c.chunks); n != 0 && c.chunks[n-1].Value == v {
		c.chunks[n-1].Repetitions += count
	} else {
		c.chunks = append(c.chunks, Chunk[T]{Repetitions: count, Value: v, PrevBlockEnd: c.size})
		c.index.update(c.chunks)
	}
	c.size += count
}

// At returns the position of the chunk covering the logical index. If index
// is out of bounds, NumChunks() is returned.
func (c *Container[T]) At(index uint64) int {
	if index >= c.size {
		return len(c.chunks)
	}
	return c.index.seek(c.chunks, index)
}

// Get returns the value at the logical index.
// It may return an ErrNotFound error.
func (c *Container[T]) Get(index uint64) (T, error) {
	pos := c.At(index)
	if pos == len(c.chunks) {
		var zero T
		return zero, ErrNotFound
	}
	return c.chunks[pos].Value, nil
}

// Set replaces the value at the logical index. The owning chunk is split
// into up to three chunks and the new value is merged into equal neighbours.
// The merge is deliberate: it keeps adjacent chunks distinct, so a sequence
// of Set calls never encodes worse than Encode of the same values.
// It may return an ErrNotFound error.
func (c *Container[T]) Set(index uint64, v T) error {
	pos := c.At(index)
	if pos == len(c.chunks) {
		return ErrNotFound
	}

	old := c.chunks[pos]
	if old.Value == v {
		return nil
	}

	front := index - old.PrevBlockEnd
	back := old.Repetitions - front - 1

	var buf [3]Chunk[T]
	repl := buf[:0]
	if front != 0 {
		repl = append(repl, Chunk[T]{Repetitions: front, Value: old.Value, PrevBlockEnd: old.PrevBlockEnd})
	}
	repl = append(repl, Chunk[T]{Repetitions: 1, Value: v, PrevBlockEnd: index})
	if back != 0 {
		repl = append(repl, Chunk[T]{Repetitions: back, Value: old.Value, PrevBlockEnd: index + 1})
	}

	lo, hi := pos, pos+1
	if front == 0 && lo > 0 && c.chunks[lo-1].Value == v {
		lo--
		repl[0].Repetitions += c.chunks[lo].Repetitions
		repl[0].PrevBlockEnd = c.chunks[lo].PrevBlockEnd
	}
	if back == 0 && hi < len(c.chunks) && c.chunks[hi].Value == v {
		repl[len(repl)-1].Repetitions += c.chunks[hi].Repetitions
		hi++
	}

	c.chunks = slices.Replace(c.chunks, lo, hi, repl...)
	c.index.reset(c.chunks)
	return nil
}

// Decode expands the container into a flat slice.
func (c *Container[T]) Decode() []T {
	return c.AppendTo(make([]T, 0, c.size))
}

// AppendTo appends the expanded values to dst.
func (c *Container[T]) AppendTo(dst []T) []T {
	dst = slices.Grow(dst, int(c.size))
	for _, ch := range c.chunks {
		for i := uint64(0); i < ch.Repetitions; i++ {
			dst = append(dst, ch.Value)
		}
	}
	return dst
}

// Encode replaces the contents of the container with seq.
func (c *Container[T]) Encode(seq []T) {
	c.Clear()
	for i := 0; i < len(seq); {
		j := i + 1
		for j < len(seq) && seq[j] == seq[i] {
			j++
		}
		c.AddRun(uint64(j-i), seq[i])
		i = j
	}
	c.index.reset(c.chunks)
}

// EncodeRuns replaces the contents of the container with the expanded runs.
func (c *Container[T]) EncodeRuns(runs []Run[T]) {
	c.Clear()
	for _, r := range runs {
		c.AddRun(r.Count, r.Value)
	}
	c.index.reset(c.chunks)
}

// Clear resets the container to an empty state.
func (c *Container[T]) Clear() {
	c.chunks = c.chunks[:0]
	c.size = 0
	c.index.reset(c.chunks)
}

// Equal returns true if both containers hold identical chunks.
func (c *Container[T]) Equal(other *Container[T]) bool {
	return c.size == other.size && slices.Equal(c.chunks, other.chunks)
}

// Validate checks the chunk list for consistency.
// It may return an ErrInvariant error.
func (c *Container[T]) Validate() error {
	var sum uint64
	for i, ch := range c.chunks {
		if ch.Repetitions == 0 {
			return fmt.Errorf("%w: chunk %d is empty", ErrInvariant, i)
		}
		if ch.PrevBlockEnd != sum {
			return fmt.Errorf("%w: chunk %d starts at %d, expected %d", ErrInvariant, i, ch.PrevBlockEnd, sum)
		}
		if i != 0 && c.chunks[i-1].Value == ch.Value {
			return fmt.Errorf("%w: chunks %d and %d hold the same value", ErrInvariant, i-1, i)
		}
		sum += ch.Repetitions
	}
	if sum != c.size {
		return fmt.Errorf("%w: chunks cover %d values, expected %d", ErrInvariant, sum, c.size)
	}
	return nil
}

// Seek returns an iterator positioned before the logical index.
func (c *Container[T]) Seek(index uint64) *Iterator[T] {
	return &Iterator[T]{c: c, pos: c.At(index), next: index}
}

// --------------------------------------------------------------------

// Iterator is a forward cursor over the values of a container.
type Iterator[T comparable] struct {
	c *Container[T]

	pos  int    // the current chunk position
	next uint64 // logical index of the next value
	val  T      // current value

	err error
}

// More returns true if more values can be read.
func (i *Iterator[T]) More() bool {
	return i.err == nil && i.next < i.c.size
}

// Next advances the cursor to the next value and returns true if successful.
func (i *Iterator[T]) Next() bool {
	if !i.More() {
		return false
	}

	// re-seek if the container changed underneath
	if i.pos >= len(i.c.chunks) || i.c.chunks[i.pos].PrevBlockEnd > i.next {
		i.pos = i.c.At(i.next)
	}
	for i.c.chunks[i.pos].End() <= i.next {
		i.pos++
	}

	i.val = i.c.chunks[i.pos].Value
	i.next++
	return true
}

// Index returns the logical index of the current value.
func (i *Iterator[T]) Index() uint64 { return i.next - 1 }

// Value returns the current value.
func (i *Iterator[T]) Value() T { return i.val }

// Err exposes iterator errors, if any.
func (i *Iterator[T]) Err() error { return i.err }

// Release releases the iterator. The iterator must not be used
// after this method is called.
func (i *Iterator[T]) Release() { i.err = errReleased }
