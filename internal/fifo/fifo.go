// Package fifo implements the item queue each processing stage keeps for
// its pending input. Sizes are counted in items, never bytes.
package fifo

// minCapacity is the initial allocation in items.
const minCapacity = 256

// growthFactor is applied when compaction alone cannot make room.
const growthFactor = 2

// FIFO is a growable first-in first-out queue of items.
//
// Valid data lives in data[begin:end]. Space before begin is reclaimed by
// moving the unread items to the front when the tail runs out of room.
// A FIFO is owned by a single stage and is not safe for concurrent use.
type FIFO[T any] struct {
	data  []T
	begin int
	end   int
}

// New creates a FIFO with room for at least capacity items.
func New[T any](capacity int) *FIFO[T] {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &FIFO[T]{data: make([]T, capacity)}
}

// Occupancy returns the number of items available to read.
func (f *FIFO[T]) Occupancy() int {
	return f.end - f.begin
}

// Capacity returns the current allocation in items.
func (f *FIFO[T]) Capacity() int {
	return len(f.data)
}

// Reserve returns n writable slots appended to the tail. The slots count
// as written; callers fill them in place. Previous contents are unspecified.
func (f *FIFO[T]) Reserve(n int) []T {
	if n <= 0 {
		return f.data[f.end:f.end]
	}
	if f.end+n > len(f.data) {
		f.makeRoom(n)
	}
	s := f.data[f.end : f.end+n]
	f.end += n
	return s
}

// Write appends a copy of data.
func (f *FIFO[T]) Write(data []T) {
	copy(f.Reserve(len(data)), data)
}

// WriteZeros appends n zero-valued items.
func (f *FIFO[T]) WriteZeros(n int) {
	clear(f.Reserve(n))
}

// Read consumes n items from the front. When out is non-nil the items are
// copied into it (it must hold n items) and returned; a nil out discards.
// Reading more than Occupancy items fails and leaves the FIFO unchanged.
func (f *FIFO[T]) Read(n int, out []T) ([]T, bool) {
	if n < 0 || n > f.Occupancy() {
		return nil, false
	}
	if out != nil {
		out = out[:n]
		copy(out, f.data[f.begin:f.begin+n])
	}
	f.begin += n
	if f.begin == f.end {
		f.begin, f.end = 0, 0
	}
	return out, true
}

// Peek returns a view of the first n items without consuming them. The view
// is invalidated by the next Reserve or Write.
func (f *FIFO[T]) Peek(n int) ([]T, bool) {
	if n < 0 || n > f.Occupancy() {
		return nil, false
	}
	return f.data[f.begin : f.begin+n], true
}

// Items returns a view of every unread item.
func (f *FIFO[T]) Items() []T {
	return f.data[f.begin:f.end]
}

// TrimBy drops the n most recently written items. It is used to discard
// surplus samples produced while flushing.
func (f *FIFO[T]) TrimBy(n int) {
	if n > f.Occupancy() {
		n = f.Occupancy()
	}
	if n > 0 {
		f.end -= n
	}
}

// TrimTo shrinks the unread data to at most n items by dropping from the tail.
func (f *FIFO[T]) TrimTo(n int) {
	if n < 0 {
		n = 0
	}
	if n < f.Occupancy() {
		f.end = f.begin + n
	}
}

// Clear removes all items.
func (f *FIFO[T]) Clear() {
	f.begin, f.end = 0, 0
}

// makeRoom ensures n more items fit after end, compacting toward zero when
// that is enough and growing the allocation otherwise.
func (f *FIFO[T]) makeRoom(n int) {
	used := f.Occupancy()
	if used+n <= len(f.data) && f.begin >= used {
		copy(f.data, f.data[f.begin:f.end])
		f.begin, f.end = 0, used
		return
	}

	newCap := max(len(f.data)*growthFactor, minCapacity)
	for newCap < used+n {
		newCap *= growthFactor
	}
	data := make([]T, newCap)
	copy(data, f.data[f.begin:f.end])
	f.data = data
	f.begin, f.end = 0, used
}
