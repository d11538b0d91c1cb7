package fifo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSmallCapacity = 4
	testBulkItems     = 10000
)

func TestFIFO_WriteRead(t *testing.T) {
	f := New[float64](testSmallCapacity)
	f.Write([]float64{1, 2, 3})
	require.Equal(t, 3, f.Occupancy())

	out, ok := f.Read(2, make([]float64, 2))
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2}, out)
	assert.Equal(t, 1, f.Occupancy())
}

func TestFIFO_ReadMoreThanOccupancyFails(t *testing.T) {
	f := New[int32](testSmallCapacity)
	f.Write([]int32{7, 8})

	out, ok := f.Read(3, make([]int32, 3))
	assert.False(t, ok)
	assert.Nil(t, out)
	assert.Equal(t, 2, f.Occupancy(), "failed read must not consume")

	_, ok = f.Peek(3)
	assert.False(t, ok)
}

func TestFIFO_ReadDiscard(t *testing.T) {
	f := New[float64](0)
	f.WriteZeros(5)

	out, ok := f.Read(5, nil)
	require.True(t, ok)
	assert.Nil(t, out)
	assert.Zero(t, f.Occupancy())
}

func TestFIFO_ReserveFillsInPlace(t *testing.T) {
	f := New[float64](testSmallCapacity)
	slots := f.Reserve(3)
	require.Len(t, slots, 3)
	for i := range slots {
		slots[i] = float64(i + 1)
	}
	view, ok := f.Peek(3)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, view)
}

func TestFIFO_WriteZerosClearsReusedSlots(t *testing.T) {
	f := New[float64](minCapacity)
	f.Write([]float64{9, 9, 9})
	_, _ = f.Read(3, nil)
	f.WriteZeros(3)
	assert.Equal(t, []float64{0, 0, 0}, f.Items())
}

func TestFIFO_Trim(t *testing.T) {
	f := New[int](testSmallCapacity)
	f.Write([]int{1, 2, 3, 4, 5})

	f.TrimBy(2)
	assert.Equal(t, []int{1, 2, 3}, f.Items())

	f.TrimTo(1)
	assert.Equal(t, []int{1}, f.Items())

	f.TrimBy(10)
	assert.Zero(t, f.Occupancy())

	f.Write([]int{4})
	f.TrimTo(5)
	assert.Equal(t, []int{4}, f.Items(), "TrimTo never grows")
}

func TestFIFO_GrowthPreservesOrder(t *testing.T) {
	f := New[int](testSmallCapacity)
	next, want := 0, 0
	for round := range 50 {
		for range round + 100 {
			f.Write([]int{next})
			next++
		}
		out, ok := f.Read(round+50, make([]int, round+50))
		require.True(t, ok)
		for _, v := range out {
			require.Equal(t, want, v)
			want++
		}
	}
	assert.Equal(t, next-want, f.Occupancy())
}

// TestFIFO_OccupancyMatchesModel checks occupancy against a counted model
// over a fixed mixed sequence of operations.
func TestFIFO_OccupancyMatchesModel(t *testing.T) {
	f := New[float32](testSmallCapacity)
	expected := 0
	ops := []struct {
		op string
		n  int
	}{
		{"reserve", 100}, {"read", 30}, {"write", 17}, {"trimby", 7},
		{"read", 80}, {"zeros", 500}, {"trimto", 450}, {"read", 449},
		{"read", 2}, {"reserve", testBulkItems}, {"read", testBulkItems},
	}
	for _, o := range ops {
		switch o.op {
		case "reserve":
			f.Reserve(o.n)
			expected += o.n
		case "write":
			f.Write(make([]float32, o.n))
			expected += o.n
		case "zeros":
			f.WriteZeros(o.n)
			expected += o.n
		case "read":
			_, ok := f.Read(o.n, nil)
			if o.n <= expected {
				require.True(t, ok)
				expected -= o.n
			} else {
				require.False(t, ok)
			}
		case "trimby":
			f.TrimBy(o.n)
			expected = max(expected-o.n, 0)
		case "trimto":
			f.TrimTo(o.n)
			expected = min(expected, o.n)
		}
		require.Equal(t, expected, f.Occupancy(), "after %s %d", o.op, o.n)
	}
}

func TestFIFO_ZeroValueUsable(t *testing.T) {
	var f FIFO[float64]
	f.Write([]float64{1, 2})
	assert.Equal(t, 2, f.Occupancy())
}
