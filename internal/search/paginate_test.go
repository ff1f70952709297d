package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_ConcatenationReproducesInput(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 40, 57} {
		items := seq(n)
		var joined []int
		for p := 1; p <= TotalPages(len(items), 20); p++ {
			joined = append(joined, Paginate(items, 20, p)...)
		}
		if n == 0 {
			assert.Empty(t, joined)
			continue
		}
		assert.Equal(t, items, joined, "n=%d", n)
	}
}

func TestPaginate_OutOfRange(t *testing.T) {
	items := seq(25)

	assert.Len(t, Paginate(items, 20, 2), 5)
	assert.Empty(t, Paginate(items, 20, 3))
	assert.Empty(t, Paginate(items, 20, 0))
	assert.Empty(t, Paginate(items, 0, 1))
	assert.NotNil(t, Paginate[int](nil, 20, 1))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(1, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(10, 0))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0, 3))
	assert.Equal(t, 3, ClampPage(9, 3))
	assert.Equal(t, 2, ClampPage(2, 3))
	assert.Equal(t, 1, ClampPage(5, 0))
}
