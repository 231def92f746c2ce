package intern_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenguide/tokenguide/internal/intern"
)

func TestInternRoundTrip(t *testing.T) {
	t.Parallel()

	var table intern.Table
	id := table.Intern("hello")
	require.NotZero(t, id)
	assert.Equal(t, "hello", table.Value(id))

	again := table.Intern("hello")
	assert.Equal(t, id, again)
	assert.Equal(t, 1, table.Len())
}

func TestInternEmptyString(t *testing.T) {
	t.Parallel()

	var table intern.Table
	assert.Zero(t, table.Intern(""))
	assert.Equal(t, "", table.Value(0))
}

func TestLookupDoesNotIntern(t *testing.T) {
	t.Parallel()

	var table intern.Table
	_, ok := table.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())

	id := table.Intern("present")
	got, ok := table.Lookup("present")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	zero, ok := table.Lookup("")
	assert.True(t, ok)
	assert.Zero(t, zero)
}

func TestInternConcurrent(t *testing.T) {
	t.Parallel()

	var table intern.Table
	var wg sync.WaitGroup
	ids := make([]intern.ID, 100)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = table.Intern("shared")
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}
