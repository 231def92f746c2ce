package tokenguide_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tokenguide/tokenguide"
	"github.com/tokenguide/tokenguide/guide"
	"github.com/tokenguide/tokenguide/vocab"
)

func TestCacheEvictsLeastRecentlyUsedEntryAtCapacity(t *testing.T) {
	t.Parallel()

	cache := tokenguide.NewCache(1)
	tokA := digitTokenizer()
	tokB := &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"x": 0, "<eos>": 1},
		special:    map[string]struct{}{"<eos>": {}},
		eos:        1,
	}

	b := &tokenguide.Builder{Cache: cache}
	g1, err := b.BuildIndex(t.Context(), `[0-9]+`, tokA)
	assert.NoError(t, err)
	assert.NotNil(t, g1)

	// A second, different (pattern, tokenizer) pair evicts the first entry
	// since the cache capacity is 1.
	g2, err := b.BuildIndex(t.Context(), `x`, tokB)
	assert.NoError(t, err)
	assert.NotNil(t, g2)

	g3, err := b.BuildIndex(t.Context(), `[0-9]+`, tokA)
	assert.NoError(t, err)
	assert.NotSame(t, g1, g3)
}

func TestCacheHandlesNilReceiverGracefully(t *testing.T) {
	t.Parallel()

	var cache *tokenguide.Cache
	b := &tokenguide.Builder{Cache: cache}
	g, err := b.BuildIndex(t.Context(), `ab`, &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"a": 0, "b": 1},
		special:    map[string]struct{}{},
		eos:        2,
	})
	assert.NoError(t, err)
	assert.NotEqual(t, guide.Dead, g.InitialState())
}
