package tokenguide_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenguide/tokenguide"
	"github.com/tokenguide/tokenguide/guide"
	"github.com/tokenguide/tokenguide/vocab"
)

// fakeTokenizer mirrors vocab_test's fixture; duplicated here since test
// files of another package cannot be imported.
type fakeTokenizer struct {
	vocabulary map[string]vocab.TokenID
	special    map[string]struct{}
	eos        vocab.TokenID
}

func (f *fakeTokenizer) Vocabulary() map[string]vocab.TokenID { return f.vocabulary }
func (f *fakeTokenizer) SpecialTokens() map[string]struct{}   { return f.special }
func (f *fakeTokenizer) EOSTokenID() vocab.TokenID            { return f.eos }
func (f *fakeTokenizer) TokenToString(token string) string    { return token }

func digitTokenizer() *fakeTokenizer {
	return &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{
			"0": 0, "1": 1, "2": 2, "3": 3, "4": 4,
			"5": 5, "6": 6, "7": 7, "8": 8, "9": 9,
			"ab": 10,
			"<eos>": 11,
		},
		special: map[string]struct{}{"<eos>": {}},
		eos:     11,
	}
}

func TestBuilderBuildIndexWalksToAcceptance(t *testing.T) {
	t.Parallel()

	b := &tokenguide.Builder{}
	g, err := b.BuildIndex(context.Background(), `[0-9]+`, digitTokenizer())
	require.NoError(t, err)

	state := g.InitialState()
	allowed := g.AllowedTokens(state)
	assert.Contains(t, allowed, vocab.TokenID(3))
	assert.NotContains(t, allowed, vocab.TokenID(10))

	next := g.NextState(state, 3)
	assert.NotEqual(t, guide.Dead, next)
	assert.True(t, g.IsFinal(next))
}

func TestBuilderBuildIndexRejectsBadPattern(t *testing.T) {
	t.Parallel()

	b := &tokenguide.Builder{}
	_, err := b.BuildIndex(context.Background(), `[0-9`, digitTokenizer())
	require.Error(t, err)
	assert.ErrorIs(t, err, tokenguide.BadPattern)
}

func TestBuilderBuildIndexIsUnsatisfiableWithDisjointVocabulary(t *testing.T) {
	t.Parallel()

	tok := &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"a": 0, "b": 1},
		special:    map[string]struct{}{},
		eos:        2,
	}
	b := &tokenguide.Builder{}
	_, err := b.BuildIndex(context.Background(), `[0-9]+`, tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, tokenguide.UnsatisfiableVocabulary)
}

func TestBuilderBuildIndexUsesCache(t *testing.T) {
	t.Parallel()

	cache := tokenguide.NewCache(8)
	b := &tokenguide.Builder{Cache: cache}
	tok := digitTokenizer()

	g1, err := b.BuildIndex(context.Background(), `[0-9]+`, tok)
	require.NoError(t, err)
	g2, err := b.BuildIndex(context.Background(), `[0-9]+`, tok)
	require.NoError(t, err)

	assert.Same(t, g1, g2)
}

func TestBuilderBuildIndexHonorsFrozenTokens(t *testing.T) {
	t.Parallel()

	b := &tokenguide.Builder{FrozenTokens: map[string]struct{}{"ab": {}}}
	tok := &fakeTokenizer{
		vocabulary: map[string]vocab.TokenID{"a": 0, "ab": 1, "b": 2},
		special:    map[string]struct{}{},
		eos:        3,
	}
	g, err := b.BuildIndex(context.Background(), `ab`, tok)
	require.NoError(t, err)

	state := g.InitialState()
	next := g.NextState(state, 1)
	assert.NotEqual(t, guide.Dead, next)
	assert.True(t, g.IsFinal(next))
}
