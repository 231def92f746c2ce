package regex_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenguide/tokenguide/regex"
)

func TestParseLiteralConcat(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("ab")
	require.NoError(t, err)

	concat, ok := node.(*regex.Concat)
	require.True(t, ok, "expected *regex.Concat, got %T", node)
	require.Len(t, concat.Children, 2)
	assert.Equal(t, &regex.Literal{Rune: 'a'}, concat.Children[0])
	assert.Equal(t, &regex.Literal{Rune: 'b'}, concat.Children[1])
}

func TestParseAlternation(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("a|b|c")
	require.NoError(t, err)

	alt, ok := node.(*regex.Alt)
	require.True(t, ok, "expected *regex.Alt, got %T", node)
	assert.Len(t, alt.Children, 3)
}

func TestParseRepeatOperators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern string
		min     int
		max     int
	}{
		{"a*", 0, regex.Unbounded},
		{"a+", 1, regex.Unbounded},
		{"a?", 0, 1},
		{"a{3}", 3, 3},
		{"a{2,}", 2, regex.Unbounded},
		{"a{2,5}", 2, 5},
	}
	for _, tc := range cases {
		node, err := regex.Parse(tc.pattern)
		require.NoError(t, err, tc.pattern)
		rep, ok := node.(*regex.Repeat)
		require.True(t, ok, "%s: expected *regex.Repeat, got %T", tc.pattern, node)
		assert.Equal(t, tc.min, rep.Min, tc.pattern)
		assert.Equal(t, tc.max, rep.Max, tc.pattern)
	}
}

func TestParseInvalidBoundsIsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := regex.Parse("a{5,2}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, regex.BadPattern))
}

func TestParseNonCapturingGroup(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("(?:ab)+")
	require.NoError(t, err)
	rep, ok := node.(*regex.Repeat)
	require.True(t, ok)
	group, ok := rep.Child.(*regex.Group)
	require.True(t, ok)
	assert.False(t, group.Capturing)
}

func TestParseNamedGroup(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("(?P<word>[a-z]+)")
	require.NoError(t, err)
	group, ok := node.(*regex.Group)
	require.True(t, ok)
	assert.True(t, group.Capturing)
	assert.Equal(t, "word", group.Name)
}

func TestParseCharacterClass(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("[a-z0-9_]")
	require.NoError(t, err)
	class, ok := node.(*regex.Class)
	require.True(t, ok)
	assert.False(t, class.Negated)
	assert.Contains(t, class.Ranges, regex.RuneRange{Lo: 'a', Hi: 'z'})
	assert.Contains(t, class.Ranges, regex.RuneRange{Lo: '0', Hi: '9'})
}

func TestParseNegatedClass(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("[^abc]")
	require.NoError(t, err)
	class, ok := node.(*regex.Class)
	require.True(t, ok)
	assert.True(t, class.Negated)
}

func TestParseDigitShorthand(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse(`\d+`)
	require.NoError(t, err)
	rep, ok := node.(*regex.Repeat)
	require.True(t, ok)
	class, ok := rep.Child.(*regex.Class)
	require.True(t, ok)
	assert.Equal(t, []regex.RuneRange{{Lo: '0', Hi: '9'}}, class.Ranges)
}

func TestParseLookaroundIsUnsupported(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{"(?=abc)", "(?!abc)", "(?<=abc)x", "(?<!abc)x"} {
		_, err := regex.Parse(pattern)
		require.Error(t, err, pattern)
		assert.True(t, errors.Is(err, regex.UnsupportedPattern), pattern)
	}
}

func TestParseBackreferenceIsUnsupported(t *testing.T) {
	t.Parallel()

	_, err := regex.Parse(`(a)\1`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, regex.UnsupportedPattern))
}

func TestParseCaseInsensitiveFlagFoldsLiterals(t *testing.T) {
	t.Parallel()

	node, err := regex.Parse("(?i)a")
	require.NoError(t, err)
	class, ok := node.(*regex.Class)
	require.True(t, ok, "expected folded literal to become a *regex.Class, got %T", node)
	assert.ElementsMatch(t, []regex.RuneRange{{Lo: 'a', Hi: 'a'}, {Lo: 'A', Hi: 'A'}}, class.Ranges)
}

func TestParseUnterminatedClassIsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := regex.Parse("[abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, regex.BadPattern))
}

func TestParseTrailingGarbageIsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := regex.Parse("abc)")
	require.Error(t, err)
	assert.True(t, errors.Is(err, regex.BadPattern))
}

func TestParseErrorCarriesPosition(t *testing.T) {
	t.Parallel()

	_, err := regex.Parse("a{5,2}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column")
}
