package regex_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// patternFixtures mirrors the teacher's pattern of driving table tests from
// a YAML document rather than a Go literal, so new cases can be added
// without touching code. Each case names a pattern plus strings that must
// and must not match it.
const patternFixturesYAML = `
- pattern: '[0-9]+'
  accept: ["0", "7", "42", "007"]
  reject: ["", "a", "1a"]
- pattern: 'ab*c'
  accept: ["ac", "abc", "abbbbc"]
  reject: ["a", "c", "abx"]
- pattern: '(foo|bar)+'
  accept: ["foo", "bar", "foobar", "barfoo"]
  reject: ["", "foobaz", "fo"]
- pattern: '[A-Za-z_][A-Za-z0-9_]*'
  accept: ["x", "_x1", "Camel_Case9"]
  reject: ["1x", "", "has space"]
`

type patternFixture struct {
	Pattern string   `yaml:"pattern"`
	Accept  []string `yaml:"accept"`
	Reject  []string `yaml:"reject"`
}

func TestParseFixtures(t *testing.T) {
	t.Parallel()

	var cases []patternFixture
	require.NoError(t, yaml.Unmarshal([]byte(patternFixturesYAML), &cases))
	require.NotEmpty(t, cases)

	for _, c := range cases {
		c := c
		t.Run(c.Pattern, func(t *testing.T) {
			t.Parallel()
			fsm := compile(t, c.Pattern)
			for _, s := range c.Accept {
				if !runFSM(t, fsm, s) {
					t.Errorf("pattern %q: expected %q to match", c.Pattern, s)
				}
			}
			for _, s := range c.Reject {
				if runFSM(t, fsm, s) {
					t.Errorf("pattern %q: expected %q not to match", c.Pattern, s)
				}
			}
		})
	}
}
