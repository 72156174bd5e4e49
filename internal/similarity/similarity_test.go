package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("the quick brown fox", "the quick brown fox"))
	assert.Equal(t, 1.0, Ratio("", ""))
}

func TestRatio_DisjointCharacters(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("aaaa", "bbbb"))
	assert.Equal(t, 0.0, Ratio("abc", "xyzxyz"))
	assert.Equal(t, 0.0, Ratio("", "nonempty"))
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"summary of the report", "the report summary"},
		{"héllo", "hello"},
	}
	for _, p := range pairs {
		assert.InDelta(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]), 1e-12, "pair %q", p)
	}
}

func TestRatio_Bounds(t *testing.T) {
	r := Ratio("kitten", "sitting")
	// Distance 3 over the longer length 7.
	assert.InDelta(t, 1-3.0/7.0, r, 1e-12)
	assert.GreaterOrEqual(t, r, 0.0)
	assert.LessOrEqual(t, r, 1.0)
}

func TestRatio_CountsCharactersNotBytes(t *testing.T) {
	// One substitution in five characters, despite the multi-byte rune.
	assert.InDelta(t, 0.8, Ratio("héllo", "hello"), 1e-12)
}

func TestFoldedRatio_IgnoresCase(t *testing.T) {
	assert.Equal(t, 1.0, FoldedRatio("Quarterly Revenue", "QUARTERLY revenue"))
	assert.Less(t, Ratio("Quarterly Revenue", "QUARTERLY revenue"), 1.0)
}
