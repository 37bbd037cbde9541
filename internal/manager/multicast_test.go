package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern_Matching(t *testing.T) {
	cases := []struct {
		name        string
		pattern     string
		multicastID string
		want        bool
	}{
		{"exact literal match", "p1/stationFound/dab", "p1/stationFound/dab", true},
		{"exact literal mismatch", "p1/stationFound/dab", "p1/stationFound/fm", false},
		{"single wildcard matches one segment", "p1/stationFound/+", "p1/stationFound/dab", true},
		{"single wildcard rejects two segments", "p1/stationFound/+", "p1/stationFound/fm/classic", false},
		{"trailing wildcard matches one segment", "p1/stationFound/fm/*", "p1/stationFound/fm/classic", true},
		{"trailing wildcard matches many segments", "p1/stationFound/fm/*", "p1/stationFound/fm/classic/rock", true},
		{"trailing wildcard requires the fixed prefix", "p1/stationFound/fm/*", "p1/stationFound/dab", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cp, err := compilePattern(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.want, cp.match(tc.multicastID))
		})
	}
}

func TestCompilePattern_RejectsNonTrailingWildcard(t *testing.T) {
	_, err := compilePattern("p1/*/dab")
	assert.Error(t, err)
}

func TestRegistry_GetOrCompile_CachesResult(t *testing.T) {
	r := newRegistry(4)
	first, err := r.getOrCompile("p1/stationFound/+")
	require.NoError(t, err)
	second, err := r.getOrCompile("p1/stationFound/+")
	require.NoError(t, err)
	assert.Same(t, first, second)
}
