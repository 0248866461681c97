package code

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	for i := 0; i < 100; i++ {
		c, err := Generate()
		require.NoError(t, err)
		require.Len(t, c, 6)
		for _, r := range c {
			require.True(t, strings.ContainsRune(charset, r), "unexpected rune %q in code %q", r, c)
		}
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		c, err := Generate()
		require.NoError(t, err)
		seen[c] = true
	}
	require.Greater(t, len(seen), 1, "expected some variety across 20 codes")
}
