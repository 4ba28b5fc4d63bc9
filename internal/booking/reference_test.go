package booking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReferenceShape(t *testing.T) {
	ref, err := NewReference()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "BK-"))
	body := strings.TrimPrefix(ref, "BK-")
	assert.Len(t, body, ReferenceLength)
	for _, r := range body {
		assert.Contains(t, referenceAlphabet, string(r))
	}
}

func TestNewReferenceNoAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 200; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.NotContainsf(t, ref, "0", "ref %s", ref)
		assert.NotContainsf(t, ref, "O", "ref %s", ref)
		assert.NotContainsf(t, ref, "1", "ref %s", ref)
		assert.NotContainsf(t, ref, "I", "ref %s", ref)
		assert.NotContainsf(t, ref, "L", "ref %s", ref)
	}
}

// Not a proof of uniqueness, just a sanity check that the generator
// is not degenerate; real uniqueness comes from the DB constraint.
func TestNewReferenceVariety(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
