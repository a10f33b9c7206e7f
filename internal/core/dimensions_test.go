package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBuiltInDimension(t *testing.T) {
	dim, ok := FindBuiltInDimension("emotion_motivation")
	require.True(t, ok)
	assert.Equal(t, "emotion_motivation", dim.Name)
	assert.NotEmpty(t, dim.Options)

	// Lookup is case-insensitive and trims whitespace.
	upper, ok := FindBuiltInDimension("  EMOTION_MOTIVATION ")
	require.True(t, ok)
	assert.Equal(t, dim.Name, upper.Name)

	// The returned value is a copy; mutating it leaves the seed intact.
	dim.DisplayName = "changed"
	again, ok := FindBuiltInDimension("emotion_motivation")
	require.True(t, ok)
	assert.NotEqual(t, "changed", again.DisplayName)

	_, ok = FindBuiltInDimension("no_such_dimension")
	assert.False(t, ok)
	_, ok = FindBuiltInDimension("")
	assert.False(t, ok)
}
