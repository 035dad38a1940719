package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeightChi(t *testing.T) {
	got, ok := ParseWeightChi("1,5")
	require.True(t, ok)
	assert.InDelta(t, 1.5, got, 1e-9)

	got, ok = ParseWeightChi(" 0 ")
	require.True(t, ok)
	assert.Zero(t, got)

	for _, input := range []string{"", "-1", "abc", "NaN", "Inf"} {
		_, ok := ParseWeightChi(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestParseQuantity(t *testing.T) {
	got, ok := ParseQuantity(" 3 ")
	require.True(t, ok)
	assert.Equal(t, int64(3), got)

	for _, input := range []string{"0", "-2", "1.5", "", "x"} {
		_, ok := ParseQuantity(input)
		assert.False(t, ok, "input %q", input)
	}
}
