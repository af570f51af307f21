package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize_ValidSizes(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"", 0},
		{"512B", 512},
		{"100KB", 102400},
		{"1MB", 1048576},
		{"1.5GB", 1610612736},
		{"500mb", 524288000},
		{"0.5KB", 512},
		{"1TB", 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseSize_InvalidFormats(t *testing.T) {
	for _, input := range []string{"100", "1.5PB", "abc", "100 MB", "-100MB"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSize(input)
			assert.Error(t, err)
		})
	}
}

func TestParseAxes(t *testing.T) {
	axes, err := ParseAxes("1, 2,0")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, axes)

	// Syntax only: duplicates are the volume's concern.
	axes, err = ParseAxes("0,0,1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1}, axes)

	_, err = ParseAxes("")
	assert.Error(t, err)
	_, err = ParseAxes("1,x,0")
	assert.Error(t, err)
}

func TestParseIndices(t *testing.T) {
	got, err := ParseIndices("4,0-2,4")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0, 1, 2, 4}, got)

	got, err = ParseIndices("")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"a", "3-1", "1-", "-"} {
		_, err := ParseIndices(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFloats(t *testing.T) {
	got, err := ParseFloats("3, 1.5,-2")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1.5, -2}, got)

	_, err = ParseFloats("1,,2")
	assert.Error(t, err)
}
