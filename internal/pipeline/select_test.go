package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"all", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{"", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
		{"1", []int{0}},
		{"1,3", []int{0, 2}},
		{"5-7", []int{4, 5, 6}},
		{"1,3,5-7", []int{0, 2, 4, 5, 6}},
		{"2, 4", []int{1, 3}},
		{"3,3,3", []int{2}},
	}
	for _, tt := range tests {
		got, err := ParseSelection(tt.in, 12)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSelectionErrors(t *testing.T) {
	for _, in := range []string{"0", "13", "5-2", "abc", "1-x", ","} {
		_, err := ParseSelection(in, 12)
		assert.Error(t, err, in)
	}
}
