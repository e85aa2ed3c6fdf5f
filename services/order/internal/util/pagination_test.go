package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, size          int
		wantOffset, wantLim int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{-2, 500, 0, DefaultPageSize},
		{2, MaxPageSize, MaxPageSize, MaxPageSize},
		{MaxPage + 1, 10, (MaxPage - 1) * 10, 10},
		{math.MaxInt, MaxPageSize, (MaxPage - 1) * MaxPageSize, MaxPageSize},
	}

	for _, tt := range tests {
		offset, limit := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, offset, "page=%d size=%d", tt.page, tt.size)
		assert.Equal(t, tt.wantLim, limit, "page=%d size=%d", tt.page, tt.size)
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestCalculate_OffsetNeverNegative(t *testing.T) {
	t.Parallel()

	for _, page := range []int{math.MaxInt, math.MaxInt / 2, math.MaxInt/MaxPageSize + 2} {
		offset, _ := Calculate(page, MaxPageSize)
		assert.GreaterOrEqual(t, offset, 0, "page=%d", page)
	}
}
