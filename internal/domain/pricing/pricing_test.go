package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffective(t *testing.T) {
	tests := []struct {
		name      string
		basePrice int64
		salePrice int64
		want      int64
	}{
		{name: "sale price wins when set", basePrice: 1000, salePrice: 800, want: 800},
		{name: "zero sale price means no sale", basePrice: 1000, salePrice: 0, want: 1000},
		{name: "negative sale price means no sale", basePrice: 1000, salePrice: -1, want: 1000},
		{name: "sale price above base still wins", basePrice: 1000, salePrice: 1200, want: 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Effective(tt.basePrice, tt.salePrice))
		})
	}
}

func TestPriceRange(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, ok := PriceRange(nil)
		assert.False(t, ok)
	})

	t.Run("single price collapses", func(t *testing.T) {
		r, ok := PriceRange([]int64{1200})
		require.True(t, ok)
		assert.True(t, r.Single())
		assert.Equal(t, int64(1200), r.Min)
		assert.Equal(t, int64(1200), r.Max)
	})

	t.Run("min and max across prices", func(t *testing.T) {
		r, ok := PriceRange([]int64{1200, 1000, 1100})
		require.True(t, ok)
		assert.Equal(t, int64(1000), r.Min)
		assert.Equal(t, int64(1200), r.Max)
		assert.False(t, r.Single())
	})

	t.Run("equal prices collapse to one value", func(t *testing.T) {
		r, ok := PriceRange([]int64{999, 999, 999})
		require.True(t, ok)
		assert.True(t, r.Single())
	})
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$10.00", FormatCurrency(1000))
	assert.Equal(t, "$19.50", FormatCurrency(1950))
	assert.Equal(t, "$0.05", FormatCurrency(5))
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "-$1.25", FormatCurrency(-125))
}

func TestRangeDisplay(t *testing.T) {
	assert.Equal(t, "$10.00", Range{Min: 1000, Max: 1000}.Display())
	assert.Equal(t, "$10.00 - $12.00", Range{Min: 1000, Max: 1200}.Display())
}
