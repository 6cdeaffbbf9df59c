package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayTiers() []PriceTier {
	return []PriceTier{
		{StartHour: 18, EndHour: 24, UnitPrice: 150000},
		{StartHour: 0, EndHour: 6, UnitPrice: 50000},
		{StartHour: 6, EndHour: 18, UnitPrice: 100000},
	}
}

func TestNewPriceTable_SortsTiers(t *testing.T) {
	table, err := NewPriceTable(dayTiers())
	require.NoError(t, err)

	tiers := table.Tiers()
	require.Len(t, tiers, 3)
	assert.Equal(t, 0, tiers[0].StartHour)
	assert.Equal(t, 6, tiers[1].StartHour)
	assert.Equal(t, 18, tiers[2].StartHour)
}

func TestNewPriceTable_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		tiers []PriceTier
	}{
		{"overlap", []PriceTier{{0, 10, 1}, {9, 12, 1}}},
		{"empty range", []PriceTier{{5, 5, 1}}},
		{"inverted", []PriceTier{{8, 6, 1}}},
		{"past midnight", []PriceTier{{20, 25, 1}}},
		{"negative start", []PriceTier{{-1, 3, 1}}},
		{"zero price", []PriceTier{{0, 6, 0}}},
		{"negative price", []PriceTier{{0, 6, -10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceTable(tt.tiers)
			assert.ErrorIs(t, err, ErrInvalidPriceTier)
		})
	}
}

func TestNewPriceTable_AdjacentTiersAllowed(t *testing.T) {
	_, err := NewPriceTable([]PriceTier{{0, 12, 1}, {12, 24, 2}})
	assert.NoError(t, err)
}

func TestPriceFor(t *testing.T) {
	table, err := NewPriceTable(dayTiers())
	require.NoError(t, err)

	tests := []struct {
		hour int
		want int64
	}{
		{0, 50000},
		{5, 50000},
		{6, 100000},
		{17, 100000},
		{18, 150000},
		{23, 150000},
	}

	for _, tt := range tests {
		got, err := table.PriceFor(tt.hour)
		require.NoError(t, err, "hour %d", tt.hour)
		assert.Equal(t, tt.want, got, "hour %d", tt.hour)
	}

	_, err = table.PriceFor(24)
	assert.ErrorIs(t, err, ErrPricingNotFound)
}

func TestTotalFor(t *testing.T) {
	table, err := NewPriceTable(dayTiers())
	require.NoError(t, err)

	total, err := table.TotalFor([]int{7, 8, 9})
	require.NoError(t, err)
	assert.Equal(t, int64(300000), total)

	// один и тот же час на двух кортах оплачивается дважды
	total, err = table.TotalFor([]int{10, 10})
	require.NoError(t, err)
	assert.Equal(t, int64(200000), total)
}

func TestTotalFor_UncoveredHourFailsWholeTotal(t *testing.T) {
	table, err := NewPriceTable([]PriceTier{{StartHour: 6, EndHour: 18, UnitPrice: 100000}})
	require.NoError(t, err)

	total, err := table.TotalFor([]int{7, 20, 8})
	assert.ErrorIs(t, err, ErrPricingNotFound)
	assert.Zero(t, total)
}

func TestEmptyPriceTable(t *testing.T) {
	table, err := NewPriceTable(nil)
	require.NoError(t, err)

	_, err = table.PriceFor(10)
	assert.ErrorIs(t, err, ErrPricingNotFound)
	assert.Len(t, table.Uncovered(0, HoursPerDay), HoursPerDay)
}

func TestUncovered(t *testing.T) {
	table, err := NewPriceTable([]PriceTier{{0, 6, 1}, {8, 24, 1}})
	require.NoError(t, err)

	assert.Equal(t, []int{6, 7}, table.Uncovered(0, HoursPerDay))
}
