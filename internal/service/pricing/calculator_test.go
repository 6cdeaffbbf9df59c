package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

func scenarioTable(t *testing.T) *domain.PriceTable {
	t.Helper()
	table, err := domain.NewPriceTable([]domain.PriceTier{
		{StartHour: 0, EndHour: 6, UnitPrice: 50000},
		{StartHour: 6, EndHour: 18, UnitPrice: 100000},
		{StartHour: 18, EndHour: 24, UnitPrice: 150000},
	})
	require.NoError(t, err)
	return table
}

func selectionOf(t *testing.T, courts int, slots ...domain.Slot) *domain.Selection {
	t.Helper()
	sel := domain.NewSelection(1, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC), courts)
	for _, s := range slots {
		require.NoError(t, sel.Toggle(s.Court, s.Hour, nil))
	}
	return sel
}

func TestCompute_ThreeDaytimeHours(t *testing.T) {
	sel := selectionOf(t, 4, domain.Slot{Court: 2, Hour: 7}, domain.Slot{Court: 2, Hour: 8}, domain.Slot{Court: 2, Hour: 9})

	total, err := Compute(sel, scenarioTable(t))

	require.NoError(t, err)
	assert.Equal(t, int64(300000), total)
}

func TestCompute_AcrossTiersAndCourts(t *testing.T) {
	sel := selectionOf(t, 4,
		domain.Slot{Court: 1, Hour: 5},
		domain.Slot{Court: 3, Hour: 5},
		domain.Slot{Court: 1, Hour: 18},
	)

	total, err := Compute(sel, scenarioTable(t))

	require.NoError(t, err)
	assert.Equal(t, int64(50000+50000+150000), total)
}

func TestCompute_Deterministic(t *testing.T) {
	table := scenarioTable(t)
	sel := selectionOf(t, 4, domain.Slot{Court: 4, Hour: 23}, domain.Slot{Court: 1, Hour: 0})

	first, err := Compute(sel, table)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Compute(sel, table)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompute_HourOutsideTiers(t *testing.T) {
	sel := selectionOf(t, 4, domain.Slot{Court: 1, Hour: 10}, domain.Slot{Court: 1, Hour: 24})

	total, err := Compute(sel, scenarioTable(t))

	assert.ErrorIs(t, err, domain.ErrPricingNotFound)
	assert.Zero(t, total)
}

func TestCompute_NilTable(t *testing.T) {
	sel := selectionOf(t, 1, domain.Slot{Court: 1, Hour: 10})

	_, err := Compute(sel, nil)

	assert.ErrorIs(t, err, domain.ErrPricingNotFound)
}

func TestItemize(t *testing.T) {
	sel := selectionOf(t, 2, domain.Slot{Court: 2, Hour: 19}, domain.Slot{Court: 1, Hour: 7})

	items, err := Itemize(sel, scenarioTable(t))

	require.NoError(t, err)
	assert.Equal(t, []Breakdown{
		{Slot: domain.Slot{Court: 1, Hour: 7}, UnitPrice: 100000},
		{Slot: domain.Slot{Court: 2, Hour: 19}, UnitPrice: 150000},
	}, items)
}
