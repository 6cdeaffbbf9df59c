package quote_booking

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
)

type fakeVenues struct {
	venue *domain.Venue
}

func (f *fakeVenues) Get(_ context.Context, id int64) (*domain.Venue, error) {
	if f.venue == nil || f.venue.ID != id {
		return nil, venues.ErrVenueNotFound
	}
	return f.venue, nil
}

type fakeRegistry struct {
	index *availability.Index
}

func (f *fakeRegistry) Get(_ context.Context, _ int64, _ time.Time) (*availability.Index, error) {
	return f.index, nil
}

var (
	now  = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	date = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()

	table, err := domain.NewPriceTable([]domain.PriceTier{
		{StartHour: 0, EndHour: 6, UnitPrice: 50000},
		{StartHour: 6, EndHour: 18, UnitPrice: 100000},
		{StartHour: 18, EndHour: 24, UnitPrice: 150000},
	})
	require.NoError(t, err)

	index := availability.NewIndex(1, date)
	index.Load([]*domain.Reservation{
		{ID: 1, VenueID: 1, Date: date, Court: 1, Hour: 10, Status: domain.StatusCommitted},
	})

	venue := &domain.Venue{ID: 1, CourtCount: 3, CloseHour: 24, Pricing: table}
	return NewUseCase(&fakeVenues{venue: venue}, &fakeRegistry{index: index}, clockwork.NewFakeClockAt(now), logger.NewNop())
}

func TestExecute_Quote(t *testing.T) {
	uc := newUseCase(t)

	resp, err := uc.Execute(context.Background(), &Request{
		VenueID: 1,
		Date:    date,
		Slots:   []domain.Slot{{Court: 2, Hour: 9}, {Court: 2, Hour: 7}, {Court: 2, Hour: 8}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(300000), resp.TotalPrice)
	assert.Equal(t, []pricing.Breakdown{
		{Slot: domain.Slot{Court: 2, Hour: 7}, UnitPrice: 100000},
		{Slot: domain.Slot{Court: 2, Hour: 8}, UnitPrice: 100000},
		{Slot: domain.Slot{Court: 2, Hour: 9}, UnitPrice: 100000},
	}, resp.Items)
}

func TestExecute_QuoteErrors(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"empty", &Request{VenueID: 1, Date: date}, ErrInvalidSelection},
		{"uncovered hour", &Request{VenueID: 1, Date: date, Slots: []domain.Slot{{Court: 1, Hour: 24}}}, ErrPricingNotFound},
		{"booked", &Request{VenueID: 1, Date: date, Slots: []domain.Slot{{Court: 1, Hour: 10}}}, ErrSlotUnavailable},
		{"bad court", &Request{VenueID: 1, Date: date, Slots: []domain.Slot{{Court: 4, Hour: 10}}}, ErrInvalidSlot},
		{"no date", &Request{VenueID: 1, Slots: []domain.Slot{{Court: 1, Hour: 9}}}, ErrInvalidDate},
		{"unknown venue", &Request{VenueID: 2, Date: date, Slots: []domain.Slot{{Court: 1, Hour: 9}}}, ErrVenueNotFound},
		{"started hour today", &Request{VenueID: 1, Date: now, Slots: []domain.Slot{{Court: 2, Hour: 8}}}, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newUseCase(t).Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_QuoteLaterHourToday(t *testing.T) {
	uc := newUseCase(t)

	resp, err := uc.Execute(context.Background(), &Request{
		VenueID: 1,
		Date:    now,
		Slots:   []domain.Slot{{Court: 2, Hour: 13}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(100000), resp.TotalPrice)
}
