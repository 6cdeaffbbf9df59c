package venues

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Venue), args.Error(1)
	}
	return nil, args.Error(1)
}

func venueFixture() *domain.Venue {
	return &domain.Venue{
		ID:         1,
		Name:       "Центральный",
		CourtCount: 4,
		OpenHour:   0,
		CloseHour:  24,
		Tiers: []domain.PriceTier{
			{StartHour: 18, EndHour: 24, UnitPrice: 150000},
			{StartHour: 0, EndHour: 6, UnitPrice: 50000},
			{StartHour: 6, EndHour: 18, UnitPrice: 100000},
		},
	}
}

func TestGet_BuildsPricing(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(venueFixture(), nil).Once()
	svc := NewService(repo, time.Minute, clockwork.NewFakeClock(), logger.NewNop())

	venue, err := svc.Get(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, venue.Pricing)
	price, err := venue.Pricing.PriceFor(7)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), price)
	repo.AssertExpectations(t)
}

func TestGet_CachesUntilTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(venueFixture(), nil).Twice()
	svc := NewService(repo, time.Minute, clock, logger.NewNop())

	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), 1)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 1)

	clock.Advance(time.Minute)
	_, err = svc.Get(context.Background(), 1)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 2)
}

func TestGet_LoadOutlivesCallerContext(t *testing.T) {
	repo := &mockRepo{}
	live := mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
	repo.On("GetByID", live, int64(1)).Return(venueFixture(), nil).Once()
	svc := NewService(repo, time.Minute, clockwork.NewFakeClock(), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	venue, err := svc.Get(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), venue.ID)
	repo.AssertExpectations(t)
}

func TestPurgeExpired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(venueFixture(), nil)
	svc := NewService(repo, time.Minute, clock, logger.NewNop())

	_, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)

	assert.Zero(t, svc.PurgeExpired())
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, svc.PurgeExpired())
}

func TestGet_NotFound(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(9)).Return(nil, venueRepo.ErrVenueNotFound)
	svc := NewService(repo, time.Minute, clockwork.NewFakeClock(), logger.NewNop())

	_, err := svc.Get(context.Background(), 9)

	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestGet_RepositoryFailure(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(nil, errors.New("connection refused"))
	svc := NewService(repo, time.Minute, clockwork.NewFakeClock(), logger.NewNop())

	_, err := svc.Get(context.Background(), 1)

	assert.ErrorIs(t, err, ErrInternal)
}

func TestGet_Misconfigured(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v *domain.Venue)
		is     error
	}{
		{"overlapping tiers", func(v *domain.Venue) {
			v.Tiers = append(v.Tiers, domain.PriceTier{StartHour: 10, EndHour: 12, UnitPrice: 1})
		}, domain.ErrInvalidPriceTier},
		{"no courts", func(v *domain.Venue) { v.CourtCount = 0 }, ErrMisconfigured},
		{"closed all day", func(v *domain.Venue) { v.OpenHour, v.CloseHour = 10, 10 }, ErrMisconfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := venueFixture()
			tt.mutate(v)
			repo := &mockRepo{}
			repo.On("GetByID", mock.Anything, int64(1)).Return(v, nil)
			svc := NewService(repo, time.Minute, clockwork.NewFakeClock(), logger.NewNop())

			_, err := svc.Get(context.Background(), 1)

			assert.ErrorIs(t, err, ErrMisconfigured)
			assert.ErrorIs(t, err, tt.is)
		})
	}
}

func TestGetVenue_SortedTiers(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(venueFixture(), nil)
	svc := NewService(repo, 0, nil, logger.NewNop())

	resp, err := svc.GetVenue(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, resp.Tiers, 3)
	assert.Equal(t, "00:00", resp.Tiers[0].From)
	assert.Equal(t, "24:00", resp.Tiers[2].To)
}
