package commit_booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
)

var (
	now       = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	bookingOn = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
)

// memStore хранилище в памяти с теми же гарантиями условного коммита, что и PostgreSQL
type memStore struct {
	mu     sync.Mutex
	active map[domain.SlotKey]*domain.Reservation
	byTx   map[uuid.UUID][]*domain.Reservation
	nextID int64
	calls  int
	err    error
	ctxErr error
}

func newMemStore() *memStore {
	return &memStore{
		active: make(map[domain.SlotKey]*domain.Reservation),
		byTx:   make(map[uuid.UUID][]*domain.Reservation),
	}
}

func (s *memStore) ConditionalCommit(ctx context.Context, cmd domain.CommitCommand) (*domain.CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	s.ctxErr = ctx.Err()
	if s.err != nil {
		return nil, s.err
	}

	if existing, ok := s.byTx[cmd.TransactionID]; ok {
		return &domain.CommitResult{Reservations: existing, Replayed: true}, nil
	}

	var losers []domain.Slot
	for _, slot := range cmd.Slots {
		key := domain.SlotKey{VenueID: cmd.VenueID, Date: cmd.Date, Court: slot.Court, Hour: slot.Hour}
		if _, taken := s.active[key]; taken {
			losers = append(losers, slot)
		}
	}
	if len(losers) > 0 {
		return nil, &domain.SlotConflictError{Slots: losers}
	}

	created := make([]*domain.Reservation, 0, len(cmd.Slots))
	for _, slot := range cmd.Slots {
		s.nextID++
		r := &domain.Reservation{
			ID:            s.nextID,
			TransactionID: cmd.TransactionID,
			VenueID:       cmd.VenueID,
			UserID:        cmd.UserID,
			Date:          cmd.Date,
			Court:         slot.Court,
			Hour:          slot.Hour,
			TotalPrice:    cmd.TotalPrice,
			Status:        domain.StatusCommitted,
			CreatedAt:     now,
		}
		s.active[r.Key()] = r
		created = append(created, r)
	}
	s.byTx[cmd.TransactionID] = created

	return &domain.CommitResult{Reservations: created}, nil
}

func (s *memStore) book(userID int64, slots ...domain.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range slots {
		s.nextID++
		r := &domain.Reservation{ID: s.nextID, TransactionID: uuid.New(), VenueID: 1, UserID: userID,
			Date: bookingOn, Court: slot.Court, Hour: slot.Hour, Status: domain.StatusCommitted}
		s.active[r.Key()] = r
	}
}

// cancel отменяет все брони транзакции и освобождает их слоты
func (s *memStore) cancel(txID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelledAt := now
	for _, r := range s.byTx[txID] {
		r.Status = domain.StatusCancelled
		r.CancelledAt = &cancelledAt
		delete(s.active, r.Key())
	}
}

func (s *memStore) countCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeVenues struct {
	venue *domain.Venue
}

func (f *fakeVenues) Get(_ context.Context, id int64) (*domain.Venue, error) {
	if f.venue == nil || f.venue.ID != id {
		return nil, venues.ErrVenueNotFound
	}
	return f.venue, nil
}

// fakeRegistry отдаёт индекс, который обновляется только через Refresh
type fakeRegistry struct {
	mu        sync.Mutex
	index     *availability.Index
	store     *memStore
	refreshes int
}

func (f *fakeRegistry) Get(_ context.Context, _ int64, _ time.Time) (*availability.Index, error) {
	return f.index, nil
}

func (f *fakeRegistry) Refresh(_ context.Context, venueID int64, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++

	f.store.mu.Lock()
	rows := make([]*domain.Reservation, 0, len(f.store.active))
	for _, r := range f.store.active {
		if r.VenueID == venueID && r.Date.Equal(date) {
			rows = append(rows, r)
		}
	}
	f.store.mu.Unlock()

	f.index.Load(rows)
	return nil
}

func (f *fakeRegistry) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

type fakePublisher struct {
	mu      sync.Mutex
	changes []domain.ReservationChange
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, changes ...domain.ReservationChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.changes = append(f.changes, changes...)
	return nil
}

type fakeUsers struct {
	err error
}

func (f *fakeUsers) GetUserWithGracefulDegradation(_ context.Context, userID int64) (*userservice.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &userservice.User{ID: userID, IsActive: true}, nil
}

type fixture struct {
	store     *memStore
	registry  *fakeRegistry
	publisher *fakePublisher
	users     *fakeUsers
	uc        *UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	table, err := domain.NewPriceTable([]domain.PriceTier{
		{StartHour: 0, EndHour: 6, UnitPrice: 50000},
		{StartHour: 6, EndHour: 18, UnitPrice: 100000},
		{StartHour: 18, EndHour: 24, UnitPrice: 150000},
	})
	require.NoError(t, err)

	venue := &domain.Venue{ID: 1, Name: "Центральный", CourtCount: 4, OpenHour: 0, CloseHour: 24, Pricing: table}

	f := &fixture{
		store:     newMemStore(),
		publisher: &fakePublisher{},
		users:     &fakeUsers{},
	}
	f.registry = &fakeRegistry{index: availability.NewIndex(1, bookingOn), store: f.store}
	f.uc = NewUseCase(f.store, &fakeVenues{venue: venue}, f.registry, f.publisher, time.Second, logger.NewNop(),
		WithClock(clockwork.NewFakeClockAt(now)),
		WithUserClient(f.users),
	)
	return f
}

func request(userID int64, slots ...domain.Slot) *Request {
	return &Request{UserID: userID, VenueID: 1, Date: bookingOn, Slots: slots}
}

func TestExecute_CommitsSelection(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 2, Hour: 7}, domain.Slot{Court: 2, Hour: 8}, domain.Slot{Court: 2, Hour: 9}))

	require.NoError(t, err)
	assert.Equal(t, int64(300000), resp.TotalPrice)
	assert.False(t, resp.Replayed)
	require.Len(t, resp.Reservations, 3)
	for _, r := range resp.Reservations {
		assert.Equal(t, resp.TransactionID, r.TransactionID)
		assert.Equal(t, int64(300000), r.TotalPrice)
		assert.Equal(t, int64(7), r.UserID)
	}

	require.Len(t, f.publisher.changes, 3)
	for _, c := range f.publisher.changes {
		assert.Equal(t, domain.ChangeCreated, c.Kind)
	}
}

func TestExecute_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	slot := domain.Slot{Court: 1, Hour: 10}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Execute(context.Background(), request(int64(100+i), slot))
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrSlotConflict)
		var conflict *domain.SlotConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, []domain.Slot{slot}, conflict.Slots)
	}
	assert.Equal(t, 1, successes)
	assert.Len(t, f.store.active, 1)
}

func TestExecute_ConcurrentOverlappingSelectionsNeverDoubleBook(t *testing.T) {
	f := newFixture(t)
	const workers = 24

	var wg sync.WaitGroup
	results := make([]*Response, workers)
	errs := make([]error, workers)
	requested := make([][]domain.Slot, workers)

	for i := 0; i < workers; i++ {
		requested[i] = []domain.Slot{
			{Court: 1 + i%3, Hour: 8 + i%4},
			{Court: 1 + (i+1)%3, Hour: 8 + (i+2)%4},
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.uc.Execute(context.Background(), request(int64(i+1), requested[i]...))
		}(i)
	}
	wg.Wait()

	owners := make(map[domain.Slot]int64)
	var successes int
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			// проигравшие обновляют индекс, поэтому поздние запросы отсекаются локально
			if errors.Is(errs[i], ErrSlotUnavailable) {
				continue
			}
			require.ErrorIs(t, errs[i], ErrSlotConflict, "worker %d", i)
			var conflict *domain.SlotConflictError
			require.ErrorAs(t, errs[i], &conflict)
			assert.Subset(t, requested[i], conflict.Slots)
			continue
		}
		successes++
		assert.Len(t, results[i].Reservations, len(requested[i]))
		for _, r := range results[i].Reservations {
			_, taken := owners[r.Slot()]
			assert.False(t, taken, "slot %s booked twice", r.Slot())
			owners[r.Slot()] = r.UserID
		}
	}

	assert.GreaterOrEqual(t, successes, 1)
	assert.Len(t, f.store.active, len(owners))
}

func TestExecute_UncoveredHour(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 23}, domain.Slot{Court: 1, Hour: 24}))

	assert.ErrorIs(t, err, ErrPricingNotFound)
	assert.Zero(t, f.store.countCalls())
	assert.Empty(t, f.store.active)
}

func TestExecute_EmptySelection(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), request(7))

	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Zero(t, f.store.countCalls())
}

func TestExecute_LaterHourToday(t *testing.T) {
	f := newFixture(t)
	req := &Request{UserID: 7, VenueID: 1, Date: domain.DateOnly(now), Slots: []domain.Slot{{Court: 1, Hour: 13}}}

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, resp.Reservations, 1)
	assert.Equal(t, 13, resp.Reservations[0].Hour)
}

func TestExecute_RejectedBeforeStore(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"anonymous", request(0, domain.Slot{Court: 1, Hour: 9}), ErrUnauthenticated},
		{"unknown venue", &Request{UserID: 7, VenueID: 9, Date: bookingOn, Slots: []domain.Slot{{Court: 1, Hour: 9}}}, ErrVenueNotFound},
		{"past date", &Request{UserID: 7, VenueID: 1, Date: now.AddDate(0, 0, -1), Slots: []domain.Slot{{Court: 1, Hour: 9}}}, ErrInvalidDate},
		{"unknown court", request(7, domain.Slot{Court: 5, Hour: 9}), ErrInvalidSlot},
		{"duplicate slot", request(7, domain.Slot{Court: 1, Hour: 9}, domain.Slot{Court: 1, Hour: 9}), ErrInvalidSelection},
		{"empty selection for unknown venue", &Request{UserID: 7, VenueID: 9, Date: bookingOn}, ErrInvalidSelection},
		{"started hour today", &Request{UserID: 7, VenueID: 1, Date: now, Slots: []domain.Slot{{Court: 1, Hour: 8}}}, ErrInvalidDate},
		{"current hour today", &Request{UserID: 7, VenueID: 1, Date: now, Slots: []domain.Slot{{Court: 1, Hour: 12}}}, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.uc.Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.store.countCalls())
		})
	}
}

func TestExecute_LocallyBookedSlot(t *testing.T) {
	f := newFixture(t)
	f.store.book(99, domain.Slot{Court: 1, Hour: 10})
	require.NoError(t, f.registry.Refresh(context.Background(), 1, bookingOn))

	_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 10}))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Zero(t, f.store.countCalls())
}

func TestExecute_ClosedHour(t *testing.T) {
	f := newFixture(t)
	venue, err := f.uc.venues.Get(context.Background(), 1)
	require.NoError(t, err)
	venue.OpenHour = 8

	_, err = f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 7}))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Zero(t, f.store.countCalls())
}

func TestExecute_StaleIndexConflictRefreshes(t *testing.T) {
	f := newFixture(t)
	f.store.book(99, domain.Slot{Court: 3, Hour: 19})

	_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 3, Hour: 18}, domain.Slot{Court: 3, Hour: 19}))

	require.ErrorIs(t, err, ErrSlotConflict)
	var conflict *domain.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []domain.Slot{{Court: 3, Hour: 19}}, conflict.Slots)
	assert.Equal(t, 1, f.registry.refreshCount())
	assert.True(t, f.registry.index.IsBooked(3, 19))
	assert.False(t, f.registry.index.IsBooked(3, 18))
	assert.Empty(t, f.publisher.changes)
}

func TestExecute_IdempotentReplay(t *testing.T) {
	f := newFixture(t)
	txID := uuid.New()
	req := request(7, domain.Slot{Court: 1, Hour: 6})
	req.TransactionID = &txID

	first, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// повтор после подтверждения: индекс ещё не видит собственные брони
	second, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, txID, second.TransactionID)
	assert.Equal(t, first.Reservations, second.Reservations)
	assert.Len(t, f.publisher.changes, 1)
}

func TestExecute_ReplayWithDifferentSelection(t *testing.T) {
	f := newFixture(t)
	txID := uuid.New()

	req := request(7, domain.Slot{Court: 1, Hour: 6})
	req.TransactionID = &txID
	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	other := request(7, domain.Slot{Court: 2, Hour: 6})
	other.TransactionID = &txID
	_, err = f.uc.Execute(context.Background(), other)

	assert.ErrorIs(t, err, ErrIdempotencyMismatch)
}

func TestExecute_ReplayAfterCancellation(t *testing.T) {
	f := newFixture(t)
	txID := uuid.New()
	req := request(7, domain.Slot{Court: 1, Hour: 6}, domain.Slot{Court: 1, Hour: 7})
	req.TransactionID = &txID

	_, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	f.store.cancel(txID)

	resp, err := f.uc.Execute(context.Background(), req)

	assert.ErrorIs(t, err, ErrTransactionCancelled)
	assert.Nil(t, resp)
	assert.Len(t, f.publisher.changes, 2)
}

func TestExecute_StoreFailureIsPersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("connection reset by peer")

	_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 9}))

	assert.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Equal(t, 1, f.store.countCalls())
}

func TestExecute_NotCancelledByClientDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.Execute(ctx, request(7, domain.Slot{Court: 1, Hour: 9}))

	require.NoError(t, err)
	assert.NoError(t, f.store.ctxErr)
}

func TestExecute_PublishFailureRefreshesIndex(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = fmt.Errorf("redis: connection refused")

	_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 9}))

	require.NoError(t, err)
	assert.Equal(t, 1, f.registry.refreshCount())
	assert.True(t, f.registry.index.IsBooked(1, 9))
}

func TestExecute_UserService(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		f := newFixture(t)
		f.users.err = userservice.ErrUserNotFound

		_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 9}))

		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.Zero(t, f.store.countCalls())
	})

	t.Run("degraded", func(t *testing.T) {
		f := newFixture(t)
		f.users.err = fmt.Errorf("%w: timeout", userservice.ErrServiceDegraded)

		_, err := f.uc.Execute(context.Background(), request(7, domain.Slot{Court: 1, Hour: 9}))

		assert.NoError(t, err)
	})
}
