package venues

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	venueRepo "github.com/m04kA/SMC-CourtBooking/internal/infra/storage/venue"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues/models"
)

// loadTimeout ограничивает загрузку площадки, общую для всех ожидающих
const loadTimeout = 5 * time.Second

// Service справочник площадок: чтение из хранилища, валидация тарифов, кэш в памяти
type Service struct {
	venueRepo VenueRepository
	ttl       time.Duration
	clock     clockwork.Clock
	logger    Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[int64]cached
}

type cached struct {
	venue    *domain.Venue
	loadedAt time.Time
}

// NewService создает справочник площадок. ttl <= 0 отключает кэш
func NewService(venueRepo VenueRepository, ttl time.Duration, clock clockwork.Clock, logger Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		venueRepo: venueRepo,
		ttl:       ttl,
		clock:     clock,
		logger:    logger,
		cache:     make(map[int64]cached),
	}
}

// Get возвращает площадку с провалидированной таблицей тарифов
// Возвращаемое значение общее для всех вызывающих и не должно изменяться
func (s *Service) Get(ctx context.Context, id int64) (*domain.Venue, error) {
	if v, ok := s.fromCache(id); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		if v, ok := s.fromCache(id); ok {
			return v, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		return s.load(loadCtx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Venue), nil
}

// GetVenue возвращает площадку для публичного API
func (s *Service) GetVenue(ctx context.Context, id int64) (*models.VenueResponse, error) {
	venue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainVenue(venue), nil
}

// Invalidate удаляет площадку из кэша
func (s *Service) Invalidate(id int64) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// PurgeExpired удаляет устаревшие записи кэша. Возвращает число удалённых
func (s *Service) PurgeExpired() int {
	if s.ttl <= 0 {
		return 0
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for id, c := range s.cache {
		if now.Sub(c.loadedAt) >= s.ttl {
			delete(s.cache, id)
			purged++
		}
	}
	return purged
}

func (s *Service) fromCache(id int64) (*domain.Venue, bool) {
	if s.ttl <= 0 {
		return nil, false
	}

	s.mu.RLock()
	c, ok := s.cache[id]
	s.mu.RUnlock()

	if !ok || s.clock.Since(c.loadedAt) >= s.ttl {
		return nil, false
	}
	return c.venue, true
}

func (s *Service) load(ctx context.Context, id int64) (*domain.Venue, error) {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, venueRepo.ErrVenueNotFound) {
			s.logger.Warn("GetVenue: venue id=%d not found", id)
			return nil, ErrVenueNotFound
		}
		s.logger.Error("GetVenue: repository error for venue id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetVenue - repository error: %v", ErrInternal, err)
	}

	if err := s.prepare(venue); err != nil {
		s.logger.Error("GetVenue: venue id=%d: %v", id, err)
		return nil, err
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[id] = cached{venue: venue, loadedAt: s.clock.Now()}
		s.mu.Unlock()
	}

	s.logger.Info("GetVenue: loaded venue id=%d (%d courts, %d tiers)", id, venue.CourtCount, len(venue.Tiers))
	return venue, nil
}

// prepare проверяет площадку и строит таблицу тарифов
func (s *Service) prepare(venue *domain.Venue) error {
	if venue.CourtCount < domain.MinCourt || venue.CourtCount > domain.MaxCourts {
		return fmt.Errorf("%w: court count %d outside %d..%d", ErrMisconfigured,
			venue.CourtCount, domain.MinCourt, domain.MaxCourts)
	}
	if venue.OpenHour < domain.MinHour || venue.CloseHour > domain.HoursPerDay || venue.OpenHour >= venue.CloseHour {
		return fmt.Errorf("%w: opening hours [%d,%d)", ErrMisconfigured, venue.OpenHour, venue.CloseHour)
	}

	table, err := domain.NewPriceTable(venue.Tiers)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}
	venue.Pricing = table

	if missing := table.Uncovered(venue.OpenHour, venue.CloseHour); len(missing) > 0 {
		s.logger.Warn("GetVenue: venue id=%d has no price for open hours %v, they cannot be booked", venue.ID, missing)
	}
	return nil
}
