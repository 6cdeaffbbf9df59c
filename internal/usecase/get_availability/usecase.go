package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
)

// UseCase use case для получения сетки занятости площадки на дату
type UseCase struct {
	venues   VenueDirectory
	registry AvailabilityRegistry
	clock    clockwork.Clock
	logger   Logger
}

// NewUseCase создает новый экземпляр use case. clock == nil - реальные часы
func NewUseCase(venues VenueDirectory, registry AvailabilityRegistry, clock clockwork.Clock, logger Logger) *UseCase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UseCase{
		venues:   venues,
		registry: registry,
		clock:    clock,
		logger:   logger,
	}
}

// Execute выполняет use case получения сетки
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: venue=%d, date=%s", req.VenueID, req.Date.Format(domain.DateFormat))

	now := uc.clock.Now().UTC()

	// 1. Валидация даты
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	date := domain.DateOnly(req.Date)
	if date.Before(domain.DateOnly(now)) {
		uc.logger.Warn("GetAvailability: date %s is in the past", date.Format(domain.DateFormat))
		return nil, fmt.Errorf("%w: %s is in the past", ErrInvalidDate, date.Format(domain.DateFormat))
	}

	// 2. Получаем площадку
	venue, err := uc.venues.Get(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venues.ErrVenueNotFound) {
			uc.logger.Warn("GetAvailability: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("GetAvailability: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	// 3. Получаем живой индекс занятости
	index, err := uc.registry.Get(ctx, venue.ID, date)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get availability for venue=%d: %v", venue.ID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	// 4. Строим сетку
	version := index.Version()
	courts := buildGrid(venue, index, date, now)

	uc.logger.Info("GetAvailability: built grid %dx%d for venue=%d, version=%d",
		venue.CourtCount, domain.HoursPerDay, venue.ID, version)

	return &Response{
		VenueID:    venue.ID,
		Date:       date,
		CourtCount: venue.CourtCount,
		Courts:     courts,
		Version:    version,
	}, nil
}
