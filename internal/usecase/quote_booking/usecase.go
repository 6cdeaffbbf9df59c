package quote_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBooking/internal/service/venues"
)

// UseCase use case для расчёта стоимости выбора без бронирования
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

// Execute считает стоимость выбора по тем же правилам, что и коммит
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("QuoteBooking: venue=%d, date=%s, slots=%d",
		req.VenueID, req.Date.Format(domain.DateFormat), len(req.Slots))

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidDate)
	}
	date := domain.DateOnly(req.Date)

	now := uc.clock.Now().UTC()
	for _, slot := range req.Slots {
		if slot.Hour >= domain.MinHour && domain.HourStarted(date, slot.Hour, now) {
			return nil, fmt.Errorf("%w: %s on %s has already started", ErrInvalidDate, slot, date.Format(domain.DateFormat))
		}
	}

	venue, err := uc.venues.Get(ctx, req.VenueID)
	if err != nil {
		if errors.Is(err, venues.ErrVenueNotFound) {
			uc.logger.Warn("QuoteBooking: venue id=%d not found", req.VenueID)
			return nil, ErrVenueNotFound
		}
		uc.logger.Error("QuoteBooking: failed to get venue id=%d: %v", req.VenueID, err)
		return nil, fmt.Errorf("%w: failed to get venue: %v", ErrInternal, err)
	}

	index, err := uc.registry.Get(ctx, venue.ID, date)
	if err != nil {
		uc.logger.Error("QuoteBooking: failed to get availability for venue=%d: %v", venue.ID, err)
		return nil, fmt.Errorf("%w: failed to get availability: %v", ErrInternal, err)
	}

	selection, err := domain.BuildSelection(venue.ID, date, venue.CourtCount, req.Slots, index)
	if err != nil {
		uc.logger.Warn("QuoteBooking: selection rejected: %v", err)
		return nil, mapDomainError(err)
	}

	total, err := pricing.Compute(selection, venue.Pricing)
	if err != nil {
		uc.logger.Warn("QuoteBooking: pricing failed for venue=%d: %v", venue.ID, err)
		return nil, mapDomainError(err)
	}

	items, err := pricing.Itemize(selection, venue.Pricing)
	if err != nil {
		return nil, mapDomainError(err)
	}

	return &Response{
		VenueID:    venue.ID,
		Date:       date,
		TotalPrice: total,
		Items:      items,
	}, nil
}

func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidSelection):
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	case errors.Is(err, domain.ErrInvalidSlot):
		return fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	case errors.Is(err, domain.ErrSlotUnavailable):
		return fmt.Errorf("%w: %v", ErrSlotUnavailable, err)
	case errors.Is(err, domain.ErrPricingNotFound):
		return fmt.Errorf("%w: %v", ErrPricingNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
