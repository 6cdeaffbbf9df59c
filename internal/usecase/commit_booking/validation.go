package commit_booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrUnauthenticated)
	}

	if req.VenueID <= 0 {
		return fmt.Errorf("%w: venueID must be positive", ErrVenueNotFound)
	}

	if len(req.Slots) == 0 {
		return fmt.Errorf("%w: no slots selected", ErrInvalidSelection)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidDate)
	}

	if domain.DateOnly(req.Date).Before(domain.DateOnly(now)) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidDate, req.Date.Format(domain.DateFormat))
	}

	for _, slot := range req.Slots {
		if slot.Hour >= domain.MinHour && domain.HourStarted(req.Date, slot.Hour, now) {
			return fmt.Errorf("%w: %s on %s has already started", ErrInvalidDate, slot, req.Date.Format(domain.DateFormat))
		}
	}

	if req.TransactionID != nil && *req.TransactionID == uuid.Nil {
		return fmt.Errorf("%w: transactionId must not be nil uuid", ErrInvalidSelection)
	}

	return nil
}

// validateOpenHours проверяет, что площадка открыта в каждый выбранный час
func validateOpenHours(venue *domain.Venue, selection *domain.Selection) error {
	for _, slot := range selection.Slots() {
		if !venue.IsOpenAt(slot.Hour) {
			return fmt.Errorf("%w: venue is closed at %s", ErrSlotUnavailable, slot)
		}
	}
	return nil
}

// matchesReplay проверяет, что повторный запрос описывает ту же транзакцию
func matchesReplay(cmd domain.CommitCommand, reservations []*domain.Reservation) bool {
	if len(reservations) != len(cmd.Slots) {
		return false
	}

	want := make(map[domain.Slot]struct{}, len(cmd.Slots))
	for _, s := range cmd.Slots {
		want[s] = struct{}{}
	}

	for _, r := range reservations {
		if r.VenueID != cmd.VenueID || r.UserID != cmd.UserID || !r.Date.Equal(cmd.Date) {
			return false
		}
		if _, ok := want[r.Slot()]; !ok {
			return false
		}
	}
	return true
}

// replayActive проверяет, что все брони повторяемой транзакции ещё действуют
func replayActive(reservations []*domain.Reservation) bool {
	for _, r := range reservations {
		if !r.IsActive() {
			return false
		}
	}
	return true
}

// mapDomainError переводит ошибки выбора и тарификации в ошибки usecase
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
