package reservations

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Reservation, error)
	GetByUser(ctx context.Context, userID int64, includeInactive bool) ([]*domain.Reservation, error)
	GetByVenueWithFilter(ctx context.Context, filter domain.VenueReservationsFilter) ([]*domain.Reservation, error)
	CancelTransaction(ctx context.Context, transactionID uuid.UUID) ([]*domain.Reservation, error)
}

// VenueDirectory справочник площадок
type VenueDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Venue, error)
}

// ChangePublisher публикует изменения броней в ленту
type ChangePublisher interface {
	Publish(ctx context.Context, changes ...domain.ReservationChange) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
