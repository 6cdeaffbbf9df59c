package commit_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/integrations/userservice"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
)

// ReservationStore хранилище с атомарным условным коммитом
type ReservationStore interface {
	ConditionalCommit(ctx context.Context, cmd domain.CommitCommand) (*domain.CommitResult, error)
}

// VenueDirectory справочник площадок
type VenueDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Venue, error)
}

// AvailabilityRegistry реестр живых индексов занятости
type AvailabilityRegistry interface {
	Get(ctx context.Context, venueID int64, date time.Time) (*availability.Index, error)
	Refresh(ctx context.Context, venueID int64, date time.Time) error
}

// ChangePublisher публикует изменения броней в ленту
type ChangePublisher interface {
	Publish(ctx context.Context, changes ...domain.ReservationChange) error
}

// UserServiceClient интерфейс клиента для UserService
type UserServiceClient interface {
	GetUserWithGracefulDegradation(ctx context.Context, userID int64) (*userservice.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
