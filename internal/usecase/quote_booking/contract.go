package quote_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
)

// VenueDirectory справочник площадок
type VenueDirectory interface {
	Get(ctx context.Context, id int64) (*domain.Venue, error)
}

// AvailabilityRegistry реестр живых индексов занятости
type AvailabilityRegistry interface {
	Get(ctx context.Context, venueID int64, date time.Time) (*availability.Index, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
