package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/infra/feed"
)

// ReservationStore источник снимка активных броней
type ReservationStore interface {
	QueryReservations(ctx context.Context, venueID int64, date time.Time) ([]*domain.Reservation, error)
}

// ChangeFeed лента изменений броней
type ChangeFeed interface {
	Subscribe(ctx context.Context, venueID int64, date time.Time) (feed.Subscription, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
