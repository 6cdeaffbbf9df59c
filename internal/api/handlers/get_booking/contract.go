package get_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations/models"
)

type ReservationService interface {
	GetTransaction(ctx context.Context, transactionID uuid.UUID, userID int64) (*models.TransactionResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
