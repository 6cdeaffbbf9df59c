package get_booking

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/service/reservations"
)

const (
	msgInvalidTransactionID = "некорректный ID транзакции"
	msgNotFound             = "бронирование не найдено"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgForbidden            = "доступ запрещен"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{transactionId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(mux.Vars(r)["transactionId"])
	if err != nil {
		h.logger.Warn("GET /bookings/{id} - Invalid transaction ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransactionID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /bookings/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Сервис сам проверит права доступа
	transaction, err := h.service.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrTransactionNotFound):
			h.logger.Warn("GET /bookings/{id} - Transaction not found: transaction_id=%s", transactionID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{id} - Access denied: transaction_id=%s, user_id=%d", transactionID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /bookings/{id} - Failed to get transaction: transaction_id=%s, error=%v", transactionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/{id} - Transaction retrieved: transaction_id=%s, user_id=%d", transactionID, userID)
	handlers.RespondJSON(w, http.StatusOK, transaction)
}
