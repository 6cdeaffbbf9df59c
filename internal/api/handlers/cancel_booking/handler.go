package cancel_booking

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
	msgMissingUserID        = "отсутствует ID пользователя"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "доступ запрещен"
	msgCannotCancel         = "бронирование уже отменено"
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

// Handle PATCH /api/v1/bookings/{transactionId}/cancel
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	transactionID, err := uuid.Parse(mux.Vars(r)["transactionId"])
	if err != nil {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Invalid transaction ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTransactionID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /bookings/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	transaction, err := h.service.CancelTransaction(r.Context(), transactionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrTransactionNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("PATCH /bookings/{id}/cancel - Access denied: transaction_id=%s, user_id=%d", transactionID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrCannotCancel):
			handlers.RespondError(w, http.StatusConflict, msgCannotCancel)

		default:
			h.logger.Error("PATCH /bookings/{id}/cancel - Failed to cancel: transaction_id=%s, error=%v", transactionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /bookings/{id}/cancel - Transaction cancelled: transaction_id=%s, user_id=%d, slots=%d",
		transactionID, userID, len(transaction.Slots))
	handlers.RespondJSON(w, http.StatusOK, transaction)
}
