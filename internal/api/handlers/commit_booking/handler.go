package commit_booking

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	commitBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/commit_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgUnauthenticated    = "пользователь не найден"
	msgVenueNotFound      = "площадка не найдена"
	msgInvalidSelection   = "выберите хотя бы один слот, без повторов"
	msgInvalidSlot        = "слот вне сетки площадки"
	msgPastDate           = "нельзя бронировать прошедшую дату или начавшийся час"
	msgPricingNotFound    = "для выбранного часа нет тарифа"
	msgSlotUnavailable    = "выбранный слот уже занят"
	msgSlotConflict       = "слоты заняты другим пользователем, обновите сетку"
	msgIdempotency        = "transactionId уже использован для другого выбора"
	msgTxCancelled        = "бронирование по этой транзакции уже отменено"
	msgPersistence        = "не удалось подтвердить бронирование, проверьте статус транзакции"
)

type Handler struct {
	useCase CommitBookingUseCase
	logger  Logger
}

func NewHandler(useCase CommitBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CommitBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid date %q: %v", req.Date, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, commitBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: user_id=%d, venue_id=%d: %v", userID, req.VenueID, err)
			handlers.RespondConflict(w, msgSlotConflict, handlers.ConflictSlots(err))

		case errors.Is(err, commitBooking.ErrSlotUnavailable):
			h.logger.Warn("POST /bookings - Slot unavailable: user_id=%d, venue_id=%d", userID, req.VenueID)
			handlers.RespondConflict(w, msgSlotUnavailable, nil)

		case errors.Is(err, commitBooking.ErrIdempotencyMismatch):
			h.logger.Warn("POST /bookings - Transaction id reused: user_id=%d", userID)
			handlers.RespondError(w, http.StatusConflict, msgIdempotency)

		case errors.Is(err, commitBooking.ErrTransactionCancelled):
			h.logger.Warn("POST /bookings - Transaction already cancelled: user_id=%d", userID)
			handlers.RespondError(w, http.StatusConflict, msgTxCancelled)

		case errors.Is(err, commitBooking.ErrUnauthenticated):
			h.logger.Warn("POST /bookings - Unauthenticated: user_id=%d", userID)
			handlers.RespondUnauthorized(w, msgUnauthenticated)

		case errors.Is(err, commitBooking.ErrVenueNotFound):
			h.logger.Warn("POST /bookings - Venue not found: venue_id=%d", req.VenueID)
			handlers.RespondNotFound(w, msgVenueNotFound)

		case errors.Is(err, commitBooking.ErrInvalidSelection):
			handlers.RespondBadRequest(w, msgInvalidSelection)

		case errors.Is(err, commitBooking.ErrInvalidSlot):
			handlers.RespondBadRequest(w, msgInvalidSlot)

		case errors.Is(err, commitBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, commitBooking.ErrPricingNotFound):
			handlers.RespondBadRequest(w, msgPricingNotFound)

		case errors.Is(err, commitBooking.ErrPersistenceFailure):
			h.logger.Error("POST /bookings - Persistence failure: user_id=%d, venue_id=%d, error=%v", userID, req.VenueID, err)
			handlers.RespondServiceUnavailable(w, msgPersistence)

		default:
			h.logger.Error("POST /bookings - Failed to commit booking: user_id=%d, venue_id=%d, error=%v",
				userID, req.VenueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}

	h.logger.Info("POST /bookings - Booking committed: transaction_id=%s, user_id=%d, venue_id=%d, slots=%d",
		result.TransactionID, userID, req.VenueID, len(result.Reservations))
	handlers.RespondJSON(w, status, FromUseCaseResponse(result))
}

func formatHour(hour int) string {
	return fmt.Sprintf(domain.HourFormat, hour)
}
