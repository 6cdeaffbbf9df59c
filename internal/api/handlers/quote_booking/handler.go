package quote_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	quoteBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/quote_booking"
)

const (
	msgInvalidVenueID     = "некорректный ID площадки"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgStartedHour        = "выбранный час уже начался"
	msgVenueNotFound      = "площадка не найдена"
	msgInvalidSelection   = "выберите хотя бы один слот, без повторов"
	msgInvalidSlot        = "слот вне сетки площадки"
	msgPricingNotFound    = "для выбранного часа нет тарифа"
	msgSlotUnavailable    = "выбранный слот уже занят"
)

type Handler struct {
	useCase QuoteBookingUseCase
	logger  Logger
}

func NewHandler(useCase QuoteBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/venues/{venueId}/quote
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	venueID, err := strconv.ParseInt(mux.Vars(r)["venueId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /venues/{id}/quote - Invalid venue ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVenueID)
		return
	}

	var req QuoteRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /venues/{id}/quote - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(venueID)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, quoteBooking.ErrVenueNotFound):
			handlers.RespondNotFound(w, msgVenueNotFound)
		case errors.Is(err, quoteBooking.ErrSlotUnavailable):
			handlers.RespondConflict(w, msgSlotUnavailable, nil)
		case errors.Is(err, quoteBooking.ErrInvalidSelection):
			handlers.RespondBadRequest(w, msgInvalidSelection)
		case errors.Is(err, quoteBooking.ErrInvalidSlot):
			handlers.RespondBadRequest(w, msgInvalidSlot)
		case errors.Is(err, quoteBooking.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgStartedHour)
		case errors.Is(err, quoteBooking.ErrPricingNotFound):
			handlers.RespondBadRequest(w, msgPricingNotFound)
		default:
			h.logger.Error("POST /venues/{id}/quote - Failed to quote: venue_id=%d, error=%v", venueID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
