package quote_booking

import (
	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	quoteBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/quote_booking"
)

// QuoteRequest HTTP request model
type QuoteRequest struct {
	Date  string                 `json:"date"`
	Slots []handlers.SlotRequest `json:"slots"`
}

// QuoteItemResponse цена одного слота
type QuoteItemResponse struct {
	Court     int   `json:"court"`
	Hour      int   `json:"hour"`
	UnitPrice int64 `json:"unitPrice"`
}

// QuoteResponse HTTP response model
type QuoteResponse struct {
	VenueID    int64               `json:"venueId"`
	Date       string              `json:"date"`
	TotalPrice int64               `json:"totalPrice"`
	Items      []QuoteItemResponse `json:"items"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *QuoteRequest) ToUseCaseRequest(venueID int64) (*quoteBooking.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}
	return &quoteBooking.Request{
		VenueID: venueID,
		Date:    date,
		Slots:   handlers.ToDomainSlots(r.Slots),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *quoteBooking.Response) *QuoteResponse {
	out := &QuoteResponse{
		VenueID:    resp.VenueID,
		Date:       resp.Date.Format(domain.DateFormat),
		TotalPrice: resp.TotalPrice,
		Items:      make([]QuoteItemResponse, 0, len(resp.Items)),
	}
	for _, item := range resp.Items {
		out.Items = append(out.Items, QuoteItemResponse{
			Court:     item.Slot.Court,
			Hour:      item.Slot.Hour,
			UnitPrice: item.UnitPrice,
		})
	}
	return out
}
