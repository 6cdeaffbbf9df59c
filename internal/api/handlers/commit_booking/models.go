package commit_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	commitBooking "github.com/m04kA/SMC-CourtBooking/internal/usecase/commit_booking"
)

// CommitBookingRequest HTTP request model
type CommitBookingRequest struct {
	VenueID       int64                  `json:"venueId"`
	Date          string                 `json:"date"` // "2025-10-15"
	Slots         []handlers.SlotRequest `json:"slots"`
	TransactionID *uuid.UUID             `json:"transactionId,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID    int64  `json:"id"`
	Court int    `json:"court"`
	Hour  int    `json:"hour"`
	Time  string `json:"time"`
}

// CommitBookingResponse HTTP response model
type CommitBookingResponse struct {
	TransactionID uuid.UUID             `json:"transactionId"`
	VenueID       int64                 `json:"venueId"`
	UserID        int64                 `json:"userId"`
	Date          string                `json:"date"`
	TotalPrice    int64                 `json:"totalPrice"`
	Status        string                `json:"status"`
	Replayed      bool                  `json:"replayed"`
	Reservations  []ReservationResponse `json:"reservations"`
	CreatedAt     string                `json:"createdAt,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CommitBookingRequest) ToUseCaseRequest(userID int64) (*commitBooking.Request, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &commitBooking.Request{
		UserID:        userID,
		VenueID:       r.VenueID,
		Date:          date,
		Slots:         handlers.ToDomainSlots(r.Slots),
		TransactionID: r.TransactionID,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *commitBooking.Response) *CommitBookingResponse {
	out := &CommitBookingResponse{
		TransactionID: resp.TransactionID,
		VenueID:       resp.VenueID,
		UserID:        resp.UserID,
		Date:          resp.Date.Format(domain.DateFormat),
		TotalPrice:    resp.TotalPrice,
		Status:        string(domain.StatusCommitted),
		Replayed:      resp.Replayed,
		Reservations:  make([]ReservationResponse, 0, len(resp.Reservations)),
	}

	for _, r := range resp.Reservations {
		out.Reservations = append(out.Reservations, ReservationResponse{
			ID:    r.ID,
			Court: r.Court,
			Hour:  r.Hour,
			Time:  formatHour(r.Hour),
		})
		out.Status = string(r.Status)
	}

	if len(resp.Reservations) > 0 {
		out.CreatedAt = resp.Reservations[0].CreatedAt.Format(time.RFC3339)
	}

	return out
}
