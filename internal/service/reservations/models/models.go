package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Request модели

// GetUserReservationsRequest запрос на получение броней пользователя
type GetUserReservationsRequest struct {
	UserID          int64 `json:"userId"`
	IncludeInactive bool  `json:"includeInactive,omitempty"` // Включить отменённые брони
}

// GetVenueReservationsRequest запрос на получение броней площадки за дату
type GetVenueReservationsRequest struct {
	UserID          int64     `json:"userId"`
	VenueID         int64     `json:"venueId"`
	Date            time.Time `json:"date"`
	Court           *int      `json:"court,omitempty"` // Фильтр по корту (опционально)
	IncludeInactive bool      `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetVenueReservationsRequest) ToDomainFilter() domain.VenueReservationsFilter {
	return domain.VenueReservationsFilter{
		VenueID:         r.VenueID,
		Date:            r.Date,
		Court:           r.Court,
		IncludeInactive: r.IncludeInactive,
	}
}

// Response модели

// SlotResponse ячейка сетки
type SlotResponse struct {
	Court int    `json:"court"`
	Hour  int    `json:"hour"`
	Time  string `json:"time"` // "07:00"
}

// ReservationResponse бронь одного слота
type ReservationResponse struct {
	ID            int64     `json:"id"`
	TransactionID uuid.UUID `json:"transactionId"`
	VenueID       int64     `json:"venueId"`
	UserID        int64     `json:"userId"`
	Date          string    `json:"date"` // "2025-10-15"
	Court         int       `json:"court"`
	Hour          int       `json:"hour"`
	TotalPrice    int64     `json:"totalPrice"`
	Status        string    `json:"status"`

	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TransactionResponse брони одной транзакции бронирования
type TransactionResponse struct {
	TransactionID uuid.UUID      `json:"transactionId"`
	VenueID       int64          `json:"venueId"`
	UserID        int64          `json:"userId"`
	Date          string         `json:"date"`
	TotalPrice    int64          `json:"totalPrice"`
	Status        string         `json:"status"`
	Slots         []SlotResponse `json:"slots"`

	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TransactionListResponse ответ со списком транзакций
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainSlot конвертирует ячейку сетки в DTO
func FromDomainSlot(s domain.Slot) SlotResponse {
	return SlotResponse{
		Court: s.Court,
		Hour:  s.Hour,
		Time:  fmt.Sprintf(domain.HourFormat, s.Hour),
	}
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		VenueID:       r.VenueID,
		UserID:        r.UserID,
		Date:          r.Date.Format(domain.DateFormat),
		Court:         r.Court,
		Hour:          r.Hour,
		TotalPrice:    r.TotalPrice,
		Status:        string(r.Status),
		CancelledAt:   r.CancelledAt,
		CreatedAt:     r.CreatedAt,
	}
}

// FromDomainReservationList конвертирует список броней
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, FromDomainReservation(r))
	}
	return resp
}

// FromDomainTransaction собирает брони одной транзакции в DTO
// Возвращает nil для пустого списка
func FromDomainTransaction(reservations []*domain.Reservation) *TransactionResponse {
	if len(reservations) == 0 {
		return nil
	}

	first := reservations[0]
	resp := &TransactionResponse{
		TransactionID: first.TransactionID,
		VenueID:       first.VenueID,
		UserID:        first.UserID,
		Date:          first.Date.Format(domain.DateFormat),
		TotalPrice:    first.TotalPrice,
		Status:        string(first.Status),
		Slots:         make([]SlotResponse, 0, len(reservations)),
		CancelledAt:   first.CancelledAt,
		CreatedAt:     first.CreatedAt,
	}

	for _, r := range reservations {
		resp.Slots = append(resp.Slots, FromDomainSlot(r.Slot()))
		// транзакция активна, пока активна хотя бы одна её бронь
		if r.IsActive() {
			resp.Status = string(domain.StatusCommitted)
			resp.CancelledAt = nil
		}
	}

	return resp
}

// GroupByTransaction группирует брони по транзакциям, сохраняя порядок первого появления
func GroupByTransaction(reservations []*domain.Reservation) *TransactionListResponse {
	order := make([]uuid.UUID, 0)
	groups := make(map[uuid.UUID][]*domain.Reservation)

	for _, r := range reservations {
		if _, ok := groups[r.TransactionID]; !ok {
			order = append(order, r.TransactionID)
		}
		groups[r.TransactionID] = append(groups[r.TransactionID], r)
	}

	resp := &TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(order)),
	}
	for _, id := range order {
		resp.Transactions = append(resp.Transactions, *FromDomainTransaction(groups[id]))
	}
	return resp
}
