package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus статус брони
type ReservationStatus string

const (
	StatusCommitted ReservationStatus = "committed"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation бронь одного слота
// Строки одного коммита разделяют TransactionID и TotalPrice (цена всей транзакции)
type Reservation struct {
	ID            int64
	TransactionID uuid.UUID
	VenueID       int64
	UserID        int64
	Date          time.Time
	Court         int
	Hour          int
	TotalPrice    int64
	Status        ReservationStatus

	CancelledAt *time.Time
	CreatedAt   time.Time
}

// IsActive возвращает true, если бронь занимает слот
func (r *Reservation) IsActive() bool {
	return r.Status == StatusCommitted
}

// CanBeCancelled возвращает true, если бронь можно отменить
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == StatusCommitted
}

// Slot возвращает ячейку сетки брони
func (r *Reservation) Slot() Slot {
	return Slot{Court: r.Court, Hour: r.Hour}
}

// Key возвращает глобальный ключ слота
func (r *Reservation) Key() SlotKey {
	return SlotKey{VenueID: r.VenueID, Date: r.Date, Court: r.Court, Hour: r.Hour}
}

// SortReservations сортирует брони по дате, корту и часу
func SortReservations(reservations []*Reservation) {
	sort.Slice(reservations, func(i, j int) bool {
		a, b := reservations[i], reservations[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Court != b.Court {
			return a.Court < b.Court
		}
		return a.Hour < b.Hour
	})
}

// ChangeKind тип события в ленте изменений
type ChangeKind string

const (
	ChangeCreated   ChangeKind = "created"
	ChangeCancelled ChangeKind = "cancelled"
	// ChangeResync разрыв ленты (переподключение, потеря сообщений)
	// Потребитель должен перечитать снимок
	ChangeResync ChangeKind = "resync"
)

// ReservationChange событие ленты изменений для (площадка, дата)
type ReservationChange struct {
	Kind        ChangeKind
	Reservation Reservation
}

// ChangesFor строит события одного типа для пачки броней
func ChangesFor(kind ChangeKind, reservations []*Reservation) []ReservationChange {
	changes := make([]ReservationChange, 0, len(reservations))
	for _, r := range reservations {
		changes = append(changes, ReservationChange{Kind: kind, Reservation: *r})
	}
	return changes
}

// CommitCommand входные данные атомарного условного коммита
type CommitCommand struct {
	TransactionID uuid.UUID
	VenueID       int64
	UserID        int64
	Date          time.Time
	Slots         []Slot
	TotalPrice    int64
}

// CommitResult результат успешного коммита
type CommitResult struct {
	Reservations []*Reservation
	// Replayed - транзакция с этим id уже была зафиксирована ранее
	Replayed bool
}

// VenueReservationsFilter фильтр броней площадки
type VenueReservationsFilter struct {
	VenueID         int64
	Date            time.Time
	Court           *int
	IncludeInactive bool
}
