package availability

import (
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Index занятые слоты площадки на дату
// Кэш с итоговой согласованностью: никогда не является условием коммита
type Index struct {
	VenueID int64
	Date    time.Time

	mu      sync.RWMutex
	booked  map[domain.Slot]int64 // слот -> id брони
	version uint64
}

func NewIndex(venueID int64, date time.Time) *Index {
	return &Index{
		VenueID: venueID,
		Date:    domain.DateOnly(date),
		booked:  make(map[domain.Slot]int64),
	}
}

// Load заменяет состояние снимком активных броней
func (ix *Index) Load(reservations []*domain.Reservation) {
	booked := make(map[domain.Slot]int64, len(reservations))
	for _, r := range reservations {
		if r.IsActive() {
			booked[r.Slot()] = r.ID
		}
	}

	ix.mu.Lock()
	ix.booked = booked
	ix.version++
	ix.mu.Unlock()
}

// Apply применяет событие в порядке поступления (последняя запись побеждает)
// Возвращает false для событий чужой площадки или даты
func (ix *Index) Apply(change domain.ReservationChange) bool {
	r := change.Reservation
	if r.VenueID != ix.VenueID || !domain.DateOnly(r.Date).Equal(ix.Date) {
		return false
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	switch change.Kind {
	case domain.ChangeCreated:
		ix.booked[r.Slot()] = r.ID
	case domain.ChangeCancelled:
		delete(ix.booked, r.Slot())
	default:
		return false
	}
	ix.version++
	return true
}

// IsBooked проверяет, занят ли слот
func (ix *Index) IsBooked(court, hour int) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.booked[domain.Slot{Court: court, Hour: hour}]
	return ok
}

// Snapshot возвращает копию множества занятых слотов
func (ix *Index) Snapshot() map[domain.Slot]struct{} {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make(map[domain.Slot]struct{}, len(ix.booked))
	for slot := range ix.booked {
		out[slot] = struct{}{}
	}
	return out
}

// Version растёт при каждом изменении состояния
func (ix *Index) Version() uint64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.version
}
