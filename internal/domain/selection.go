package domain

import (
	"fmt"
	"time"
)

// Availability отвечает, занят ли слот
type Availability interface {
	IsBooked(court, hour int) bool
}

// Selection набор выбранных, ещё не забронированных слотов пользователя на площадке и дату
type Selection struct {
	VenueID    int64
	Date       time.Time
	courtCount int
	slots      map[Slot]struct{}
}

func NewSelection(venueID int64, date time.Time, courtCount int) *Selection {
	return &Selection{
		VenueID:    venueID,
		Date:       DateOnly(date),
		courtCount: courtCount,
		slots:      make(map[Slot]struct{}),
	}
}

// Toggle снимает выбранный слот или добавляет свободный
// Занятый слот отклоняется с ErrSlotUnavailable, выбор при этом не меняется
func (s *Selection) Toggle(court, hour int, availability Availability) error {
	slot := Slot{Court: court, Hour: hour}
	if !slot.Valid(s.courtCount) {
		return fmt.Errorf("%w: %s (courts 1..%d)", ErrInvalidSlot, slot, s.courtCount)
	}

	if _, ok := s.slots[slot]; ok {
		delete(s.slots, slot)
		return nil
	}

	if availability != nil && availability.IsBooked(court, hour) {
		return fmt.Errorf("%w: %s", ErrSlotUnavailable, slot)
	}

	s.slots[slot] = struct{}{}
	return nil
}

// Contains проверяет, выбран ли слот
func (s *Selection) Contains(court, hour int) bool {
	_, ok := s.slots[Slot{Court: court, Hour: hour}]
	return ok
}

func (s *Selection) Len() int {
	return len(s.slots)
}

// Slots возвращает выбранные слоты, отсортированные по корту и часу
func (s *Selection) Slots() []Slot {
	out := make([]Slot, 0, len(s.slots))
	for slot := range s.slots {
		out = append(out, slot)
	}
	SortSlots(out)
	return out
}

// Hours возвращает час каждого выбранного слота (по одному на слот)
func (s *Selection) Hours() []int {
	slots := s.Slots()
	hours := make([]int, len(slots))
	for i, slot := range slots {
		hours[i] = slot.Hour
	}
	return hours
}

// Validate возвращает ErrInvalidSelection для пустого или слишком большого выбора
func (s *Selection) Validate() error {
	if len(s.slots) == 0 {
		return fmt.Errorf("%w: no slots selected", ErrInvalidSelection)
	}
	if len(s.slots) > MaxSlotsPerBooking {
		return fmt.Errorf("%w: at most %d slots per booking", ErrInvalidSelection, MaxSlotsPerBooking)
	}
	return nil
}

// BuildSelection собирает выбор из запрошенных слотов, переключая их по очереди
// Повтор слота в запросе снял бы его с выбора, поэтому дубликат - ErrInvalidSelection
func BuildSelection(venueID int64, date time.Time, courtCount int, slots []Slot, availability Availability) (*Selection, error) {
	sel := NewSelection(venueID, date, courtCount)
	for _, slot := range slots {
		if sel.Contains(slot.Court, slot.Hour) {
			return nil, fmt.Errorf("%w: duplicate %s", ErrInvalidSelection, slot)
		}
		if err := sel.Toggle(slot.Court, slot.Hour, availability); err != nil {
			return nil, err
		}
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	return sel, nil
}
