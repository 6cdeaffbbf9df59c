package domain

import (
	"fmt"
	"sort"
	"time"
)

// Slot ячейка сетки площадки (корт, час) на конкретную дату
type Slot struct {
	Court int
	Hour  int
}

func (s Slot) String() string {
	return fmt.Sprintf("court=%d hour=%d", s.Court, s.Hour)
}

// Valid проверяет, что корт существует на площадке
// Часы за пределами сетки отсекает тарификация: час без тарифа -> ErrPricingNotFound
func (s Slot) Valid(courtCount int) bool {
	return s.Court >= MinCourt && s.Court <= courtCount && s.Hour >= MinHour
}

// SlotKey глобальный ключ слота. На один ключ - не более одной активной брони
type SlotKey struct {
	VenueID int64
	Date    time.Time
	Court   int
	Hour    int
}

// Slot возвращает ячейку сетки для ключа
func (k SlotKey) Slot() Slot {
	return Slot{Court: k.Court, Hour: k.Hour}
}

// SortSlots сортирует слоты по корту, затем по часу
// В этом порядке коммит вставляет строки, чтобы конкурентные транзакции брали блокировки одинаково
func SortSlots(slots []Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Court != slots[j].Court {
			return slots[i].Court < slots[j].Court
		}
		return slots[i].Hour < slots[j].Hour
	})
}

// DateOnly обрезает время до полуночи UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HourStarted проверяет, что час даты уже начался к моменту now
func HourStarted(date time.Time, hour int, now time.Time) bool {
	start := DateOnly(date).Add(time.Duration(hour) * time.Hour)
	return !start.After(now)
}
