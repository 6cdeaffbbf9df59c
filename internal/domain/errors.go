package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPriceTier возвращается при некорректной таблице тарифов
	ErrInvalidPriceTier = errors.New("domain: invalid price tier")

	// ErrPricingNotFound возвращается, когда для часа нет тарифа
	ErrPricingNotFound = errors.New("domain: pricing not found")

	// ErrSlotUnavailable возвращается, когда слот уже занят
	ErrSlotUnavailable = errors.New("domain: slot unavailable")

	// ErrInvalidSlot возвращается для корта или часа вне сетки площадки
	ErrInvalidSlot = errors.New("domain: invalid slot")

	// ErrInvalidSelection возвращается при коммите пустого выбора
	ErrInvalidSelection = errors.New("domain: invalid selection")

	// ErrSlotConflict - сентинел для SlotConflictError
	ErrSlotConflict = errors.New("domain: slot conflict")
)

// SlotConflictError перечисляет ровно те слоты, которые проиграли гонку коммита
type SlotConflictError struct {
	Slots []Slot
}

func (e *SlotConflictError) Error() string {
	parts := make([]string, len(e.Slots))
	for i, s := range e.Slots {
		parts[i] = s.String()
	}
	return fmt.Sprintf("%s: %s", ErrSlotConflict.Error(), strings.Join(parts, ", "))
}

func (e *SlotConflictError) Is(target error) bool {
	return target == ErrSlotConflict
}
