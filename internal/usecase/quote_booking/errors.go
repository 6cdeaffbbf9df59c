package quote_booking

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("quote_booking: venue not found")

	// ErrInvalidSelection возвращается для пустого выбора или повторяющихся слотов
	ErrInvalidSelection = errors.New("quote_booking: invalid selection")

	// ErrInvalidSlot возвращается для корта вне сетки площадки
	ErrInvalidSlot = errors.New("quote_booking: invalid slot")

	// ErrInvalidDate возвращается для пустой даты или уже начавшегося часа
	ErrInvalidDate = errors.New("quote_booking: invalid date")

	// ErrSlotUnavailable возвращается, когда слот уже занят
	ErrSlotUnavailable = errors.New("quote_booking: slot unavailable")

	// ErrPricingNotFound возвращается, когда для часа нет тарифа
	ErrPricingNotFound = errors.New("quote_booking: pricing not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("quote_booking: internal error")
)
