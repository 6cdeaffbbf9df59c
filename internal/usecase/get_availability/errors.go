package get_availability

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("get_availability: venue not found")

	// ErrInvalidDate возвращается для пустой даты или даты в прошлом
	ErrInvalidDate = errors.New("get_availability: invalid date")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_availability: internal error")
)
