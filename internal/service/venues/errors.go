package venues

import "errors"

var (
	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("venues: venue not found")

	// ErrMisconfigured возвращается, когда конфигурация площадки некорректна (тарифы, часы, корты)
	ErrMisconfigured = errors.New("venues: venue misconfigured")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("venues: internal error")
)
