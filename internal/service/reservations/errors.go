package reservations

import "errors"

var (
	// ErrTransactionNotFound возвращается, когда транзакция бронирования не найдена
	ErrTransactionNotFound = errors.New("reservations: transaction not found")

	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("reservations: venue not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("reservations: access denied")

	// ErrCannotCancel возвращается, когда у транзакции не осталось активных броней
	ErrCannotCancel = errors.New("reservations: transaction cannot be cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reservations: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)
