package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrNothingToCancel возвращается, когда у транзакции нет активных броней
	ErrNothingToCancel = errors.New("reservation.repository: no active reservations to cancel")

	// ErrTxAborted возвращается, когда сервер прервал транзакцию (deadlock, serialization failure)
	ErrTxAborted = errors.New("reservation.repository: transaction aborted by server")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
