package commit_booking

import "errors"

var (
	// ErrUnauthenticated возвращается, когда личность пользователя не подтверждена
	ErrUnauthenticated = errors.New("commit_booking: unauthenticated")

	// ErrVenueNotFound возвращается, когда площадка не найдена
	ErrVenueNotFound = errors.New("commit_booking: venue not found")

	// ErrInvalidSelection возвращается для пустого выбора или повторяющихся слотов
	ErrInvalidSelection = errors.New("commit_booking: invalid selection")

	// ErrInvalidSlot возвращается для корта или часа вне сетки площадки
	ErrInvalidSlot = errors.New("commit_booking: invalid slot")

	// ErrInvalidDate возвращается для даты в прошлом
	ErrInvalidDate = errors.New("commit_booking: invalid booking date")

	// ErrSlotUnavailable возвращается, когда слот занят по локальному индексу или площадка закрыта
	ErrSlotUnavailable = errors.New("commit_booking: slot unavailable")

	// ErrPricingNotFound возвращается, когда для часа нет тарифа
	ErrPricingNotFound = errors.New("commit_booking: pricing not found")

	// ErrSlotConflict возвращается, когда слоты заняты конкурентной транзакцией
	// Цепочка ошибки содержит *domain.SlotConflictError со списком проигравших слотов
	ErrSlotConflict = errors.New("commit_booking: slot conflict")

	// ErrIdempotencyMismatch возвращается, когда transaction_id уже использован для другого выбора
	ErrIdempotencyMismatch = errors.New("commit_booking: transaction id reused with different selection")

	// ErrTransactionCancelled возвращается при повторе транзакции, брони которой уже отменены
	ErrTransactionCancelled = errors.New("commit_booking: transaction already cancelled")

	// ErrPersistenceFailure возвращается при ошибке хранилища: исход коммита неизвестен
	ErrPersistenceFailure = errors.New("commit_booking: persistence failure")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("commit_booking: internal error")
)
