package commit_booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Request модель запроса на коммит выбора
type Request struct {
	UserID        int64         // ID пользователя из заголовка X-User-ID
	VenueID       int64         // ID площадки
	Date          time.Time     // Дата бронирования (без времени)
	Slots         []domain.Slot // Выбранные слоты (корт, час)
	TransactionID *uuid.UUID    // Ключ идемпотентности от клиента (опционально)
}

// Response модель ответа с зафиксированными бронями
type Response struct {
	TransactionID uuid.UUID             // Общий ID транзакции
	VenueID       int64                 // ID площадки
	UserID        int64                 // ID пользователя
	Date          time.Time             // Дата бронирования
	TotalPrice    int64                 // Стоимость всей транзакции
	Reservations  []*domain.Reservation // По одной брони на слот
	Replayed      bool                  // Транзакция была зафиксирована ранее
}
