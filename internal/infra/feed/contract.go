package feed

import "github.com/m04kA/SMC-CourtBooking/internal/domain"

// Subscription поток изменений броней для одной пары (площадка, дата)
// Канал закрывается после Close или остановки драйвера
type Subscription interface {
	Changes() <-chan domain.ReservationChange
	Close() error
}
