package quote_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/pricing"
)

// Request модель запроса расчёта стоимости выбора
type Request struct {
	VenueID int64
	Date    time.Time
	Slots   []domain.Slot
}

// Response расчёт стоимости: сумма и цена каждого слота
type Response struct {
	VenueID    int64
	Date       time.Time
	TotalPrice int64
	Items      []pricing.Breakdown
}
