package domain

// Границы сетки слотов
const (
	HoursPerDay = 24
	MinHour     = 0
	MaxHour     = HoursPerDay - 1
	MinCourt    = 1
	MaxCourts   = 64
)

// Константы бизнес-валидации
const (
	MaxSlotsPerBooking = 48
	MaxTiersPerVenue   = 24
)

// Форматы времени
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
	HourFormat = "%02d:00"
)

// ActiveStatuses статусы, занимающие слот
var ActiveStatuses = []ReservationStatus{
	StatusCommitted,
}
