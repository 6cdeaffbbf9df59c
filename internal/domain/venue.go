package domain

import "time"

// Venue площадка с кортами 1..CourtCount
// Не меняется в течение сессии бронирования
type Venue struct {
	ID         int64
	Name       string
	Address    string
	CourtCount int
	OpenHour   int // первый доступный час (включительно)
	CloseHour  int // конец доступных часов (не включительно)
	Tiers      []PriceTier
	ManagerIDs []int64

	// Pricing провалидированная таблица тарифов, строится справочником площадок из Tiers
	Pricing *PriceTable

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpenAt проверяет, доступен ли час для бронирования
func (v *Venue) IsOpenAt(hour int) bool {
	return hour >= v.OpenHour && hour < v.CloseHour
}

// IsManager проверяет, является ли пользователь менеджером площадки
func (v *Venue) IsManager(userID int64) bool {
	for _, id := range v.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
