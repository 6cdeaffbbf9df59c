package get_availability

import "time"

// CellState состояние ячейки сетки
type CellState string

const (
	CellFree     CellState = "free"     // можно выбрать
	CellBooked   CellState = "booked"   // занята активной бронью
	CellClosed   CellState = "closed"   // площадка не работает в этот час
	CellUnpriced CellState = "unpriced" // нет тарифа на час
	CellPast     CellState = "past"     // час уже прошёл
)

// Request модель запроса сетки занятости
type Request struct {
	VenueID int64     // ID площадки
	Date    time.Time // Дата (без времени)
}

// Response сетка корты x часы на дату
type Response struct {
	VenueID    int64
	Date       time.Time
	CourtCount int
	Courts     []Court
	Version    uint64 // версия индекса, на которой построена сетка
}

// Court строка сетки для одного корта
type Court struct {
	Number int
	Cells  []Cell
}

// Cell ячейка сетки
type Cell struct {
	Hour      int
	State     CellState
	UnitPrice *int64 // nil для часов без тарифа
}
