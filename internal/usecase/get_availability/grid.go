package get_availability

import (
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	"github.com/m04kA/SMC-CourtBooking/internal/service/availability"
)

// buildGrid строит сетку по всем кортам и 24 часам
// Приоритет состояний: прошедший час, закрыто, занято, без тарифа, свободно
func buildGrid(venue *domain.Venue, index *availability.Index, date, now time.Time) []Court {
	courts := make([]Court, 0, venue.CourtCount)

	for court := domain.MinCourt; court <= venue.CourtCount; court++ {
		cells := make([]Cell, 0, domain.HoursPerDay)
		for hour := domain.MinHour; hour <= domain.MaxHour; hour++ {
			cells = append(cells, buildCell(venue, index, court, hour, date, now))
		}
		courts = append(courts, Court{Number: court, Cells: cells})
	}

	return courts
}

func buildCell(venue *domain.Venue, index *availability.Index, court, hour int, date, now time.Time) Cell {
	cell := Cell{Hour: hour}

	if venue.Pricing != nil {
		if price, err := venue.Pricing.PriceFor(hour); err == nil {
			cell.UnitPrice = &price
		}
	}

	switch {
	case domain.HourStarted(date, hour, now):
		cell.State = CellPast
	case !venue.IsOpenAt(hour):
		cell.State = CellClosed
	case index.IsBooked(court, hour):
		cell.State = CellBooked
	case cell.UnitPrice == nil:
		cell.State = CellUnpriced
	default:
		cell.State = CellFree
	}

	return cell
}
