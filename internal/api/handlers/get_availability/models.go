package get_availability

import (
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
	getAvailability "github.com/m04kA/SMC-CourtBooking/internal/usecase/get_availability"
)

// CellResponse ячейка сетки
type CellResponse struct {
	Hour      int    `json:"hour"`
	Time      string `json:"time"` // "07:00"
	State     string `json:"state"`
	UnitPrice *int64 `json:"unitPrice,omitempty"`
}

// CourtResponse строка сетки одного корта
type CourtResponse struct {
	Court int            `json:"court"`
	Cells []CellResponse `json:"cells"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	VenueID    int64           `json:"venueId"`
	Date       string          `json:"date"`
	CourtCount int             `json:"courtCount"`
	Version    uint64          `json:"version"`
	Courts     []CourtResponse `json:"courts"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	out := &AvailabilityResponse{
		VenueID:    resp.VenueID,
		Date:       resp.Date.Format(domain.DateFormat),
		CourtCount: resp.CourtCount,
		Version:    resp.Version,
		Courts:     make([]CourtResponse, 0, len(resp.Courts)),
	}

	for _, court := range resp.Courts {
		row := CourtResponse{Court: court.Number, Cells: make([]CellResponse, 0, len(court.Cells))}
		for _, cell := range court.Cells {
			row.Cells = append(row.Cells, CellResponse{
				Hour:      cell.Hour,
				Time:      fmt.Sprintf(domain.HourFormat, cell.Hour),
				State:     string(cell.State),
				UnitPrice: cell.UnitPrice,
			})
		}
		out.Courts = append(out.Courts, row)
	}

	return out
}
