package models

import (
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// PriceTierResponse тариф площадки
type PriceTierResponse struct {
	StartHour int    `json:"startHour"`
	EndHour   int    `json:"endHour"`
	From      string `json:"from"` // "06:00"
	To        string `json:"to"`   // "18:00"
	UnitPrice int64  `json:"unitPrice"`
}

// VenueResponse ответ с данными площадки
type VenueResponse struct {
	ID         int64               `json:"id"`
	Name       string              `json:"name"`
	Address    string              `json:"address"`
	CourtCount int                 `json:"courtCount"`
	OpenHour   int                 `json:"openHour"`
	CloseHour  int                 `json:"closeHour"`
	Tiers      []PriceTierResponse `json:"tiers"`
}

// FromDomainVenue конвертирует domain модель в DTO
func FromDomainVenue(v *domain.Venue) *VenueResponse {
	if v == nil {
		return nil
	}

	tiers := v.Tiers
	if v.Pricing != nil {
		tiers = v.Pricing.Tiers()
	}

	resp := &VenueResponse{
		ID:         v.ID,
		Name:       v.Name,
		Address:    v.Address,
		CourtCount: v.CourtCount,
		OpenHour:   v.OpenHour,
		CloseHour:  v.CloseHour,
		Tiers:      make([]PriceTierResponse, len(tiers)),
	}

	for i, t := range tiers {
		resp.Tiers[i] = PriceTierResponse{
			StartHour: t.StartHour,
			EndHour:   t.EndHour,
			From:      fmt.Sprintf(domain.HourFormat, t.StartHour),
			To:        fmt.Sprintf(domain.HourFormat, t.EndHour),
			UnitPrice: t.UnitPrice,
		}
	}

	return resp
}
