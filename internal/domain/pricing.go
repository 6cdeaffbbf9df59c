package domain

import (
	"fmt"
	"sort"
)

// PriceTier тариф: цена за слот для часов [StartHour, EndHour)
type PriceTier struct {
	StartHour int
	EndHour   int
	UnitPrice int64
}

// Contains проверяет, попадает ли час в тариф
func (t PriceTier) Contains(hour int) bool {
	return t.StartHour <= hour && hour < t.EndHour
}

// PriceTable провалидированная таблица непересекающихся тарифов, строится при загрузке площадки
type PriceTable struct {
	tiers []PriceTier
}

// NewPriceTable валидирует тарифы и сортирует их по началу
// Пустая таблица допустима: любой поиск вернёт ErrPricingNotFound
func NewPriceTable(tiers []PriceTier) (*PriceTable, error) {
	if len(tiers) > MaxTiersPerVenue {
		return nil, fmt.Errorf("%w: too many tiers (%d)", ErrInvalidPriceTier, len(tiers))
	}

	sorted := make([]PriceTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartHour < sorted[j].StartHour
	})

	for i, t := range sorted {
		if t.StartHour < 0 || t.EndHour > HoursPerDay || t.StartHour >= t.EndHour {
			return nil, fmt.Errorf("%w: range [%d,%d) outside 0..%d or empty",
				ErrInvalidPriceTier, t.StartHour, t.EndHour, HoursPerDay)
		}
		if t.UnitPrice <= 0 {
			return nil, fmt.Errorf("%w: unit price %d for [%d,%d) must be positive",
				ErrInvalidPriceTier, t.UnitPrice, t.StartHour, t.EndHour)
		}
		if i > 0 && sorted[i-1].EndHour > t.StartHour {
			return nil, fmt.Errorf("%w: [%d,%d) overlaps [%d,%d)", ErrInvalidPriceTier,
				sorted[i-1].StartHour, sorted[i-1].EndHour, t.StartHour, t.EndHour)
		}
	}

	return &PriceTable{tiers: sorted}, nil
}

// Tiers возвращает копию тарифов по возрастанию начала
func (p *PriceTable) Tiers() []PriceTier {
	out := make([]PriceTier, len(p.tiers))
	copy(out, p.tiers)
	return out
}

// PriceFor возвращает цену первого (по началу) тарифа, покрывающего час
func (p *PriceTable) PriceFor(hour int) (int64, error) {
	for _, t := range p.tiers {
		if t.Contains(hour) {
			return t.UnitPrice, nil
		}
	}
	return 0, fmt.Errorf("%w: hour %d", ErrPricingNotFound, hour)
}

// TotalFor суммирует цены по часам, повторы считаются каждый раз (по одному на корт)
// Любой непокрытый час - ошибка для всей суммы
func (p *PriceTable) TotalFor(hours []int) (int64, error) {
	var total int64
	for _, h := range hours {
		price, err := p.PriceFor(h)
		if err != nil {
			return 0, err
		}
		total += price
	}
	return total, nil
}

// Uncovered возвращает часы из [from, to) без тарифа
func (p *PriceTable) Uncovered(from, to int) []int {
	missing := make([]int, 0)
	for h := from; h < to; h++ {
		if _, err := p.PriceFor(h); err != nil {
			missing = append(missing, h)
		}
	}
	return missing
}
