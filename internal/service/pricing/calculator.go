package pricing

import (
	"fmt"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// Compute считает стоимость выбора по таблице тарифов
// Результат детерминирован: один и тот же выбор и таблица дают одну и ту же сумму
// Любой непокрытый час -> domain.ErrPricingNotFound, частичная сумма не возвращается
func Compute(selection *domain.Selection, table *domain.PriceTable) (int64, error) {
	if table == nil {
		return 0, fmt.Errorf("%w: venue has no price table", domain.ErrPricingNotFound)
	}
	return table.TotalFor(selection.Hours())
}

// Breakdown строка расчёта для одного слота
type Breakdown struct {
	Slot      domain.Slot
	UnitPrice int64
}

// Itemize возвращает цену каждого выбранного слота в порядке (корт, час)
func Itemize(selection *domain.Selection, table *domain.PriceTable) ([]Breakdown, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: venue has no price table", domain.ErrPricingNotFound)
	}

	slots := selection.Slots()
	items := make([]Breakdown, 0, len(slots))
	for _, slot := range slots {
		price, err := table.PriceFor(slot.Hour)
		if err != nil {
			return nil, err
		}
		items = append(items, Breakdown{Slot: slot, UnitPrice: price})
	}
	return items, nil
}
