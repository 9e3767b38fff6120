package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/bizledger/internal/income/domain"
)

// Summary recomputes the entry's figures from its stored children rather than the
// denormalized columns.
func (s *Service) Summary(ctx context.Context, id string) (domain.Summary, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return domain.Summary{}, err
	}
	return Summarize(entry), nil
}

func Summarize(entry domain.IncomeEntry) domain.Summary {
	cogs, refunds, inspector := entry.Totals()

	breakdown := make([]domain.CategoryCOGS, 0)
	index := make(map[string]int)
	for _, item := range entry.CogsItems {
		i, ok := index[item.CategoryID]
		if !ok {
			index[item.CategoryID] = len(breakdown)
			breakdown = append(breakdown, domain.CategoryCOGS{CategoryID: item.CategoryID, Amount: decimal.Zero})
			i = len(breakdown) - 1
		}
		breakdown[i].Amount = breakdown[i].Amount.Add(item.Amount)
	}

	netRevenue := entry.Amount.Sub(refunds)
	netCOGS := cogs.Sub(inspector)

	return domain.Summary{
		IncomeID:      entry.ID,
		Type:          entry.Type,
		OrdersCount:   entry.OrdersCount,
		Revenue:       entry.Amount,
		TotalRefunds:  refunds,
		NetRevenue:    netRevenue,
		COGS:          cogs,
		InspectorBack: inspector,
		NetCOGS:       netCOGS,
		Net:           netRevenue.Sub(netCOGS),
		COGSBreakdown: breakdown,
	}
}
