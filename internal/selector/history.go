package selector

import (
	"github.com/dukerupert/basket/internal/history"
	"github.com/dukerupert/basket/internal/model"
	"github.com/shopspring/decimal"
)

// HistoryStats totals the ledger by action.
func HistoryStats(entries []model.HistoryEntry) model.HistoryStats {
	var stats model.HistoryStats
	spent := decimal.Zero
	for _, e := range entries {
		switch e.Action {
		case model.ActionAdded:
			stats.TotalAdded++
		case model.ActionPurchased:
			stats.TotalPurchased++
			spent = spent.Add(history.LineTotal(e.Price, e.Quantity))
		case model.ActionRemoved:
			stats.TotalRemoved++
		case model.ActionUnmarked:
			stats.TotalUnmarked++
		}
	}
	stats.TotalSpent = spent.InexactFloat64()
	return stats
}

// FilterHistory keeps only the entries with the given action and drops days
// left empty. An empty action or "all" returns days unchanged.
func FilterHistory(days []model.DailyHistory, action string) []model.DailyHistory {
	if action == "" || action == string(FilterAll) {
		return days
	}

	out := []model.DailyHistory{}
	for _, day := range days {
		var kept []model.HistoryEntry
		for _, e := range day.Items {
			if string(e.Action) == action {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, history.Summarize(day.Date, kept))
	}
	return out
}

// CompletedOrders returns the purchase entries in ledger order.
func CompletedOrders(entries []model.HistoryEntry) []model.HistoryEntry {
	out := []model.HistoryEntry{}
	for _, e := range entries {
		if e.Action == model.ActionPurchased {
			out = append(out, e)
		}
	}
	return out
}
