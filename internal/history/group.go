package history

import (
	"sort"

	"github.com/dukerupert/basket/internal/model"
	"github.com/shopspring/decimal"
)

// GroupByDate partitions entries by their Date and aggregates each day.
// Days are ordered newest first, and so are the entries within a day. The
// input slice is not modified.
func GroupByDate(entries []model.HistoryEntry) []model.DailyHistory {
	byDate := make(map[string][]model.HistoryEntry)
	var dates []string
	for _, e := range entries {
		if _, ok := byDate[e.Date]; !ok {
			dates = append(dates, e.Date)
		}
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	// Dates are YYYY-MM-DD, so lexical order is calendar order.
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	days := make([]model.DailyHistory, 0, len(dates))
	for _, date := range dates {
		items := byDate[date]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Timestamp.After(items[j].Timestamp)
		})
		days = append(days, Summarize(date, items))
	}
	return days
}

// Summarize computes the counters of one day from its entries, which are
// kept in the order given.
func Summarize(date string, items []model.HistoryEntry) model.DailyHistory {
	day := model.DailyHistory{Date: date, Items: items}
	spent := decimal.Zero
	for _, e := range items {
		switch e.Action {
		case model.ActionAdded:
			day.ItemsAdded++
		case model.ActionPurchased:
			day.ItemsPurchased++
			spent = spent.Add(LineTotal(e.Price, e.Quantity))
		case model.ActionRemoved:
			day.ItemsRemoved++
		case model.ActionUnmarked:
			day.ItemsUnmarked++
		}
	}
	day.TotalSpent = spent.InexactFloat64()
	return day
}

// LineTotal is price × quantity as an exact decimal.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
}
