// Package selector derives filtered views and statistics from item and
// history snapshots. Every function is pure: the same input always yields
// the same output.
package selector

import (
	"strings"

	"github.com/dukerupert/basket/internal/history"
	"github.com/dukerupert/basket/internal/model"
	"github.com/shopspring/decimal"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterHigh      Filter = "high"
	FilterFavorites Filter = "favorites"
)

func (f Filter) Valid() bool {
	switch f {
	case "", FilterAll, FilterCompleted, FilterPending, FilterHigh, FilterFavorites:
		return true
	}
	return false
}

// Sentinels that disable the category and priority predicates.
const (
	AllCategories = "All"
	AllPriorities = "all"
)

// Criteria combines the active predicates; zero values match everything.
type Criteria struct {
	Filter   Filter
	Category string
	Priority string
	Search   string
}

// FilteredItems returns the items matching every active predicate, in their
// original order. The result is never nil.
func FilteredItems(items []model.ShoppingItem, c Criteria) []model.ShoppingItem {
	search := strings.ToLower(strings.TrimSpace(c.Search))
	out := make([]model.ShoppingItem, 0, len(items))
	for _, item := range items {
		if !matchesFilter(item, c.Filter) {
			continue
		}
		if c.Category != "" && c.Category != AllCategories && item.Category != c.Category {
			continue
		}
		if c.Priority != "" && c.Priority != AllPriorities && string(item.Priority) != c.Priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesFilter(item model.ShoppingItem, f Filter) bool {
	switch f {
	case FilterCompleted:
		return item.IsCompleted
	case FilterPending:
		return !item.IsCompleted
	case FilterHigh:
		return item.Priority == model.PriorityHigh
	case FilterFavorites:
		return item.IsFavorite
	default:
		return true
	}
}

// Dashboard computes the list statistics. Counts other than Favorites and
// Total are sums of quantities.
func Dashboard(items []model.ShoppingItem) model.DashboardStats {
	var stats model.DashboardStats
	value := decimal.Zero
	for _, item := range items {
		stats.Total++
		if item.IsFavorite {
			stats.Favorites++
		}
		if item.IsCompleted {
			stats.Completed += item.Quantity
			continue
		}
		stats.Pending += item.Quantity
		if item.Priority == model.PriorityHigh {
			stats.HighPriority += item.Quantity
		}
		value = value.Add(history.LineTotal(item.Price, item.Quantity))
	}
	stats.TotalValue = value.InexactFloat64()
	return stats
}

// Categories lists the distinct categories in first-seen order.
func Categories(items []model.ShoppingItem) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
