package model

import "time"

// HistoryAction is the lifecycle transition recorded by a history entry.
type HistoryAction string

const (
	ActionAdded     HistoryAction = "added"
	ActionPurchased HistoryAction = "purchased"
	ActionRemoved   HistoryAction = "removed"
	// ActionUnmarked records a purchased item being returned to the list.
	ActionUnmarked HistoryAction = "unmarked"
)

func (a HistoryAction) Valid() bool {
	switch a {
	case ActionAdded, ActionPurchased, ActionRemoved, ActionUnmarked:
		return true
	}
	return false
}

// HistoryEntry is an immutable snapshot of an item taken when it changed state.
type HistoryEntry struct {
	ID          string        `json:"id"`
	ItemID      string        `json:"item_id"`
	Name        string        `json:"name"`
	Price       float64       `json:"price"`
	Quantity    int           `json:"quantity"`
	Unit        string        `json:"unit"`
	Category    string        `json:"category"`
	Priority    Priority      `json:"priority"`
	Notes       string        `json:"notes,omitempty"`
	Image       string        `json:"image,omitempty"`
	ListID      string        `json:"list_id"`
	IsCompleted bool          `json:"is_completed"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Action      HistoryAction `json:"action"`
	Timestamp   time.Time     `json:"timestamp"`
	Date        string        `json:"date"`
}

// DailyHistory is derived from the entries of one calendar day. It is never stored.
type DailyHistory struct {
	Date           string         `json:"date"`
	Items          []HistoryEntry `json:"items"`
	ItemsAdded     int            `json:"items_added"`
	ItemsPurchased int            `json:"items_purchased"`
	ItemsRemoved   int            `json:"items_removed"`
	ItemsUnmarked  int            `json:"items_unmarked"`
	TotalSpent     float64        `json:"total_spent"`
}

type DashboardStats struct {
	Completed    int     `json:"completed"`
	Pending      int     `json:"pending"`
	HighPriority int     `json:"high_priority"`
	TotalValue   float64 `json:"total_value"`
	Favorites    int     `json:"favorites"`
	Total        int     `json:"total"`
}

type HistoryStats struct {
	TotalAdded     int     `json:"total_added"`
	TotalPurchased int     `json:"total_purchased"`
	TotalRemoved   int     `json:"total_removed"`
	TotalUnmarked  int     `json:"total_unmarked"`
	TotalSpent     float64 `json:"total_spent"`
}
