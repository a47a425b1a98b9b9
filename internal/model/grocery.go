package model

import (
	"fmt"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ShoppingItem struct {
	ID          string     `json:"id"`
	ListID      string     `json:"list_id"`
	Name        string     `json:"name"`
	Quantity    int        `json:"quantity"`
	Unit        string     `json:"unit"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Notes       string     `json:"notes,omitempty"`
	Image       string     `json:"image,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	IsFavorite  bool       `json:"is_favorite"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ValidationError reports the first field of a request that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

type CreateItemRequest struct {
	Name     string   `json:"name"`
	Quantity int      `json:"quantity"`
	Unit     string   `json:"unit"`
	Price    float64  `json:"price"`
	Category string   `json:"category"`
	Priority Priority `json:"priority,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Image    string   `json:"image,omitempty"`
}

// Normalize trims text fields and defaults the priority to medium.
func (r *CreateItemRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Unit = strings.TrimSpace(r.Unit)
	r.Category = strings.TrimSpace(r.Category)
	r.Notes = strings.TrimSpace(r.Notes)
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
}

func (r CreateItemRequest) Validate() error {
	return validateFields(r.Name, r.Unit, r.Category, r.Quantity, r.Price, r.Priority)
}

// UpdateItemRequest carries a partial update; nil fields are left unchanged.
type UpdateItemRequest struct {
	Name        *string   `json:"name,omitempty"`
	Quantity    *int      `json:"quantity,omitempty"`
	Unit        *string   `json:"unit,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	Image       *string   `json:"image,omitempty"`
	IsCompleted *bool     `json:"is_completed,omitempty"`
}

// Apply merges the present fields into item and validates the result.
// item is left untouched when validation fails.
func (r UpdateItemRequest) Apply(item *ShoppingItem) error {
	merged := *item
	if r.Name != nil {
		merged.Name = strings.TrimSpace(*r.Name)
	}
	if r.Quantity != nil {
		merged.Quantity = *r.Quantity
	}
	if r.Unit != nil {
		merged.Unit = strings.TrimSpace(*r.Unit)
	}
	if r.Price != nil {
		merged.Price = *r.Price
	}
	if r.Category != nil {
		merged.Category = strings.TrimSpace(*r.Category)
	}
	if r.Priority != nil {
		merged.Priority = *r.Priority
	}
	if r.Notes != nil {
		merged.Notes = strings.TrimSpace(*r.Notes)
	}
	if r.Image != nil {
		merged.Image = *r.Image
	}
	if r.IsCompleted != nil {
		merged.IsCompleted = *r.IsCompleted
	}

	if err := validateFields(merged.Name, merged.Unit, merged.Category, merged.Quantity, merged.Price, merged.Priority); err != nil {
		return err
	}
	// Items are created with a default priority; an update may change it
	// but never blank it.
	if !merged.Priority.Valid() {
		return &ValidationError{Field: "priority", Message: "must be low, medium or high"}
	}
	*item = merged
	return nil
}

func validateFields(name, unit, category string, quantity int, price float64, priority Priority) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if strings.TrimSpace(category) == "" {
		return &ValidationError{Field: "category", Message: "is required"}
	}
	if strings.TrimSpace(unit) == "" {
		return &ValidationError{Field: "unit", Message: "is required"}
	}
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be greater than zero"}
	}
	if price < 0 {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	if priority != "" && !priority.Valid() {
		return &ValidationError{Field: "priority", Message: "must be low, medium or high"}
	}
	return nil
}
