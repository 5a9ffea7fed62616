package model

import (
	"time"

	"github.com/shopspring/decimal"

	"charity-events/pkg/format"
)

const UncategorizedName = "Uncategorized"

// TicketType is free or paid. Free is expected to mean a zero price but the
// two are stored independently.
type TicketType string

const (
	TicketTypeFree TicketType = "free"
	TicketTypePaid TicketType = "paid"
)

func (t TicketType) IsValid() bool {
	switch t {
	case TicketTypeFree, TicketTypePaid:
		return true
	}
	return false
}

// Event is the read-only projection of an events row joined with its category.
type Event struct {
	ID               int             `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	ShortDescription string          `json:"short_description" db:"short_description"`
	Description      string          `json:"description" db:"description"`
	EventDate        time.Time       `json:"event_date" db:"event_date"`
	Location         string          `json:"location" db:"location"`
	Address          *string         `json:"address,omitempty" db:"address"`
	CategoryID       int             `json:"category_id" db:"category_id"`
	CategoryName     string          `json:"category_name" db:"category_name"`
	TicketPrice      decimal.Decimal `json:"ticket_price" db:"ticket_price"`
	TicketType       TicketType      `json:"ticket_type" db:"ticket_type"`
	GoalAmount       decimal.Decimal `json:"goal_amount" db:"goal_amount"`
	CurrentAmount    decimal.Decimal `json:"current_amount" db:"current_amount"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	MaxAttendees     *int            `json:"max_attendees,omitempty" db:"max_attendees"`
}

// Progress is the percentage of the fundraising goal reached, 0 when there is no goal.
func (e *Event) Progress() int {
	return format.ComputeProgress(e.CurrentAmount, e.GoalAmount)
}

// HasGoal reports whether a progress bar should be shown at all.
func (e *Event) HasGoal() bool {
	return e.GoalAmount.IsPositive()
}

func (e *Event) IsUpcoming(now time.Time) bool {
	return !e.EventDate.Before(now)
}

func (e *Event) IsFree() bool {
	return e.TicketPrice.IsZero()
}

// Category groups events; names are unique.
type Category struct {
	ID          int     `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
}
