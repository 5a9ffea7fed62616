package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by the date filter and the
// search endpoint.
const DateLayout = "2006-01-02"

// Criteria is the optional {date, location, category} filter tuple. A zero
// field is a no-op filter.
type Criteria struct {
	Date       string `json:"date,omitempty"`
	Location   string `json:"location,omitempty"`
	CategoryID int    `json:"category,omitempty"`
}

// Normalize trims the text fields.
func (c Criteria) Normalize() Criteria {
	c.Date = strings.TrimSpace(c.Date)
	c.Location = strings.TrimSpace(c.Location)
	if c.CategoryID < 0 {
		c.CategoryID = 0
	}
	return c
}

func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return n.Date == "" && n.Location == "" && n.CategoryID == 0
}

// ActiveFilters names the filters that are set, in date, location, category order.
func (c Criteria) ActiveFilters() []string {
	n := c.Normalize()
	var active []string
	if n.Date != "" {
		active = append(active, "date")
	}
	if n.Location != "" {
		active = append(active, "location")
	}
	if n.CategoryID > 0 {
		active = append(active, "category")
	}
	return active
}

// Day parses the date filter. ok is false when no date is set.
func (c Criteria) Day() (day time.Time, ok bool, err error) {
	d := strings.TrimSpace(c.Date)
	if d == "" {
		return time.Time{}, false, nil
	}
	day, err = ParseDay(d)
	if err != nil {
		return time.Time{}, false, err
	}
	return day, true, nil
}

func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return day, nil
}

// SearchParams is the validated server-side form of Criteria.
type SearchParams struct {
	Date       *time.Time
	Location   string
	CategoryID *int
}

func (p SearchParams) IsEmpty() bool {
	return p.Date == nil && p.Location == "" && p.CategoryID == nil
}
