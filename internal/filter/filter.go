// Package filter is the filter and sort policy shared by the Home and Search
// pages: a predicate combinator over events and a comparator factory.
package filter

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"charity-events/internal/model"
)

// Predicate reports whether an event passes a filter.
type Predicate func(e model.Event) bool

var fold = cases.Fold()

func foldString(s string) string {
	return fold.String(s)
}

func containsFold(s, term string) bool {
	return strings.Contains(foldString(s), foldString(term))
}

// All ANDs the given predicates. Nil predicates are skipped; no predicates
// matches everything.
func All(preds ...Predicate) Predicate {
	active := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(e model.Event) bool {
		for _, p := range active {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// DateEquals matches events on the same calendar day, ignoring time of day.
func DateEquals(day time.Time) Predicate {
	y, m, d := day.Date()
	return func(e model.Event) bool {
		ey, em, ed := e.EventDate.Date()
		return ey == y && em == m && ed == d
	}
}

// LocationContains matches term against location or name, case-insensitively.
func LocationContains(term string) Predicate {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	return func(e model.Event) bool {
		return containsFold(e.Location, term) || containsFold(e.Name, term)
	}
}

func CategoryEquals(id int) Predicate {
	if id <= 0 {
		return nil
	}
	return func(e model.Event) bool {
		return e.CategoryID == id
	}
}

// FromCriteria builds the combined predicate for c. An unparseable date is
// treated as absent.
func FromCriteria(c model.Criteria) Predicate {
	c = c.Normalize()
	var preds []Predicate
	if day, ok, err := c.Day(); err == nil && ok {
		preds = append(preds, DateEquals(day))
	}
	preds = append(preds, LocationContains(c.Location), CategoryEquals(c.CategoryID))
	return All(preds...)
}

// Apply returns the events matching c, in their original order.
func Apply(events []model.Event, c model.Criteria) []model.Event {
	return Where(events, FromCriteria(c))
}

func Where(events []model.Event, pred Predicate) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// MatchesQuery is the free-text search box: name, location, short
// description or category name contains q.
func MatchesQuery(e model.Event, q string) bool {
	q = strings.TrimSpace(q)
	if q == "" {
		return true
	}
	return containsFold(e.Name, q) ||
		containsFold(e.Location, q) ||
		containsFold(e.ShortDescription, q) ||
		containsFold(e.CategoryName, q)
}

func Query(events []model.Event, q string) []model.Event {
	return Where(events, func(e model.Event) bool { return MatchesQuery(e, q) })
}
