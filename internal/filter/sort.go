package filter

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"charity-events/internal/model"
)

// Compare returns a negative, zero or positive number like cmp.Compare.
type Compare func(a, b model.Event) int

// Comparator returns the single-key comparator for key, negated for
// descending. Text keys collate case-insensitively. The returned function
// is not safe for concurrent use.
func Comparator(key model.SortKey, dir model.SortDirection) Compare {
	var base Compare
	switch key {
	case model.SortByName:
		c := collate.New(language.English, collate.IgnoreCase)
		base = func(a, b model.Event) int { return c.CompareString(a.Name, b.Name) }
	case model.SortByLocation:
		c := collate.New(language.English, collate.IgnoreCase)
		base = func(a, b model.Event) int { return c.CompareString(a.Location, b.Location) }
	case model.SortByPrice:
		base = func(a, b model.Event) int { return a.TicketPrice.Cmp(b.TicketPrice) }
	default:
		base = func(a, b model.Event) int { return a.EventDate.Compare(b.EventDate) }
	}
	if dir == model.Descending {
		return func(a, b model.Event) int { return -base(a, b) }
	}
	return base
}

// Sort returns a stably sorted copy of events; equal elements keep their
// source order.
func Sort(events []model.Event, s model.Sort) []model.Event {
	s = s.OrDefault()
	out := slices.Clone(events)
	slices.SortStableFunc(out, Comparator(s.Key, s.Direction))
	return out
}
