package page

import (
	"time"

	"github.com/shopspring/decimal"

	"charity-events/internal/filter"
	"charity-events/internal/model"
	"charity-events/pkg/format"
)

type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

func (m ViewMode) IsValid() bool {
	return m == ViewGrid || m == ViewList
}

// EffectiveViewMode forces list mode below MobileBreakpoint.
func EffectiveViewMode(mode ViewMode, width int) ViewMode {
	if width > 0 && width < MobileBreakpoint {
		return ViewList
	}
	if !mode.IsValid() {
		return ViewGrid
	}
	return mode
}

// EventCard is one event ready for display. The *HTML fields are escaped
// and may carry <mark> highlights; the rest are plain text.
type EventCard struct {
	ID               int
	Name             string
	NameHTML         string
	ShortDescription string
	Location         string
	LocationHTML     string
	Category         string
	Date             string
	Time             string
	Price            string
	Free             bool
	Upcoming         bool
	HasGoal          bool
	Progress         int
	Raised           string
	Goal             string
}

// NewEventCard formats e, highlighting term in the name and location.
func NewEventCard(e model.Event, term string, now time.Time) EventCard {
	card := EventCard{
		ID:               e.ID,
		Name:             e.Name,
		NameHTML:         format.Highlight(e.Name, term),
		ShortDescription: e.ShortDescription,
		Location:         e.Location,
		LocationHTML:     format.Highlight(e.Location, term),
		Category:         e.CategoryName,
		Date:             format.Date(e.EventDate),
		Time:             format.Time(e.EventDate),
		Price:            format.Price(e.TicketPrice),
		Free:             e.IsFree(),
		Upcoming:         e.IsUpcoming(now),
		HasGoal:          e.HasGoal(),
	}
	if card.HasGoal {
		card.Progress = e.Progress()
		card.Raised = format.Currency(e.CurrentAmount)
		card.Goal = format.Currency(e.GoalAmount)
	}
	if card.Category == "" {
		card.Category = model.UncategorizedName
	}
	return card
}

func eventCards(events []model.Event, term string, now time.Time) []EventCard {
	cards := make([]EventCard, 0, len(events))
	for _, e := range events {
		cards = append(cards, NewEventCard(e, term, now))
	}
	return cards
}

// Stats summarises the loaded events on Home.
type Stats struct {
	Total    int
	Upcoming int
	Raised   string
}

func ComputeStats(events []model.Event, now time.Time) Stats {
	raised := decimal.Zero
	upcoming := 0
	for _, e := range events {
		raised = raised.Add(e.CurrentAmount)
		if e.IsUpcoming(now) {
			upcoming++
		}
	}
	return Stats{Total: len(events), Upcoming: upcoming, Raised: format.Currency(raised)}
}

// ComputeEvents is the view-model pipeline shared by Home and Search: the
// free-text query filter, then the sort. The input is never modified.
func ComputeEvents(events []model.Event, query string, s model.Sort) []model.Event {
	return filter.Sort(filter.Query(events, query), s.OrDefault())
}

type HomeView struct {
	State    State
	Message  string
	Query    string
	Sort     model.Sort
	Mode     ViewMode
	Stats    Stats
	Events   []EventCard
	CanRetry bool
}

type SearchView struct {
	State       State
	HasSearched bool
	Criteria    model.Criteria
	Query       string
	Sort        model.Sort
	Categories  []model.Category
	History     []model.Criteria
	Events      []EventCard
	Message     string
	// Notice is a validation hint that does not change State.
	Notice string
	// Fallback is set when the results were filtered locally after the
	// search endpoint failed.
	Fallback bool
}

type DetailView struct {
	State    State
	Message  string
	Event    *EventCard
	Details  *EventDetails
	Progress *ProgressView
}

// EventDetails carries the fields only the detail page shows.
type EventDetails struct {
	Description  string
	Address      string
	TicketType   string
	MaxAttendees int
}

type ProgressView struct {
	EventID  int
	Progress int
	Raised   string
	Goal     string
}

func NewProgressView(e model.Event) ProgressView {
	return ProgressView{
		EventID:  e.ID,
		Progress: e.Progress(),
		Raised:   format.Currency(e.CurrentAmount),
		Goal:     format.Currency(e.GoalAmount),
	}
}

func newEventDetails(e model.Event) *EventDetails {
	d := &EventDetails{
		Description: e.Description,
		TicketType:  string(e.TicketType),
	}
	if e.Address != nil {
		d.Address = *e.Address
	}
	if e.MaxAttendees != nil {
		d.MaxAttendees = *e.MaxAttendees
	}
	return d
}
