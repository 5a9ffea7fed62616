// Package render draws page views as plain text on a terminal.
package render

import (
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"charity-events/internal/page"
	"charity-events/pkg/format"
)

const (
	ansiHighlight = "\x1b[1;33m"
	ansiReset     = "\x1b[0m"
	ansiClear     = "\x1b[H\x1b[2J"
)

// Terminal implements the Home, Search and Detail surfaces.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	width int
	color bool
	ready chan struct{}
}

// NewTerminal writes to w. Colour is used only when w is a TTY.
func NewTerminal(w io.Writer, width int) *Terminal {
	t := &Terminal{w: w, width: width, ready: make(chan struct{})}
	if f, ok := w.(*os.File); ok {
		t.color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	close(t.ready)
	return t
}

func (t *Terminal) Ready() <-chan struct{} { return t.ready }

func (t *Terminal) Width() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width
}

// SetWidth records a new terminal width; the caller forwards it to Home.Resize.
func (t *Terminal) SetWidth(width int) {
	t.mu.Lock()
	t.width = width
	t.mu.Unlock()
}

func (t *Terminal) RenderHome(v page.HomeView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clear()

	t.heading("Upcoming charity events")
	switch v.State {
	case page.StateLoading, page.StateInitializing:
		t.line("Loading events...")
		return
	case page.StateError, page.StateEmpty:
		t.line(v.Message)
		if v.CanRetry {
			t.line("Run again to retry.")
		}
		return
	}

	t.line(fmt.Sprintf("%d events, %d upcoming, %s raised", v.Stats.Total, v.Stats.Upcoming, v.Stats.Raised))
	if v.Query != "" {
		t.line(fmt.Sprintf("Filter: %q", v.Query))
	}
	t.line(fmt.Sprintf("Sorted by %s", v.Sort))
	t.line("")
	t.cards(v.Events, v.Mode)
}

func (t *Terminal) RenderSearch(v page.SearchView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clear()

	t.heading("Search events")
	if filters := describeCriteria(v); filters != "" {
		t.line("Filters: " + filters)
	}
	if v.Notice != "" {
		t.line(v.Notice)
	}
	switch v.State {
	case page.StateLoading, page.StateInitializing:
		t.line("Searching...")
		return
	case page.StateError, page.StateEmpty:
		t.line(v.Message)
		return
	}
	if !v.HasSearched {
		t.line("Choose a date, location or category to search.")
		t.history(v)
		return
	}
	if v.Fallback {
		t.line("(search service unavailable, results filtered locally)")
	}
	t.line(fmt.Sprintf("%d results", len(v.Events)))
	t.line("")
	t.cards(v.Events, page.ViewList)
}

func (t *Terminal) RenderDetail(v page.DetailView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clear()

	switch v.State {
	case page.StateLoading:
		t.line("Loading event...")
		return
	case page.StateError:
		t.line(v.Message)
		return
	}
	e, d := v.Event, v.Details
	t.heading(e.Name)

	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", label, value)
		}
	}
	row("When", e.Date+" "+e.Time)
	row("Where", e.Location)
	row("Address", d.Address)
	row("Category", e.Category)
	row("Tickets", e.Price)
	if d.MaxAttendees > 0 {
		row("Capacity", fmt.Sprintf("%d", d.MaxAttendees))
	}
	tw.Flush()

	if d.Description != "" {
		t.line("")
		t.line(d.Description)
	}
	if v.Progress != nil {
		t.line("")
		t.progress(*v.Progress)
	}
}

func (t *Terminal) RenderProgress(v page.ProgressView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress(v)
}

func (t *Terminal) RenderModal(v page.ModalView) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !v.Open {
		t.line("[dialog closed]")
		return
	}
	t.heading(v.Title)
	for _, f := range v.Focusables {
		marker := " "
		if f == v.Focused {
			marker = ">"
		}
		t.line(fmt.Sprintf(" %s %s", marker, f))
	}
}

func (t *Terminal) cards(cards []page.EventCard, mode page.ViewMode) {
	if mode == page.ViewList {
		tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tNAME\tLOCATION\tCATEGORY\tPRICE\tRAISED")
		for _, c := range cards {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
				c.ID, c.Date, t.markup(c.NameHTML), t.markup(c.LocationHTML), c.Category, c.Price, raised(c))
		}
		tw.Flush()
		return
	}

	for _, c := range cards {
		t.line(fmt.Sprintf("#%d %s", c.ID, t.markup(c.NameHTML)))
		t.line(fmt.Sprintf("   %s %s | %s | %s", c.Date, c.Time, t.markup(c.LocationHTML), c.Category))
		if c.ShortDescription != "" {
			t.line("   " + format.Truncate(c.ShortDescription, max(t.width-3, 20)))
		}
		if c.HasGoal {
			t.line(fmt.Sprintf("   %s  %s", bar(c.Progress, 20), raised(c)))
		}
		t.line(fmt.Sprintf("   %s", c.Price))
		t.line("")
	}
}

func (t *Terminal) history(v page.SearchView) {
	if len(v.History) == 0 {
		return
	}
	t.line("")
	t.line("Recent searches:")
	for i, c := range v.History {
		t.line(fmt.Sprintf("  %d. %s", i+1, criteriaString(c.Date, c.Location, categoryName(v, c.CategoryID))))
	}
}

func (t *Terminal) progress(v page.ProgressView) {
	t.line(fmt.Sprintf("%s %d%%  %s of %s", bar(v.Progress, 30), v.Progress, v.Raised, v.Goal))
}

// clear redraws full pages in place on a TTY; piped output is appended.
func (t *Terminal) clear() {
	if t.color {
		fmt.Fprint(t.w, ansiClear)
	}
}

func (t *Terminal) heading(s string) {
	t.line(s)
	t.line(strings.Repeat("=", len([]rune(s))))
}

func (t *Terminal) line(s string) {
	fmt.Fprintln(t.w, s)
}

// markup turns the escaped, <mark>-highlighted HTML of a card into terminal text.
func (t *Terminal) markup(s string) string {
	open, end := "[", "]"
	if t.color {
		open, end = ansiHighlight, ansiReset
	}
	s = strings.ReplaceAll(s, "<mark>", open)
	s = strings.ReplaceAll(s, "</mark>", end)
	return html.UnescapeString(s)
}

func bar(pct, width int) string {
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func raised(c page.EventCard) string {
	if !c.HasGoal {
		return ""
	}
	return fmt.Sprintf("%s / %s (%d%%)", c.Raised, c.Goal, c.Progress)
}

func describeCriteria(v page.SearchView) string {
	c := v.Criteria.Normalize()
	return criteriaString(c.Date, c.Location, categoryName(v, c.CategoryID))
}

func criteriaString(date, location, category string) string {
	var parts []string
	if date != "" {
		parts = append(parts, "date="+date)
	}
	if location != "" {
		parts = append(parts, "location="+location)
	}
	if category != "" {
		parts = append(parts, "category="+category)
	}
	return strings.Join(parts, " ")
}

func categoryName(v page.SearchView, id int) string {
	if id <= 0 {
		return ""
	}
	for _, c := range v.Categories {
		if c.ID == id {
			return c.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}
