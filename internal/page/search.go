package page

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"charity-events/internal/apiclient"
	"charity-events/internal/filter"
	"charity-events/internal/model"
	"charity-events/internal/storage"
)

// searchState is what Search persists between visits.
type searchState struct {
	Criteria model.Criteria `json:"criteria"`
	Query    string         `json:"query,omitempty"`
	Sort     model.Sort     `json:"sort"`
}

// Search runs server-side searches over date, location and category, with a
// local fallback when the search endpoint fails.
type Search struct {
	source  SearchSource
	surface SearchSurface
	store   storage.Store
	opts    options
	log     *zap.Logger

	mu          sync.Mutex
	state       State
	err         error
	hasSearched bool
	fallback    bool
	criteria    model.Criteria
	query       string
	sort        model.Sort
	results     []model.Event
	categories  []model.Category
	history     []model.Criteria
	notice      string
	closed      bool
}

func NewSearch(source SearchSource, surface SearchSurface, store storage.Store, opts ...Option) *Search {
	o := newOptions(opts)
	return &Search{
		source:  source,
		surface: surface,
		store:   store,
		opts:    o,
		log:     o.log.With(zap.String("page", "search")),
		state:   StateInitializing,
		sort:    model.DefaultSort,
	}
}

// Start restores the last search, waits for the surface, loads the
// categories and re-runs the restored search if it had any filter.
func (s *Search) Start(ctx context.Context) error {
	s.restore(ctx)

	if err := waitReady(ctx, s.surface, s.opts.readyTimeout); err != nil {
		s.log.Error("surface not ready", zap.Error(err))
		s.mu.Lock()
		s.state, s.err = StateError, err
		s.renderLocked()
		s.mu.Unlock()
		return err
	}

	categories, err := s.source.FetchCategories(ctx)
	if err != nil {
		s.log.Warn("failed to load categories", zap.Error(err))
		categories = nil
	}

	s.mu.Lock()
	s.categories = categories
	s.state = StateReady
	s.mu.Unlock()

	return s.Run(ctx)
}

func (s *Search) SetDate(ctx context.Context, date string) error {
	return s.update(ctx, func(c *model.Criteria) { c.Date = date })
}

func (s *Search) SetLocation(ctx context.Context, location string) error {
	return s.update(ctx, func(c *model.Criteria) { c.Location = location })
}

// SetCategory filters by category id; 0 clears the filter.
func (s *Search) SetCategory(ctx context.Context, id int) error {
	return s.update(ctx, func(c *model.Criteria) { c.CategoryID = id })
}

// SetCriteria replaces every filter at once, e.g. from a history entry.
func (s *Search) SetCriteria(ctx context.Context, criteria model.Criteria) error {
	return s.update(ctx, func(c *model.Criteria) { *c = criteria })
}

// Clear drops every filter and the results without a network call.
func (s *Search) Clear(ctx context.Context) error {
	return s.SetCriteria(ctx, model.Criteria{})
}

func (s *Search) update(ctx context.Context, change func(*model.Criteria)) error {
	s.mu.Lock()
	change(&s.criteria)
	s.mu.Unlock()
	s.persist(ctx)
	return s.Run(ctx)
}

// SetQuery narrows the current results locally; it never hits the network.
func (s *Search) SetQuery(ctx context.Context, q string) {
	s.mu.Lock()
	s.query = q
	s.refreshResultStateLocked()
	s.renderLocked()
	s.mu.Unlock()
	s.persist(ctx)
}

func (s *Search) SetSort(ctx context.Context, sort model.Sort) {
	s.mu.Lock()
	s.sort = sort.OrDefault()
	s.renderLocked()
	s.mu.Unlock()
	s.persist(ctx)
}

// Run searches with the current criteria. With no criteria the results are
// cleared instead. An unparseable date leaves the results as they were and
// shows a notice.
func (s *Search) Run(ctx context.Context) error {
	s.mu.Lock()
	criteria := s.criteria.Normalize()
	s.notice = ""

	if criteria.IsEmpty() {
		s.results, s.hasSearched, s.fallback, s.err = nil, false, false, nil
		s.state = StateReady
		s.renderLocked()
		s.mu.Unlock()
		return nil
	}
	if _, _, err := criteria.Day(); err != nil {
		s.notice = MsgInvalidDate
		s.renderLocked()
		s.mu.Unlock()
		return &apiclient.ValidationError{Field: "date", Value: criteria.Date, Reason: "not a calendar date"}
	}
	s.state, s.err = StateLoading, nil
	s.renderLocked()
	s.mu.Unlock()

	results, fallback, err := s.fetch(ctx, criteria)

	// overlapping searches are not cancelled; whichever finishes last wins
	s.mu.Lock()
	if err != nil {
		s.state, s.err = StateError, err
		s.renderLocked()
		s.mu.Unlock()
		return err
	}
	s.results, s.fallback, s.hasSearched = results, fallback, true
	s.pushHistoryLocked(criteria)
	s.state = resultState(len(ComputeEvents(s.results, s.query, s.sort)))
	s.renderLocked()
	history := slices.Clone(s.history)
	s.mu.Unlock()

	s.saveHistory(ctx, history)
	return nil
}

// fetch asks the server first and, if that fails, filters the full list
// locally with the same predicates.
func (s *Search) fetch(ctx context.Context, criteria model.Criteria) ([]model.Event, bool, error) {
	results, err := s.source.SearchEvents(ctx, criteria)
	if err == nil {
		return results, false, nil
	}
	s.log.Warn("search endpoint failed, filtering locally", zap.Error(err))

	all, fallbackErr := s.source.FetchEvents(ctx)
	if fallbackErr != nil {
		s.log.Error("search fallback failed", zap.Error(fallbackErr))
		return nil, false, errors.Join(err, fallbackErr)
	}
	return filter.Apply(all, criteria), true, nil
}

func (s *Search) pushHistoryLocked(c model.Criteria) {
	s.history = slices.DeleteFunc(s.history, func(h model.Criteria) bool { return h == c })
	s.history = slices.Insert(s.history, 0, c)
	if len(s.history) > MaxSearchHistory {
		s.history = s.history[:MaxSearchHistory]
	}
}

func (s *Search) History() []model.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

func (s *Search) Criteria() model.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

func (s *Search) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Search) View() SearchView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Close drops later renders. Search owns no timers.
func (s *Search) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Search) refreshResultStateLocked() {
	if s.hasSearched && (s.state == StateReady || s.state == StateEmpty) {
		s.state = resultState(len(ComputeEvents(s.results, s.query, s.sort)))
	}
}

func (s *Search) viewLocked() SearchView {
	criteria := s.criteria.Normalize()
	view := SearchView{
		State:       s.state,
		HasSearched: s.hasSearched,
		Criteria:    s.criteria,
		Query:       s.query,
		Sort:        s.sort,
		Categories:  slices.Clone(s.categories),
		History:     slices.Clone(s.history),
		Notice:      s.notice,
		Fallback:    s.fallback,
	}
	switch s.state {
	case StateError:
		view.Message = ErrorMessage(s.err)
	case StateEmpty:
		active := criteria.ActiveFilters()
		if strings.TrimSpace(s.query) != "" {
			active = append(active, "query")
		}
		view.Message = EmptySearchMessage(active)
	case StateReady:
		if s.hasSearched {
			view.Events = eventCards(ComputeEvents(s.results, s.query, s.sort), criteria.Location, s.opts.now())
		}
	}
	return view
}

func (s *Search) renderLocked() {
	if s.closed {
		return
	}
	s.surface.RenderSearch(s.viewLocked())
}

func (s *Search) restore(ctx context.Context) {
	var saved searchState
	if err := storage.LoadJSON(ctx, s.store, SearchStateKey, &saved); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("discarding saved search state", zap.Error(err))
		}
	}
	var history []model.Criteria
	if err := storage.LoadJSON(ctx, s.store, SearchHistoryKey, &history); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("discarding saved search history", zap.Error(err))
		}
		history = nil
	}
	if len(history) > MaxSearchHistory {
		history = history[:MaxSearchHistory]
	}

	s.mu.Lock()
	s.criteria = saved.Criteria
	s.query = saved.Query
	s.sort = saved.Sort.OrDefault()
	s.history = history
	s.mu.Unlock()
}

func (s *Search) persist(ctx context.Context) {
	s.mu.Lock()
	saved := searchState{Criteria: s.criteria, Query: s.query, Sort: s.sort}
	s.mu.Unlock()
	if err := storage.SaveJSON(ctx, s.store, SearchStateKey, saved); err != nil {
		s.log.Warn("failed to save search state", zap.Error(err))
	}
}

func (s *Search) saveHistory(ctx context.Context, history []model.Criteria) {
	if err := storage.SaveJSON(ctx, s.store, SearchHistoryKey, history); err != nil {
		s.log.Warn("failed to save search history", zap.Error(err))
	}
}
