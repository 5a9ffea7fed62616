package page

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"charity-events/internal/model"
	"charity-events/internal/storage"
	"charity-events/internal/timer"
)

var ErrRetryThrottled = errors.New("page: retry throttled")

// homeState is what Home persists between visits.
type homeState struct {
	Sort model.Sort `json:"sort"`
	Mode ViewMode   `json:"view_mode"`
}

// Home lists every active event with a free-text filter, a sort and a
// grid/list toggle.
type Home struct {
	events  EventSource
	surface HomeSurface
	store   storage.Store
	opts    options
	log     *zap.Logger

	queryDebounce  *timer.Debouncer
	resizeDebounce *timer.Debouncer
	retryThrottle  *timer.Throttler

	mu           sync.Mutex
	state        State
	err          error
	all          []model.Event
	query        string
	pendingQuery string
	sort         model.Sort
	mode         ViewMode
	width        int
	pendingWidth int
	closed       bool
}

func NewHome(events EventSource, surface HomeSurface, store storage.Store, opts ...Option) *Home {
	o := newOptions(opts)
	h := &Home{
		events:        events,
		surface:       surface,
		store:         store,
		opts:          o,
		log:           o.log.With(zap.String("page", "home")),
		retryThrottle: timer.NewThrottler(o.retryInterval),
		state:         StateInitializing,
		sort:          model.DefaultSort,
		mode:          ViewGrid,
	}
	h.queryDebounce = timer.NewDebouncer(o.queryDelay, h.applyQuery)
	h.resizeDebounce = timer.NewDebouncer(o.resizeDelay, h.applyResize)
	return h
}

// Start restores the saved sort and view mode, waits for the surface and
// loads the events.
func (h *Home) Start(ctx context.Context) error {
	h.restore(ctx)

	if err := waitReady(ctx, h.surface, h.opts.readyTimeout); err != nil {
		h.log.Error("surface not ready", zap.Error(err))
		h.mu.Lock()
		h.state, h.err = StateError, err
		h.renderLocked()
		h.mu.Unlock()
		return err
	}

	h.mu.Lock()
	h.width = h.surface.Width()
	h.mu.Unlock()

	return h.Load(ctx)
}

// Load fetches every active event and settles in ready, empty or error.
func (h *Home) Load(ctx context.Context) error {
	h.mu.Lock()
	h.state, h.err = StateLoading, nil
	h.renderLocked()
	h.mu.Unlock()

	events, err := h.events.FetchEvents(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.log.Error("failed to load events", zap.Error(err))
		h.state, h.err = StateError, err
		h.renderLocked()
		return err
	}
	h.all = events
	h.state = resultState(len(ComputeEvents(h.all, h.query, h.sort)))
	h.log.Info("events loaded", zap.Int("count", len(events)), zap.Stringer("state", h.state))
	h.renderLocked()
	return nil
}

// Retry reloads from a settled state, at most once per retry interval.
func (h *Home) Retry(ctx context.Context) error {
	h.mu.Lock()
	settled := h.state.settled()
	h.mu.Unlock()
	if !settled || !h.retryThrottle.Allow() {
		return ErrRetryThrottled
	}
	return h.Load(ctx)
}

// SetQuery re-filters once typing pauses.
func (h *Home) SetQuery(q string) {
	h.mu.Lock()
	h.pendingQuery = q
	h.mu.Unlock()
	h.queryDebounce.Schedule()
}

func (h *Home) applyQuery() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.query = h.pendingQuery
	h.refreshResultStateLocked()
	h.renderLocked()
}

// Resize re-renders once resizing pauses.
func (h *Home) Resize(width int) {
	h.mu.Lock()
	h.pendingWidth = width
	h.mu.Unlock()
	h.resizeDebounce.Schedule()
}

func (h *Home) applyResize() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width = h.pendingWidth
	h.renderLocked()
}

func (h *Home) SetSort(ctx context.Context, s model.Sort) {
	h.mu.Lock()
	h.sort = s.OrDefault()
	h.renderLocked()
	h.mu.Unlock()
	h.persist(ctx)
}

// SetViewMode switches between grid and list without refetching. The
// choice is remembered even while a narrow viewport forces list mode.
func (h *Home) SetViewMode(ctx context.Context, mode ViewMode) {
	if !mode.IsValid() {
		return
	}
	h.mu.Lock()
	h.mode = mode
	h.renderLocked()
	h.mu.Unlock()
	h.persist(ctx)
}

func (h *Home) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// View computes the current view model.
func (h *Home) View() HomeView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewLocked()
}

// Close cancels pending debounced work; later renders are dropped.
func (h *Home) Close() {
	h.queryDebounce.Cancel()
	h.resizeDebounce.Cancel()
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
}

func (h *Home) refreshResultStateLocked() {
	if h.state == StateReady || h.state == StateEmpty {
		h.state = resultState(len(ComputeEvents(h.all, h.query, h.sort)))
	}
}

func (h *Home) viewLocked() HomeView {
	view := HomeView{
		State:    h.state,
		Query:    h.query,
		Sort:     h.sort,
		Mode:     EffectiveViewMode(h.mode, h.width),
		CanRetry: h.state.settled(),
	}
	switch h.state {
	case StateError:
		view.Message = ErrorMessage(h.err)
	case StateEmpty:
		view.Message = MsgNoEvents
		if len(h.all) > 0 {
			view.Message = MsgNoMatches
		}
	case StateReady:
		now := h.opts.now()
		view.Stats = ComputeStats(h.all, now)
		view.Events = eventCards(ComputeEvents(h.all, h.query, h.sort), "", now)
	}
	return view
}

func (h *Home) renderLocked() {
	if h.closed {
		return
	}
	h.surface.RenderHome(h.viewLocked())
}

func (h *Home) restore(ctx context.Context) {
	var saved homeState
	if err := storage.LoadJSON(ctx, h.store, HomeStateKey, &saved); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.log.Warn("discarding saved home state", zap.Error(err))
		}
		return
	}
	h.mu.Lock()
	h.sort = saved.Sort.OrDefault()
	if saved.Mode.IsValid() {
		h.mode = saved.Mode
	}
	h.mu.Unlock()
}

func (h *Home) persist(ctx context.Context) {
	h.mu.Lock()
	saved := homeState{Sort: h.sort, Mode: h.mode}
	h.mu.Unlock()
	if err := storage.SaveJSON(ctx, h.store, HomeStateKey, saved); err != nil {
		h.log.Warn("failed to save home state", zap.Error(err))
	}
}
