// Package page holds the Home, Search and Event-detail controllers. A
// controller owns the page state machine and its timers, computes a view
// model from the fetched events and hands it to a display surface.
package page

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"charity-events/internal/model"
	"charity-events/pkg/logger"
)

const (
	DefaultReadyTimeout  = 5 * time.Second
	DefaultQueryDelay    = 300 * time.Millisecond
	DefaultResizeDelay   = 250 * time.Millisecond
	DefaultPollInterval  = 5 * time.Second
	DefaultRetryInterval = time.Second
)

// Storage keys, one per page plus the search history.
const (
	HomeStateKey     = "page:home:state"
	SearchStateKey   = "page:search:state"
	SearchHistoryKey = "page:search:history"
)

const (
	MaxSearchHistory = 10
	// MobileBreakpoint is the width below which Home forces list mode.
	MobileBreakpoint = 768
)

var ErrSurfaceTimeout = errors.New("page: display surface not ready")

// Surface is the display a controller renders to. Ready is closed once the
// surface can accept renders.
type Surface interface {
	Ready() <-chan struct{}
}

type HomeSurface interface {
	Surface
	// Width is the current viewport width in pixels (or columns).
	Width() int
	RenderHome(view HomeView)
}

type SearchSurface interface {
	Surface
	RenderSearch(view SearchView)
}

type DetailSurface interface {
	Surface
	RenderDetail(view DetailView)
	// RenderProgress redraws only the fundraising progress.
	RenderProgress(view ProgressView)
	RenderModal(view ModalView)
}

type EventSource interface {
	FetchEvents(ctx context.Context) ([]model.Event, error)
}

type CategorySource interface {
	FetchCategories(ctx context.Context) ([]model.Category, error)
}

type SearchSource interface {
	EventSource
	CategorySource
	SearchEvents(ctx context.Context, criteria model.Criteria) ([]model.Event, error)
}

type EventLoader interface {
	FetchEventByID(ctx context.Context, rawID string) (*model.Event, error)
}

type options struct {
	log           *zap.Logger
	now           func() time.Time
	readyTimeout  time.Duration
	queryDelay    time.Duration
	resizeDelay   time.Duration
	pollInterval  time.Duration
	retryInterval time.Duration
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithReadyTimeout(d time.Duration) Option {
	return func(o *options) { o.readyTimeout = d }
}

// WithDelays overrides the query and resize debounce delays.
func WithDelays(query, resize time.Duration) Option {
	return func(o *options) {
		o.queryDelay = query
		o.resizeDelay = resize
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(o *options) { o.pollInterval = d }
}

func WithRetryInterval(d time.Duration) Option {
	return func(o *options) { o.retryInterval = d }
}

func newOptions(opts []Option) options {
	o := options{
		log:           logger.WithComponent("page"),
		now:           time.Now,
		readyTimeout:  DefaultReadyTimeout,
		queryDelay:    DefaultQueryDelay,
		resizeDelay:   DefaultResizeDelay,
		pollInterval:  DefaultPollInterval,
		retryInterval: DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// waitReady blocks until the surface is ready, the budget runs out or ctx ends.
func waitReady(ctx context.Context, s Surface, budget time.Duration) error {
	t := time.NewTimer(budget)
	defer t.Stop()
	select {
	case <-s.Ready():
		return nil
	case <-t.C:
		return ErrSurfaceTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
