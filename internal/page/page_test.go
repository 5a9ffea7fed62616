package page_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"charity-events/internal/model"
	"charity-events/internal/page"
)

type sourceMock struct {
	mock.Mock
}

func (m *sourceMock) FetchEvents(ctx context.Context) ([]model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *sourceMock) FetchCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *sourceMock) SearchEvents(ctx context.Context, criteria model.Criteria) ([]model.Event, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *sourceMock) FetchEventByID(ctx context.Context, rawID string) (*model.Event, error) {
	args := m.Called(ctx, rawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

// fakeSurface records every render.
type fakeSurface struct {
	ready chan struct{}
	width int

	mu       sync.Mutex
	homes    []page.HomeView
	searches []page.SearchView
	details  []page.DetailView
	progress []page.ProgressView
	modals   []page.ModalView
}

func newFakeSurface(width int) *fakeSurface {
	s := &fakeSurface{ready: make(chan struct{}), width: width}
	close(s.ready)
	return s
}

func newStuckSurface() *fakeSurface {
	return &fakeSurface{ready: make(chan struct{}), width: 1024}
}

func (s *fakeSurface) Ready() <-chan struct{} { return s.ready }
func (s *fakeSurface) Width() int { return s.width }

func (s *fakeSurface) RenderHome(v page.HomeView) {
	s.mu.Lock()
	s.homes = append(s.homes, v)
	s.mu.Unlock()
}

func (s *fakeSurface) RenderSearch(v page.SearchView) {
	s.mu.Lock()
	s.searches = append(s.searches, v)
	s.mu.Unlock()
}

func (s *fakeSurface) RenderDetail(v page.DetailView) {
	s.mu.Lock()
	s.details = append(s.details, v)
	s.mu.Unlock()
}

func (s *fakeSurface) RenderProgress(v page.ProgressView) {
	s.mu.Lock()
	s.progress = append(s.progress, v)
	s.mu.Unlock()
}

func (s *fakeSurface) RenderModal(v page.ModalView) {
	s.mu.Lock()
	s.modals = append(s.modals, v)
	s.mu.Unlock()
}

func (s *fakeSurface) homeRenders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.homes)
}

func (s *fakeSurface) lastSearch() page.SearchView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches[len(s.searches)-1]
}

func (s *fakeSurface) progressRenders() []page.ProgressView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]page.ProgressView(nil), s.progress...)
}

var testNow = time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)

func fastOptions() []page.Option {
	return []page.Option{
		page.WithClock(func() time.Time { return testNow }),
		page.WithDelays(10*time.Millisecond, 10*time.Millisecond),
		page.WithPollInterval(10 * time.Millisecond),
		page.WithReadyTimeout(50 * time.Millisecond),
	}
}

func sampleEvents() []model.Event {
	return []model.Event{
		{
			ID:               1,
			Name:             "5K Run",
			ShortDescription: "A run for the shelter",
			EventDate:        time.Date(2026, 12, 5, 9, 0, 0, 0, time.UTC),
			Location:         "City Park",
			CategoryID:       1,
			CategoryName:     "Sports",
			TicketPrice:      decimal.NewFromInt(25),
			TicketType:       model.TicketTypePaid,
			GoalAmount:       decimal.NewFromInt(10000),
			CurrentAmount:    decimal.NewFromInt(6500),
			IsActive:         true,
		},
		{
			ID:               2,
			Name:             "Winter Gala",
			ShortDescription: "Dinner and auction",
			EventDate:        time.Date(2026, 12, 20, 19, 0, 0, 0, time.UTC),
			Location:         "City Hall",
			CategoryID:       2,
			CategoryName:     "Community",
			TicketPrice:      decimal.NewFromInt(80),
			TicketType:       model.TicketTypePaid,
			GoalAmount:       decimal.NewFromInt(5000),
			CurrentAmount:    decimal.NewFromInt(1000),
			IsActive:         true,
		},
		{
			ID:               3,
			Name:             "Bake Sale",
			ShortDescription: "Cakes for a cause",
			EventDate:        time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
			Location:         "School Hall",
			CategoryID:       2,
			CategoryName:     "Community",
			TicketType:       model.TicketTypeFree,
			IsActive:         true,
		},
	}
}

func eventIDs(cards []page.EventCard) []int {
	ids := make([]int, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}
