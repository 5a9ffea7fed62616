package page_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"charity-events/internal/apiclient"
	"charity-events/internal/model"
	"charity-events/internal/page"
	"charity-events/internal/storage"
	"charity-events/pkg/format"
)

func TestHome_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		source := &sourceMock{}
		surface := newFakeSurface(1024)
		home := page.NewHome(source, surface, storage.NewMemoryStore(), fastOptions()...)
		defer home.Close()

		source.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()

		require.NoError(t, home.Start(ctx))

		view := home.View()
		assert.Equal(t, page.StateReady, view.State)
		assert.Equal(t, page.ViewGrid, view.Mode)
		assert.Equal(t, []int{3, 1, 2}, eventIDs(view.Events))
		assert.Equal(t, 3, view.Stats.Total)
		assert.Equal(t, 2, view.Stats.Upcoming)
		assert.Equal(t, format.Currency(decimal.NewFromInt(7500)), view.Stats.Raised)
		assert.Equal(t, 65, view.Events[1].Progress)
		assert.False(t, view.Events[0].HasGoal)
		assert.Equal(t, "Free", view.Events[0].Price)

		// loading then ready
		require.GreaterOrEqual(t, surface.homeRenders(), 2)
		assert.Equal(t, page.StateLoading, surface.homes[0].State)
		source.AssertExpectations(t)
	})

	t.Run("Success - no events is empty", func(t *testing.T) {
		source := &sourceMock{}
		home := page.NewHome(source, newFakeSurface(1024), storage.NewMemoryStore(), fastOptions()...)
		defer home.Close()

		source.On("FetchEvents", mock.Anything).Return([]model.Event{}, nil).Once()

		require.NoError(t, home.Start(ctx))

		view := home.View()
		assert.Equal(t, page.StateEmpty, view.State)
		assert.Equal(t, page.MsgNoEvents, view.Message)
		assert.True(t, view.CanRetry)
	})

	t.Run("Failed - network error", func(t *testing.T) {
		source := &sourceMock{}
		home := page.NewHome(source, newFakeSurface(1024), storage.NewMemoryStore(), fastOptions()...)
		defer home.Close()

		netErr := &apiclient.NetworkError{Op: "FetchEvents", Err: errors.New("connection refused")}
		source.On("FetchEvents", mock.Anything).Return(nil, netErr).Once()

		err := home.Start(ctx)

		assert.ErrorAs(t, err, new(*apiclient.NetworkError))
		view := home.View()
		assert.Equal(t, page.StateError, view.State)
		assert.Equal(t, page.MsgConnectivity, view.Message)
		assert.True(t, view.CanRetry)
	})

	t.Run("Failed - surface never ready", func(t *testing.T) {
		source := &sourceMock{}
		home := page.NewHome(source, newStuckSurface(), storage.NewMemoryStore(), fastOptions()...)
		defer home.Close()

		err := home.Start(ctx)

		assert.ErrorIs(t, err, page.ErrSurfaceTimeout)
		assert.Equal(t, page.StateError, home.State())
		assert.Equal(t, page.MsgNotReady, home.View().Message)
		source.AssertNotCalled(t, "FetchEvents", mock.Anything)
	})
}

func TestHome_Retry(t *testing.T) {
	ctx := context.Background()
	source := &sourceMock{}
	home := page.NewHome(source, newFakeSurface(1024), storage.NewMemoryStore(), fastOptions()...)
	defer home.Close()

	source.On("FetchEvents", mock.Anything).Return(nil, &apiclient.ServerError{Op: "FetchEvents", Status: 503}).Once()
	source.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()

	require.Error(t, home.Start(ctx))
	assert.Equal(t, page.StateError, home.State())
	assert.Equal(t, page.MsgGeneric, home.View().Message)

	require.NoError(t, home.Retry(ctx))
	assert.Equal(t, page.StateReady, home.State())

	// a second retry inside the interval is dropped
	assert.ErrorIs(t, home.Retry(ctx), page.ErrRetryThrottled)
	source.AssertNumberOfCalls(t, "FetchEvents", 2)
}

func TestHome_SetQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - debounced", func(t *testing.T) {
		source := &sourceMock{}
		home := page.NewHome(source, newFakeSurface(1024), storage.NewMemoryStore(), fastOptions()...)
		defer home.Close()
		source.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()
		require.NoError(t, home.Start(ctx))

		home.SetQuery("h")
		home.SetQuery("ha")
		home.SetQuery("hall")
		assert.Equal(t, "", home.View().Query)

		assert.Eventually(t, func() bool { return home.View().Query == "hall" }, time.Second, 5*time.Millisecond)
		assert.Equal(t, []int{3, 2}, eventIDs(home.View().Events))
	})

	t.Run("Success - no match is empty", func(t *testing.T) {
		source := &sourceMock{}
		home := page.NewHome(source, newFakeSurface(1024), storage.NewMemoryStore(), fastOptions()...)
		defer home.Close()
		source.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()
		require.NoError(t, home.Start(ctx))

		home.SetQuery("marathon")

		assert.Eventually(t, func() bool { return home.State() == page.StateEmpty }, time.Second, 5*time.Millisecond)
		assert.Equal(t, page.MsgNoMatches, home.View().Message)

		home.SetQuery("")
		assert.Eventually(t, func() bool { return home.State() == page.StateReady }, time.Second, 5*time.Millisecond)
	})

	t.Run("Success - close cancels pending query", func(t *testing.T) {
		source := &sourceMock{}
		surface := newFakeSurface(1024)
		home := page.NewHome(source, surface, storage.NewMemoryStore(), fastOptions()...)
		source.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()
		require.NoError(t, home.Start(ctx))

		renders := surface.homeRenders()
		home.SetQuery("park")
		home.Close()
		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, renders, surface.homeRenders())
		assert.Equal(t, "", home.View().Query)
	})
}

func TestHome_ViewMode(t *testing.T) {
	ctx := context.Background()
	source := &sourceMock{}
	home := page.NewHome(source, newFakeSurface(1024), storage.NewMemoryStore(), fastOptions()...)
	defer home.Close()
	source.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()
	require.NoError(t, home.Start(ctx))

	home.SetViewMode(ctx, page.ViewList)
	assert.Equal(t, page.ViewList, home.View().Mode)

	home.SetViewMode(ctx, page.ViewGrid)
	home.Resize(500)
	assert.Eventually(t, func() bool { return home.View().Mode == page.ViewList }, time.Second, 5*time.Millisecond)

	home.Resize(1200)
	assert.Eventually(t, func() bool { return home.View().Mode == page.ViewGrid }, time.Second, 5*time.Millisecond)
	source.AssertNumberOfCalls(t, "FetchEvents", 1)
}

func TestHome_PersistsSortAndViewMode(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first := &sourceMock{}
	home := page.NewHome(first, newFakeSurface(1024), store, fastOptions()...)
	first.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()
	require.NoError(t, home.Start(ctx))

	priceDesc := model.Sort{Key: model.SortByPrice, Direction: model.Descending}
	home.SetSort(ctx, priceDesc)
	home.SetViewMode(ctx, page.ViewList)
	assert.Equal(t, []int{2, 1, 3}, eventIDs(home.View().Events))
	home.Close()

	second := &sourceMock{}
	restored := page.NewHome(second, newFakeSurface(1024), store, fastOptions()...)
	defer restored.Close()
	second.On("FetchEvents", mock.Anything).Return(sampleEvents(), nil).Once()
	require.NoError(t, restored.Start(ctx))

	view := restored.View()
	assert.Equal(t, priceDesc, view.Sort)
	assert.Equal(t, page.ViewList, view.Mode)
	assert.Equal(t, []int{2, 1, 3}, eventIDs(view.Events))
}
