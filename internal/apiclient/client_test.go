package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"charity-events/internal/model"
)

const eventsEnvelope = `{
	"success": true,
	"data": [
		{"id": 1, "name": "5K Run", "event_date": "2025-06-10T08:00:00Z", "location": "City Park",
		 "category_id": 1, "category_name": "Sports", "ticket_price": "25", "ticket_type": "paid",
		 "goal_amount": 10000, "current_amount": "6500.00", "is_active": true},
		{"id": 2, "name": "Gala", "event_date": "2025-06-12 19:00:00", "location": "Grand Hotel",
		 "ticket_price": null, "goal_amount": "n/a", "max_attendees": 200}
	],
	"meta": {"count": 2}
}`

// testServer answers every request with the given handler and counts hits.
func testServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestClient(baseURL string) (*Client, *[]time.Duration) {
	var delays []time.Duration
	c := New(baseURL, WithRetry(3, 10*time.Millisecond), WithLogger(zap.NewNop()))
	c.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return c, &delays
}

func TestFetchEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - envelope", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/events", r.URL.Path)
			w.Write([]byte(eventsEnvelope))
		})
		c, _ := newTestClient(srv.URL)

		events, err := c.FetchEvents(ctx)

		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "5K Run", events[0].Name)
		assert.True(t, events[0].TicketPrice.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, 65, events[0].Progress())

		gala := events[1]
		assert.Equal(t, model.UncategorizedName, gala.CategoryName)
		assert.True(t, gala.TicketPrice.IsZero())
		assert.True(t, gala.GoalAmount.IsZero())
		assert.Equal(t, model.TicketTypeFree, gala.TicketType)
		require.NotNil(t, gala.MaxAttendees)
		assert.Equal(t, 200, *gala.MaxAttendees)
		assert.Equal(t, 19, gala.EventDate.Hour())
	})

	t.Run("Success - bare array", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id": 7, "name": "Bake Sale", "event_date": "2025-07-01", "location": "Town Hall"}]`))
		})
		c, _ := newTestClient(srv.URL)

		events, err := c.FetchEvents(ctx)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 7, events[0].ID)
		assert.True(t, events[0].IsActive)
	})

	t.Run("Drops malformed and inactive records", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success": true, "data": [
				{"id": 1, "name": "Kept", "event_date": "2025-07-01T10:00:00Z", "location": "Hall"},
				{"id": 2, "event_date": "2025-07-01T10:00:00Z", "location": "Hall"},
				{"id": 3, "name": "No date", "location": "Hall"},
				{"id": 4, "name": "Inactive", "event_date": "2025-07-01T10:00:00Z", "location": "Hall", "is_active": false},
				"garbage"
			]}`))
		})
		c, _ := newTestClient(srv.URL)

		events, err := c.FetchEvents(ctx)

		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Kept", events[0].Name)
	})

	t.Run("Failed - every record malformed", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"id": 1}, {"name": "x"}]`))
		})
		c, _ := newTestClient(srv.URL)

		_, err := c.FetchEvents(ctx)

		var shapeErr *DataShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.NotEmpty(t, shapeErr.Missing)
	})

	t.Run("Retries 5xx with exponential backoff", func(t *testing.T) {
		var calls atomic.Int32
		srv, hits := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(eventsEnvelope))
		})
		c, delays := newTestClient(srv.URL)

		events, err := c.FetchEvents(ctx)

		require.NoError(t, err)
		assert.Len(t, events, 2)
		assert.Equal(t, int32(3), hits.Load())
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *delays)
	})

	t.Run("Failed - ServerError after exhausting retries", func(t *testing.T) {
		srv, hits := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success": false, "error": "Internal server error"}`))
		})
		c, delays := newTestClient(srv.URL)

		_, err := c.FetchEvents(ctx)

		var srvErr *ServerError
		require.ErrorAs(t, err, &srvErr)
		assert.Equal(t, http.StatusInternalServerError, srvErr.Status)
		assert.Equal(t, int32(4), hits.Load())
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, *delays)
	})

	t.Run("Failed - 4xx is not retried", func(t *testing.T) {
		srv, hits := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		c, delays := newTestClient(srv.URL)

		_, err := c.FetchEvents(ctx)

		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
		assert.False(t, IsRetryable(err))
		assert.Equal(t, int32(1), hits.Load())
		assert.Empty(t, *delays)
	})

	t.Run("Failed - NetworkError", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
		url := srv.URL
		srv.Close()
		c, delays := newTestClient(url)

		_, err := c.FetchEvents(ctx)

		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, IsRetryable(err))
		assert.Len(t, *delays, 3)
	})
}

func TestFetchEventByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/events/42", r.URL.Path)
			w.Write([]byte(`{"success": true, "data": {"id": 42, "name": "Gala", "event_date": "2025-06-12T19:00:00Z", "location": "Hotel"}}`))
		})
		c, _ := newTestClient(srv.URL)

		event, err := c.FetchEventByID(ctx, " 42 ")

		require.NoError(t, err)
		assert.Equal(t, 42, event.ID)
	})

	t.Run("Failed - ValidationError before any request", func(t *testing.T) {
		srv, hits := testServer(t, func(w http.ResponseWriter, r *http.Request) {})
		c, _ := newTestClient(srv.URL)

		for _, raw := range []string{"abc", "", "-3", "0", "1.5"} {
			_, err := c.FetchEventByID(ctx, raw)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr, raw)
			assert.Equal(t, "id", valErr.Field)
		}
		assert.Equal(t, int32(0), hits.Load())
	})

	t.Run("Failed - NotFoundError", func(t *testing.T) {
		srv, hits := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success": false, "error": "Event not found"}`))
		})
		c, _ := newTestClient(srv.URL)

		_, err := c.FetchEventByID(ctx, "9")

		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, 9, nf.ID)
		assert.Equal(t, "event", nf.Resource)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("Failed - inactive record reads as not found", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": 5, "name": "Old", "event_date": "2020-01-01", "location": "X", "is_active": false}`))
		})
		c, _ := newTestClient(srv.URL)

		_, err := c.FetchEventByID(ctx, "5")

		var nf *NotFoundError
		assert.True(t, errors.As(err, &nf))
	})
}

func TestSearchEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("Serializes only valid criteria", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/events/search", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "2025-06-10", q.Get("date"))
			assert.Equal(t, "park", q.Get("location"))
			assert.Equal(t, "3", q.Get("category"))
			w.Write([]byte(`[]`))
		})
		c, _ := newTestClient(srv.URL)

		events, err := c.SearchEvents(ctx, model.Criteria{Date: "2025-06-10", Location: "  park ", CategoryID: 3})

		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Drops invalid date and empty criteria", func(t *testing.T) {
		srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.URL.RawQuery)
			w.Write([]byte(eventsEnvelope))
		})
		c, _ := newTestClient(srv.URL)

		events, err := c.SearchEvents(ctx, model.Criteria{Date: "10/06/2025", Location: "   "})

		require.NoError(t, err)
		assert.Len(t, events, 2)
	})
}

func TestFetchCategories(t *testing.T) {
	srv, _ := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": [{"id": 1, "name": "Sports"}, {"id": "2", "name": "Gala", "description": "Evening"}, {"name": "no id"}]}`))
	})
	c, _ := newTestClient(srv.URL)

	categories, err := c.FetchCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, 2, categories[1].ID)
	require.NotNil(t, categories[1].Description)
	assert.Equal(t, "Evening", *categories[1].Description)
}
