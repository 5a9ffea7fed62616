// Package apiclient is the single point of contact between the page
// controllers and the events API. It unwraps the response envelope,
// normalizes records, retries transient failures and returns typed errors.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"charity-events/internal/model"
	"charity-events/pkg/logger"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultTimeout    = 10 * time.Second

	maxErrorBody = 512
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	log        *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry sets the number of retries after the first attempt and the base
// delay; attempt n waits base * 2^n.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      sleepContext,
		log:        logger.WithComponent("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchEvents(ctx context.Context) ([]model.Event, error) {
	body, err := c.get(ctx, "FetchEvents", "/api/events", nil)
	if err != nil {
		return nil, err
	}
	return c.decodeEvents("FetchEvents", body)
}

func (c *Client) FetchCategories(ctx context.Context) ([]model.Category, error) {
	body, err := c.get(ctx, "FetchCategories", "/api/categories", nil)
	if err != nil {
		return nil, err
	}
	return c.decodeCategories("FetchCategories", body)
}

// FetchEventByID validates rawID as a positive integer before calling the API.
func (c *Client) FetchEventByID(ctx context.Context, rawID string) (*model.Event, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}
	const op = "FetchEventByID"
	body, err := c.get(ctx, op, "/api/events/"+strconv.Itoa(id), nil)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			nf.Resource, nf.ID = "event", id
		}
		return nil, err
	}
	event, err := c.decodeEvent(op, body)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, &NotFoundError{Op: op, Resource: "event", ID: id}
	}
	return event, nil
}

// SearchEvents lets the server filter by the valid parts of criteria. Invalid
// parts are dropped; no criteria at all returns every event.
func (c *Client) SearchEvents(ctx context.Context, criteria model.Criteria) ([]model.Event, error) {
	const op = "SearchEvents"
	body, err := c.get(ctx, op, "/api/events/search", c.searchQuery(criteria))
	if err != nil {
		return nil, err
	}
	return c.decodeEvents(op, body)
}

// Health checks /api/health once, without retries.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.attempt(ctx, "Health", c.baseURL+"/api/health")
	return err
}

func (c *Client) searchQuery(criteria model.Criteria) url.Values {
	q := url.Values{}
	criteria = criteria.Normalize()
	if criteria.Date != "" {
		if day, err := model.ParseDay(criteria.Date); err != nil {
			c.log.Warn("dropping unparseable date criterion", zap.String("date", criteria.Date))
		} else {
			q.Set("date", day.Format(model.DateLayout))
		}
	}
	if criteria.Location != "" {
		q.Set("location", criteria.Location)
	}
	if criteria.CategoryID > 0 {
		q.Set("category", strconv.Itoa(criteria.CategoryID))
	}
	return q
}

// ParseID accepts only a positive base-10 integer.
func ParseID(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: "id", Value: raw, Reason: "not a number"}
	}
	if id <= 0 {
		return 0, &ValidationError{Field: "id", Value: raw, Reason: "must be positive"}
	}
	return id, nil
}

// get runs the retry loop: retryable failures wait base*2^attempt and try
// again, up to maxRetries extra attempts.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		body, err := c.attempt(ctx, op, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !IsRetryable(err) || attempt == c.maxRetries {
			break
		}
		delay := c.baseDelay << attempt
		c.log.Warn("request failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, &NetworkError{Op: op, Err: err}
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Op: op}
	case resp.StatusCode >= 500:
		return nil, &ServerError{Op: op, Status: resp.StatusCode, Body: snippet(body)}
	case resp.StatusCode >= 400:
		return nil, &ClientError{Op: op, Status: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
