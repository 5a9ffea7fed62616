package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"charity-events/internal/model"
)

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// unwrapEnvelope returns the payload of {success, data, meta} or the body
// itself when it is not an envelope.
func unwrapEnvelope(op string, body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return trimmed, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, &DataShapeError{Index: -1, Err: fmt.Errorf("%s: decode envelope: %w", op, err)}
	}
	if env.Success == nil {
		return trimmed, nil
	}
	if !*env.Success {
		return nil, fmt.Errorf("%s: api reported failure: %s", op, env.Error)
	}
	return env.Data, nil
}

type wireEvent struct {
	ID               any     `json:"id"`
	Name             *string `json:"name"`
	ShortDescription *string `json:"short_description"`
	Description      *string `json:"description"`
	EventDate        *string `json:"event_date"`
	Location         *string `json:"location"`
	Address          *string `json:"address"`
	CategoryID       any     `json:"category_id"`
	CategoryName     *string `json:"category_name"`
	TicketPrice      any     `json:"ticket_price"`
	TicketType       *string `json:"ticket_type"`
	GoalAmount       any     `json:"goal_amount"`
	CurrentAmount    any     `json:"current_amount"`
	IsActive         *bool   `json:"is_active"`
	MaxAttendees     any     `json:"max_attendees"`
}

type wireCategory struct {
	ID          any     `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (c *Client) decodeEvents(op string, body []byte) ([]model.Event, error) {
	records, err := recordsOf(op, body)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(records))
	var lastShape *DataShapeError
	for i, raw := range records {
		event, active, err := normalizeEvent(i, raw)
		if err != nil {
			c.log.Warn("dropping malformed event record", zap.String("operation", op), zap.Error(err))
			lastShape = err
			continue
		}
		if !active {
			continue
		}
		events = append(events, event)
	}
	if len(events) == 0 && lastShape != nil {
		return nil, lastShape
	}
	return events, nil
}

func (c *Client) decodeEvent(op string, body []byte) (*model.Event, error) {
	data, err := unwrapEnvelope(op, body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	// some deployments answer the lookup with a one-element list
	if data[0] == '[' {
		events, err := c.decodeEvents(op, data)
		if err != nil || len(events) == 0 {
			return nil, err
		}
		return &events[0], nil
	}
	event, active, shapeErr := normalizeEvent(0, data)
	if shapeErr != nil {
		return nil, shapeErr
	}
	if !active {
		return nil, nil
	}
	return &event, nil
}

func (c *Client) decodeCategories(op string, body []byte) ([]model.Category, error) {
	records, err := recordsOf(op, body)
	if err != nil {
		return nil, err
	}
	categories := make([]model.Category, 0, len(records))
	for i, raw := range records {
		var w wireCategory
		if err := decodeUseNumber(raw, &w); err != nil {
			c.log.Warn("dropping malformed category record", zap.String("operation", op), zap.Int("index", i), zap.Error(err))
			continue
		}
		id, ok := toInt(w.ID)
		if !ok || id <= 0 || w.Name == nil || strings.TrimSpace(*w.Name) == "" {
			c.log.Warn("dropping category record without id or name", zap.String("operation", op), zap.Int("index", i))
			continue
		}
		categories = append(categories, model.Category{ID: id, Name: *w.Name, Description: w.Description})
	}
	return categories, nil
}

func recordsOf(op string, body []byte) ([]json.RawMessage, error) {
	data, err := unwrapEnvelope(op, body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &DataShapeError{Index: -1, Err: fmt.Errorf("%s: expected a list: %w", op, err)}
	}
	return records, nil
}

// normalizeEvent converts one wire record. active is false for records the
// API flagged inactive.
func normalizeEvent(index int, raw json.RawMessage) (model.Event, bool, *DataShapeError) {
	var w wireEvent
	if err := decodeUseNumber(raw, &w); err != nil {
		return model.Event{}, false, &DataShapeError{Index: index, Err: err}
	}

	var missing []string
	id, ok := toInt(w.ID)
	if !ok || id <= 0 {
		missing = append(missing, "id")
	}
	if w.Name == nil || strings.TrimSpace(*w.Name) == "" {
		missing = append(missing, "name")
	}
	var date time.Time
	if w.EventDate == nil {
		missing = append(missing, "event_date")
	} else if d, err := parseTimestamp(*w.EventDate); err != nil {
		missing = append(missing, "event_date")
	} else {
		date = d
	}
	if w.Location == nil || strings.TrimSpace(*w.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return model.Event{}, false, &DataShapeError{Index: index, Missing: missing}
	}

	event := model.Event{
		ID:               id,
		Name:             *w.Name,
		ShortDescription: deref(w.ShortDescription),
		Description:      deref(w.Description),
		EventDate:        date,
		Location:         *w.Location,
		Address:          w.Address,
		CategoryName:     deref(w.CategoryName),
		TicketPrice:      toDecimal(w.TicketPrice),
		GoalAmount:       toDecimal(w.GoalAmount),
		CurrentAmount:    toDecimal(w.CurrentAmount),
		IsActive:         w.IsActive == nil || *w.IsActive,
	}
	if cid, ok := toInt(w.CategoryID); ok && cid > 0 {
		event.CategoryID = cid
	}
	if strings.TrimSpace(event.CategoryName) == "" {
		event.CategoryName = model.UncategorizedName
	}
	event.TicketType = model.TicketType(strings.ToLower(deref(w.TicketType)))
	if !event.TicketType.IsValid() {
		event.TicketType = model.TicketTypePaid
		if event.TicketPrice.IsZero() {
			event.TicketType = model.TicketTypeFree
		}
	}
	if capacity, ok := toInt(w.MaxAttendees); ok && capacity > 0 {
		event.MaxAttendees = &capacity
	}
	return event, event.IsActive, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	model.DateLayout,
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func decodeUseNumber(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
			return int(f), true
		}
	case float64:
		if n == float64(int64(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// toDecimal coerces numbers and numeric strings; anything else is zero.
func toDecimal(v any) decimal.Decimal {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		s = strings.TrimSpace(n)
	default:
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
