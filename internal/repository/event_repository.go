package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"charity-events/internal/model"
	apperrors "charity-events/pkg/app_errors"
)

type EventRepository interface {
	// ListActive returns every active event, soonest first.
	ListActive(ctx context.Context) ([]*model.Event, error)
	FindActiveByID(ctx context.Context, id int) (*model.Event, error)
	// Search filters active events by the set fields of params.
	Search(ctx context.Context, params model.SearchParams) ([]*model.Event, error)
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventSelect = `
	SELECT e.id, e.name, e.short_description, e.description, e.event_date, e.location, e.address,
	       COALESCE(e.category_id, 0), COALESCE(c.name, 'Uncategorized'),
	       e.ticket_price, e.ticket_type, e.goal_amount, e.current_amount, e.is_active, e.max_attendees
	FROM events e
	LEFT JOIN categories c ON c.id = e.category_id
`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Name,
		&event.ShortDescription,
		&event.Description,
		&event.EventDate,
		&event.Location,
		&event.Address,
		&event.CategoryID,
		&event.CategoryName,
		&event.TicketPrice,
		&event.TicketType,
		&event.GoalAmount,
		&event.CurrentAmount,
		&event.IsActive,
		&event.MaxAttendees,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepositoryImpl) ListActive(ctx context.Context) ([]*model.Event, error) {
	query := eventSelect + `
		WHERE e.is_active = TRUE
		ORDER BY e.event_date ASC, e.id ASC
	`
	return r.queryEvents(ctx, query)
}

func (r *EventRepositoryImpl) FindActiveByID(ctx context.Context, id int) (*model.Event, error) {
	query := eventSelect + `
		WHERE e.id = $1 AND e.is_active = TRUE
	`
	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) Search(ctx context.Context, params model.SearchParams) ([]*model.Event, error) {
	conds := []string{"e.is_active = TRUE"}
	args := []interface{}{}
	argPos := 1

	if params.Date != nil {
		day := time.Date(params.Date.Year(), params.Date.Month(), params.Date.Day(), 0, 0, 0, 0, time.UTC)
		conds = append(conds, fmt.Sprintf("e.event_date >= $%d AND e.event_date < $%d", argPos, argPos+1))
		args = append(args, day, day.AddDate(0, 0, 1))
		argPos += 2
	}

	if params.Location != "" {
		conds = append(conds, fmt.Sprintf("(e.location ILIKE $%d OR e.name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+escapeLike(params.Location)+"%")
		argPos++
	}

	if params.CategoryID != nil {
		conds = append(conds, fmt.Sprintf("e.category_id = $%d", argPos))
		args = append(args, *params.CategoryID)
		argPos++
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY e.event_date ASC, e.id ASC
	`, eventSelect, strings.Join(conds, " AND "))

	return r.queryEvents(ctx, query, args...)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside ILIKE.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
