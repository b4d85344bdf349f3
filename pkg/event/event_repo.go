package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int) (Event, error)
	// GetAllEvents returns every event ordered by date, then id.
	GetAllEvents(ctx context.Context) ([]Event, error)
}

type EventRepoImpl struct {
	db *pgxpool.Pool
}

func NewEventRepo(db *pgxpool.Pool) *EventRepoImpl {
	return &EventRepoImpl{db: db}
}

const selectEvent = `SELECT id, title, description, date, location, category, price::text, image_url,
       organizer, attendees, created_at FROM events`

func (r *EventRepoImpl) CreateEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO events (title, description, date, location, category, price, image_url, organizer,
                    attendees, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, 0, $9) RETURNING id, attendees`

	err := r.db.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.Category,
		event.Price,
		event.ImageUrl,
		event.Organizer,
		event.CreatedAt,
	).Scan(&event.Id, &event.Attendees)
	if err != nil {
		err := fmt.Errorf("could not insert event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *EventRepoImpl) GetEvent(ctx context.Context, id int) (Event, error) {
	row := r.db.QueryRow(ctx, selectEvent+` WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, ErrEventNotFound
		}
		err := fmt.Errorf("could not query event %d: %w", id, err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *EventRepoImpl) GetAllEvents(ctx context.Context) ([]Event, error) {
	rows, err := r.db.Query(ctx, selectEvent+` ORDER BY date, id`)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	var price string
	err := row.Scan(
		&event.Id,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.Category,
		&price,
		&event.ImageUrl,
		&event.Organizer,
		&event.Attendees,
		&event.CreatedAt,
	)
	if err != nil {
		return Event{}, err
	}
	event.Price, err = NormalizePrice(price)
	if err != nil {
		return Event{}, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	return event, nil
}
