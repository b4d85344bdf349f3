package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const foreignKeyViolation = "23503"

type Repository interface {
	// UpsertRsvp stores rsvp, or replaces the status of the existing RSVP with the same
	// (EventId, UserId). It reports whether a new row was created and keeps the event's
	// attendee count equal to its number of "going" RSVPs.
	UpsertRsvp(ctx context.Context, rsvp Rsvp) (Rsvp, bool, error)
	GetRsvpsByEvent(ctx context.Context, eventId int) ([]Rsvp, error)
	GetRsvpByEventAndUser(ctx context.Context, eventId int, userId string) (Rsvp, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) UpsertRsvp(ctx context.Context, rsvp Rsvp) (Rsvp, bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return Rsvp{}, false, err
	}
	defer tx.Rollback(ctx)

	// Serializes writers of the same event so the attendee recount sees every committed RSVP.
	var lockedId int
	err = tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, rsvp.EventId).Scan(&lockedId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rsvp{}, false, ErrUnknownEvent
		}
		err := fmt.Errorf("could not lock event %d: %w", rsvp.EventId, err)
		log.Error(err)
		return Rsvp{}, false, err
	}

	query := `INSERT INTO rsvps (event_id, user_id, status, created_at) VALUES ($1, $2, $3, $4)
				ON CONFLICT (event_id, user_id) DO UPDATE SET status = EXCLUDED.status
				RETURNING id, event_id, user_id, status, created_at, (xmax = 0) AS inserted`

	var stored Rsvp
	var inserted bool
	err = tx.QueryRow(ctx, query, rsvp.EventId, rsvp.UserId, rsvp.Status, rsvp.CreatedAt).
		Scan(&stored.Id, &stored.EventId, &stored.UserId, &stored.Status, &stored.CreatedAt, &inserted)
	if err != nil {
		if refErr := referenceError(err); refErr != nil {
			return Rsvp{}, false, refErr
		}
		err := fmt.Errorf("could not upsert rsvp: %w", err)
		log.Error(err)
		return Rsvp{}, false, err
	}

	recount := `UPDATE events SET attendees =
					(SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = $2)
				WHERE id = $1`
	if _, err := tx.Exec(ctx, recount, rsvp.EventId, Going); err != nil {
		err := fmt.Errorf("could not update attendees of event %d: %w", rsvp.EventId, err)
		log.Error(err)
		return Rsvp{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Rsvp{}, false, fmt.Errorf("could not commit transaction: %w", err)
	}
	return stored, inserted, nil
}

func referenceError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "user") {
		return ErrUnknownUser
	}
	return ErrUnknownEvent
}

func (r *RepositoryImpl) GetRsvpsByEvent(ctx context.Context, eventId int) ([]Rsvp, error) {
	query := `SELECT id, event_id, user_id, status, created_at FROM rsvps WHERE event_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, eventId)
	if err != nil {
		err := fmt.Errorf("could not query rsvps: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	rsvps := make([]Rsvp, 0)
	for rows.Next() {
		var rsvp Rsvp
		if err := rows.Scan(&rsvp.Id, &rsvp.EventId, &rsvp.UserId, &rsvp.Status, &rsvp.CreatedAt); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return rsvps, nil
}

func (r *RepositoryImpl) GetRsvpByEventAndUser(ctx context.Context, eventId int, userId string) (Rsvp, error) {
	query := `SELECT id, event_id, user_id, status, created_at FROM rsvps WHERE event_id = $1 AND user_id = $2`
	var rsvp Rsvp
	err := r.db.QueryRow(ctx, query, eventId, userId).
		Scan(&rsvp.Id, &rsvp.EventId, &rsvp.UserId, &rsvp.Status, &rsvp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rsvp{}, ErrRsvpNotFound
		}
		err := fmt.Errorf("could not query rsvp: %w", err)
		log.Error(err)
		return Rsvp{}, err
	}
	return rsvp, nil
}
