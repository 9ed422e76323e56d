package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blockticket/blockticket/internal/model"
)

// EventRepo provides persistence for the event registry. Mutations take an
// open *sql.Tx so that the service layer can compose them with ticket and
// balance changes inside a single atomic transaction.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, name, event_date, venue, capacity, is_active, organizer_id, created_at, updated_at`

func scanEvent(row *sql.Row, ev *model.Event) error {
	return row.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Venue, &ev.Capacity,
		&ev.IsActive, &ev.OrganizerID, &ev.CreatedAt, &ev.UpdatedAt)
}

// CreateTx inserts a new event and populates the generated id on ev. Ids
// come from AUTO_INCREMENT and are therefore monotonically assigned and
// never reused, matching the registry contract.
func (r *EventRepo) CreateTx(ctx context.Context, tx *sql.Tx, ev *model.Event) error {
	const q = `INSERT INTO events (name, event_date, venue, capacity, is_active, organizer_id)
	           VALUES (?, ?, ?, ?, 1, ?)`
	res, err := tx.ExecContext(ctx, q, ev.Name, ev.Date, ev.Venue, ev.Capacity, ev.OrganizerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	ev.IsActive = true
	return nil
}

// Get returns an event by id outside of any transaction. ErrNotFound is
// returned when the id was never assigned.
func (r *EventRepo) Get(ctx context.Context, id uint64) (model.Event, error) {
	var ev model.Event
	err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id), &ev)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return ev, err
}

// GetTx reads an event inside tx. With forUpdate set the row is locked for
// the remainder of the transaction, serializing concurrent operations that
// depend on the event's active flag.
func (r *EventRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var ev model.Event
	err := scanEvent(tx.QueryRowContext(ctx, q, id), &ev)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrNotFound
	}
	return ev, err
}

// UpdateTx rewrites the mutable fields of an event. The caller is expected
// to have verified organizer and active state on a locked row first.
func (r *EventRepo) UpdateTx(ctx context.Context, tx *sql.Tx, ev model.Event) error {
	const q = `UPDATE events SET name = ?, event_date = ?, venue = ?, capacity = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, ev.Name, ev.Date, ev.Venue, ev.Capacity, ev.ID)
	return err
}

// SetInactiveTx flips is_active to false. The flag never reverts.
func (r *EventRepo) SetInactiveTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE events SET is_active = 0 WHERE id = ?`, id)
	return err
}

// ActiveIDs returns the ids of all active events in ascending order.
func (r *EventRepo) ActiveIDs(ctx context.Context) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM events WHERE is_active = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByOrganizer returns every event created by the given account,
// newest first. Cancelled events are included so organizers can see their
// full history.
func (r *EventRepo) ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = ? ORDER BY id DESC`, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.Venue, &ev.Capacity,
			&ev.IsActive, &ev.OrganizerID, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
