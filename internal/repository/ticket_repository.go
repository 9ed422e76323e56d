package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blockticket/blockticket/internal/model"
)

// TicketRepo persists tickets and their transfer approvals. A ticket row is
// never deleted; ownership and approvals are the only mutable parts. The
// approval tables form the explicit permission model consulted by transfer
// logic: ticket_approvals holds the single delegated operator per token,
// operator_approvals the blanket owner->operator grants.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `token_id, event_id, event_name, event_date, event_type, seating_info, owner_id, created_at`

// InsertTx mints one ticket row and populates the generated token id.
// Token ids are sequential by AUTO_INCREMENT.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (event_id, event_name, event_date, event_type, seating_info, owner_id)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.EventID, t.EventName, t.EventDate, uint8(t.EventType), t.SeatingInfo, t.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.TokenID = uint64(id)
	return nil
}

// Get returns a ticket by token id. ErrNotFound when never minted.
func (r *TicketRepo) Get(ctx context.Context, tokenID uint64) (model.Ticket, error) {
	var t model.Ticket
	var typ uint8
	err := r.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE token_id = ?`, tokenID).
		Scan(&t.TokenID, &t.EventID, &t.EventName, &t.EventDate, &typ, &t.SeatingInfo, &t.OwnerID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, ErrNotFound
	}
	t.EventType = model.EventType(typ)
	return t, err
}

// GetTx reads a ticket inside tx, locking the row when forUpdate is set so
// that ownership checks stay valid until commit.
func (r *TicketRepo) GetTx(ctx context.Context, tx *sql.Tx, tokenID uint64, forUpdate bool) (model.Ticket, error) {
	q := `SELECT ` + ticketColumns + ` FROM tickets WHERE token_id = ?`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var t model.Ticket
	var typ uint8
	err := tx.QueryRowContext(ctx, q, tokenID).
		Scan(&t.TokenID, &t.EventID, &t.EventName, &t.EventDate, &typ, &t.SeatingInfo, &t.OwnerID, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Ticket{}, ErrNotFound
	}
	t.EventType = model.EventType(typ)
	return t, err
}

// SetOwnerTx moves ownership of a ticket. Approval cleanup is a separate
// call so the service layer controls the exact transfer semantics.
func (r *TicketRepo) SetOwnerTx(ctx context.Context, tx *sql.Tx, tokenID, newOwner uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE tickets SET owner_id = ? WHERE token_id = ?`, newOwner, tokenID)
	return err
}

// ListByOwner returns all tickets currently owned by the account, oldest
// first. Tickets for past or cancelled events are included; they are a
// historical record.
func (r *TicketRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE owner_id = ? ORDER BY token_id ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		var typ uint8
		if err := rows.Scan(&t.TokenID, &t.EventID, &t.EventName, &t.EventDate, &typ,
			&t.SeatingInfo, &t.OwnerID, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.EventType = model.EventType(typ)
		out = append(out, t)
	}
	return out, rows.Err()
}

// ApproveTx sets or replaces the delegated operator for a token.
func (r *TicketRepo) ApproveTx(ctx context.Context, tx *sql.Tx, tokenID, operatorID uint64) error {
	const q = `INSERT INTO ticket_approvals (token_id, operator_id) VALUES (?, ?)
	           ON DUPLICATE KEY UPDATE operator_id = VALUES(operator_id)`
	_, err := tx.ExecContext(ctx, q, tokenID, operatorID)
	return err
}

// ClearApprovalTx removes the per-token approval; a no-op when none exists.
func (r *TicketRepo) ClearApprovalTx(ctx context.Context, tx *sql.Tx, tokenID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM ticket_approvals WHERE token_id = ?`, tokenID)
	return err
}

// ApprovedOperatorTx returns the delegated operator for a token, if any.
func (r *TicketRepo) ApprovedOperatorTx(ctx context.Context, tx *sql.Tx, tokenID uint64) (uint64, bool, error) {
	var op uint64
	err := tx.QueryRowContext(ctx,
		`SELECT operator_id FROM ticket_approvals WHERE token_id = ?`, tokenID).Scan(&op)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return op, true, nil
}

// SetOperatorApprovalTx grants or revokes a blanket approval from owner to
// operator across all of the owner's tickets.
func (r *TicketRepo) SetOperatorApprovalTx(ctx context.Context, tx *sql.Tx, ownerID, operatorID uint64, approved bool) error {
	if approved {
		const q = `INSERT INTO operator_approvals (owner_id, operator_id) VALUES (?, ?)
		           ON DUPLICATE KEY UPDATE operator_id = operator_id`
		_, err := tx.ExecContext(ctx, q, ownerID, operatorID)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`DELETE FROM operator_approvals WHERE owner_id = ? AND operator_id = ?`, ownerID, operatorID)
	return err
}

// HasOperatorApprovalTx reports whether owner has granted operator a
// blanket approval.
func (r *TicketRepo) HasOperatorApprovalTx(ctx context.Context, tx *sql.Tx, ownerID, operatorID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM operator_approvals WHERE owner_id = ? AND operator_id = ?`, ownerID, operatorID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
