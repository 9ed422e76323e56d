package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blockticket/blockticket/internal/model"
)

// ListingRepo persists marketplace listings. Row presence encodes the
// Listed state: inserting creates the listing, deleting returns the token
// to Unlisted (on purchase or cancellation). The seq column gives browse
// queries stable insertion order.
type ListingRepo struct {
	db *sql.DB
}

// NewListingRepo returns a new ListingRepo bound to the given database.
func NewListingRepo(db *sql.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingColumns = `token_id, seq, price_units, seller_id, invitee_id, event_id, event_type, created_at`

func scanListingRows(rows *sql.Rows) ([]model.Listing, error) {
	out := make([]model.Listing, 0)
	for rows.Next() {
		var l model.Listing
		var invitee sql.NullInt64
		var typ uint8
		if err := rows.Scan(&l.TokenID, &l.Seq, &l.PriceUnits, &l.SellerID,
			&invitee, &l.EventID, &typ, &l.CreatedAt); err != nil {
			return nil, err
		}
		if invitee.Valid {
			v := uint64(invitee.Int64)
			l.InviteeID = &v
		}
		l.EventType = model.EventType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}

// InsertTx creates a listing for a token. The unique primary key on
// token_id makes a double-list fail at the database even if the service
// check raced, keeping the one-listing-per-token invariant.
func (r *ListingRepo) InsertTx(ctx context.Context, tx *sql.Tx, l *model.Listing) error {
	const q = `INSERT INTO listings (token_id, price_units, seller_id, invitee_id, event_id, event_type)
	           VALUES (?, ?, ?, ?, ?, ?)`
	var invitee interface{}
	if l.InviteeID != nil {
		invitee = *l.InviteeID
	}
	res, err := tx.ExecContext(ctx, q, l.TokenID, l.PriceUnits, l.SellerID, invitee, l.EventID, uint8(l.EventType))
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.Seq = uint64(seq)
	return nil
}

// GetTx reads the active listing for a token inside tx. ErrNotListed is
// returned when the token has no listing. forUpdate locks the row so a
// purchase and a cancellation cannot both consume it.
func (r *ListingRepo) GetTx(ctx context.Context, tx *sql.Tx, tokenID uint64, forUpdate bool) (model.Listing, error) {
	q := `SELECT ` + listingColumns + ` FROM listings WHERE token_id = ?`
	if forUpdate {
		q += ` FOR UPDATE`
	}
	var l model.Listing
	var invitee sql.NullInt64
	var typ uint8
	err := tx.QueryRowContext(ctx, q, tokenID).
		Scan(&l.TokenID, &l.Seq, &l.PriceUnits, &l.SellerID, &invitee, &l.EventID, &typ, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, ErrNotListed
	}
	if err != nil {
		return model.Listing{}, err
	}
	if invitee.Valid {
		v := uint64(invitee.Int64)
		l.InviteeID = &v
	}
	l.EventType = model.EventType(typ)
	return l, nil
}

// ExistsTx reports whether a token currently has an active listing.
func (r *ListingRepo) ExistsTx(ctx context.Context, tx *sql.Tx, tokenID uint64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE token_id = ?`, tokenID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteTx clears a listing, returning the token to the Unlisted state.
func (r *ListingRepo) DeleteTx(ctx context.Context, tx *sql.Tx, tokenID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE token_id = ?`, tokenID)
	return err
}

// ListAll returns every active listing in insertion order.
func (r *ListingRepo) ListAll(ctx context.Context) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListingRows(rows)
}

// ListBySeller returns the seller's active listings in insertion order.
func (r *ListingRepo) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE seller_id = ? ORDER BY seq ASC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListingRows(rows)
}
