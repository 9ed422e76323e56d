package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Fee pools. The mint pool belongs to the ticket registry, the listing
// pool to the marketplace; each carries its flat fee and the revenue
// accrued so far.
const (
	PoolMint    = "mint"
	PoolListing = "listing"
)

// FeePool is one row of the fee_pools table.
type FeePool struct {
	Pool         string
	FeeUnits     uint64
	AccruedUnits uint64
}

// FeeRepo persists protocol fee configuration and accrued revenue. Fees
// are global administrator-owned state, mutated only through admin-gated
// operations.
type FeeRepo struct {
	db *sql.DB
}

// NewFeeRepo returns a new FeeRepo bound to the given database.
func NewFeeRepo(db *sql.DB) *FeeRepo { return &FeeRepo{db: db} }

// Fee returns the current flat fee for a pool outside any transaction.
func (r *FeeRepo) Fee(ctx context.Context, pool string) (uint64, error) {
	var fee uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT fee_units FROM fee_pools WHERE pool = ?`, pool).Scan(&fee)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return fee, err
}

// GetTx reads a pool inside tx with its row locked, so fee checks and
// accruals within one operation see a consistent fee.
func (r *FeeRepo) GetTx(ctx context.Context, tx *sql.Tx, pool string) (FeePool, error) {
	var p FeePool
	err := tx.QueryRowContext(ctx,
		`SELECT pool, fee_units, accrued_units FROM fee_pools WHERE pool = ? FOR UPDATE`, pool).
		Scan(&p.Pool, &p.FeeUnits, &p.AccruedUnits)
	if errors.Is(err, sql.ErrNoRows) {
		return FeePool{}, ErrNotFound
	}
	return p, err
}

// SetFeeTx updates the flat fee for a pool.
func (r *FeeRepo) SetFeeTx(ctx context.Context, tx *sql.Tx, pool string, fee uint64) error {
	_, err := tx.ExecContext(ctx, `UPDATE fee_pools SET fee_units = ? WHERE pool = ?`, fee, pool)
	return err
}

// AccrueTx adds retained payment to a pool's revenue.
func (r *FeeRepo) AccrueTx(ctx context.Context, tx *sql.Tx, pool string, amount uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE fee_pools SET accrued_units = accrued_units + ? WHERE pool = ?`, amount, pool)
	return err
}

// DrainTx zeroes a pool's accrued revenue and returns the amount that was
// withdrawn. Used by the administrator withdraw operation; the caller
// credits the returned amount to the admin account in the same tx.
func (r *FeeRepo) DrainTx(ctx context.Context, tx *sql.Tx, pool string) (uint64, error) {
	p, err := r.GetTx(ctx, tx, pool)
	if err != nil {
		return 0, err
	}
	if p.AccruedUnits == 0 {
		return 0, nil
	}
	_, err = tx.ExecContext(ctx, `UPDATE fee_pools SET accrued_units = 0 WHERE pool = ?`, pool)
	if err != nil {
		return 0, err
	}
	return p.AccruedUnits, nil
}
