package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/utils"
)

// AccountRepo persists accounts and their balances. Balance mutations are
// tx-scoped: the debit of a buyer, the credit of a seller and the fee
// accrual all happen inside the one transaction that owns the operation.
type AccountRepo struct{ DB *sql.DB }

// NewAccountRepo returns a repo bound to the given database.
func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = `id, email, password_hash, role, balance_units, is_active, created_at, updated_at`

// Create inserts an account and returns its id.
func (r *AccountRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.BalanceUnits, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches an account by id. ErrNotFound when absent.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.BalanceUnits, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// GetTx reads an account inside tx, optionally locking the row.
func (r *AccountRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (model.Account, error) {
	q := "SELECT " + accountColumns + " FROM accounts WHERE id=?"
	if forUpdate {
		q += " FOR UPDATE"
	}
	var a model.Account
	err := tx.QueryRowContext(ctx, q, id).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.BalanceUnits, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// CreditTx adds delta base units to the account's balance.
func (r *AccountRepo) CreditTx(ctx context.Context, tx *sql.Tx, id uint64, delta uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance_units = balance_units + ? WHERE id = ?", delta, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DebitTx subtracts delta base units from the account's balance. The
// conditional update makes the debit atomic: a balance shorter than delta
// affects zero rows and the operation aborts with ErrInsufficientBalance.
func (r *AccountRepo) DebitTx(ctx context.Context, tx *sql.Tx, id uint64, delta uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE accounts SET balance_units = balance_units - ? WHERE id = ? AND balance_units >= ?",
		delta, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientBalance
	}
	return nil
}
