package registry

import (
	"context"
	"database/sql"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

// AccountRegistry exposes the account operations that sit outside the
// auth flow: balance inspection and administrator-driven funding.
type AccountRegistry struct {
	runner   repository.TxRunner
	accounts AccountStore
}

func NewAccountRegistry(runner repository.TxRunner, accounts AccountStore) *AccountRegistry {
	return &AccountRegistry{runner: runner, accounts: accounts}
}

// Get returns the account record for an id.
func (r *AccountRegistry) Get(ctx context.Context, id uint64) (model.Account, error) {
	return r.accounts.GetByID(ctx, id)
}

// Credit adds funds to a target account. Administrator only; a zero
// amount is rejected.
func (r *AccountRegistry) Credit(ctx context.Context, callerID, targetID, amount uint64) error {
	if amount == 0 {
		return repository.ErrInvalidInput
	}
	if err := requireAdmin(ctx, r.accounts, callerID); err != nil {
		return err
	}
	return r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return r.accounts.CreditTx(ctx, tx, targetID, amount)
	})
}
