// Package registry implements the three ledger-backed registries of the
// ticketing system: the event registry, the ticket registry and the
// marketplace. Every state transition executes inside exactly one database
// transaction obtained from a TxRunner, so an operation either commits all
// of its effects or none of them; row locks taken on the way serialize
// conflicting operations. The stores below are satisfied by the SQL
// repositories and mocked in tests.
package registry

import (
	"context"
	"database/sql"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

// MaxBatchSize bounds batch mint and batch list operations.
const MaxBatchSize = 50

// EventStore is the persistence surface the registries need for events.
type EventStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, ev *model.Event) error
	Get(ctx context.Context, id uint64) (model.Event, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (model.Event, error)
	UpdateTx(ctx context.Context, tx *sql.Tx, ev model.Event) error
	SetInactiveTx(ctx context.Context, tx *sql.Tx, id uint64) error
	ActiveIDs(ctx context.Context) ([]uint64, error)
	ListByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error)
}

// TicketStore is the persistence surface for tickets and approvals.
type TicketStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error
	Get(ctx context.Context, tokenID uint64) (model.Ticket, error)
	GetTx(ctx context.Context, tx *sql.Tx, tokenID uint64, forUpdate bool) (model.Ticket, error)
	SetOwnerTx(ctx context.Context, tx *sql.Tx, tokenID, newOwner uint64) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Ticket, error)
	ApproveTx(ctx context.Context, tx *sql.Tx, tokenID, operatorID uint64) error
	ClearApprovalTx(ctx context.Context, tx *sql.Tx, tokenID uint64) error
	ApprovedOperatorTx(ctx context.Context, tx *sql.Tx, tokenID uint64) (uint64, bool, error)
	SetOperatorApprovalTx(ctx context.Context, tx *sql.Tx, ownerID, operatorID uint64, approved bool) error
	HasOperatorApprovalTx(ctx context.Context, tx *sql.Tx, ownerID, operatorID uint64) (bool, error)
}

// ListingStore is the persistence surface for marketplace listings.
type ListingStore interface {
	InsertTx(ctx context.Context, tx *sql.Tx, l *model.Listing) error
	GetTx(ctx context.Context, tx *sql.Tx, tokenID uint64, forUpdate bool) (model.Listing, error)
	ExistsTx(ctx context.Context, tx *sql.Tx, tokenID uint64) (bool, error)
	DeleteTx(ctx context.Context, tx *sql.Tx, tokenID uint64) error
	ListAll(ctx context.Context) ([]model.Listing, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]model.Listing, error)
}

// AccountStore is the subset of account persistence the registries use:
// identity lookups and balance movement.
type AccountStore interface {
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	GetTx(ctx context.Context, tx *sql.Tx, id uint64, forUpdate bool) (model.Account, error)
	CreditTx(ctx context.Context, tx *sql.Tx, id uint64, delta uint64) error
	DebitTx(ctx context.Context, tx *sql.Tx, id uint64, delta uint64) error
}

// FeeStore is the persistence surface for protocol fees and revenue.
type FeeStore interface {
	Fee(ctx context.Context, pool string) (uint64, error)
	GetTx(ctx context.Context, tx *sql.Tx, pool string) (repository.FeePool, error)
	SetFeeTx(ctx context.Context, tx *sql.Tx, pool string, fee uint64) error
	AccrueTx(ctx context.Context, tx *sql.Tx, pool string, amount uint64) error
	DrainTx(ctx context.Context, tx *sql.Tx, pool string) (uint64, error)
}

// requireAdmin verifies the caller holds the administrator capability.
func requireAdmin(ctx context.Context, accounts AccountStore, callerID uint64) error {
	a, err := accounts.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	if a.Role != model.RoleAdmin {
		return repository.ErrUnauthorized
	}
	return nil
}
