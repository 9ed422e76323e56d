package registry

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/blockticket/blockticket/internal/metrics"
	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

// MintInput carries the fields of a single-ticket mint. Event name and
// date are caller-supplied snapshots stored verbatim on the ticket, as in
// the original registry; the event reference itself is what gets
// validated.
type MintInput struct {
	EventID      uint64
	EventName    string
	EventDate    int64
	EventType    model.EventType
	SeatingInfo  string
	PaymentUnits uint64
}

// TicketRegistry mints tickets against active events and manages ownership
// and transfer approvals. The flat mint fee is retained in full: any
// payment beyond the fee is protocol revenue, not change.
type TicketRegistry struct {
	runner   repository.TxRunner
	tickets  TicketStore
	events   EventStore
	accounts AccountStore
	fees     FeeStore
}

// NewTicketRegistry wires the registry to its stores.
func NewTicketRegistry(runner repository.TxRunner, tickets TicketStore, events EventStore, accounts AccountStore, fees FeeStore) *TicketRegistry {
	return &TicketRegistry{runner: runner, tickets: tickets, events: events, accounts: accounts, fees: fees}
}

// MintFee returns the current flat mint fee in base units.
func (r *TicketRegistry) MintFee(ctx context.Context) (uint64, error) {
	return r.fees.Fee(ctx, repository.PoolMint)
}

// Mint creates one ticket owned by the caller. The referenced event must
// exist and be active, and the attached payment must cover the mint fee;
// the payment is debited from the caller and retained in full.
func (r *TicketRegistry) Mint(ctx context.Context, callerID uint64, in MintInput) (model.Ticket, error) {
	if !in.EventType.Valid() || strings.TrimSpace(in.SeatingInfo) == "" {
		return model.Ticket{}, repository.ErrInvalidInput
	}
	var minted model.Ticket
	err := r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := r.mintOneTx(ctx, tx, callerID, in, in.PaymentUnits)
		if err != nil {
			return err
		}
		minted = t
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	metrics.TicketsMinted.Inc()
	return minted, nil
}

// MintBatch creates one ticket per seating entry, all or nothing. The
// batch must contain between 1 and MaxBatchSize seats and the payment must
// cover fee times count.
func (r *TicketRegistry) MintBatch(ctx context.Context, callerID uint64, in MintInput, seatingInfoList []string) ([]model.Ticket, error) {
	n := len(seatingInfoList)
	if n == 0 || n > MaxBatchSize {
		return nil, repository.ErrInvalidBatchSize
	}
	if !in.EventType.Valid() {
		return nil, repository.ErrInvalidInput
	}
	for _, seat := range seatingInfoList {
		if strings.TrimSpace(seat) == "" {
			return nil, repository.ErrInvalidInput
		}
	}
	var minted []model.Ticket
	err := r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		ev, err := r.events.GetTx(ctx, tx, in.EventID, true)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return repository.ErrInvalidEvent
			}
			return err
		}
		if !ev.IsActive {
			return repository.ErrInvalidEvent
		}
		pool, err := r.fees.GetTx(ctx, tx, repository.PoolMint)
		if err != nil {
			return err
		}
		if in.PaymentUnits < pool.FeeUnits*uint64(n) {
			return repository.ErrInsufficientPayment
		}
		if err := r.accounts.DebitTx(ctx, tx, callerID, in.PaymentUnits); err != nil {
			return err
		}
		if err := r.fees.AccrueTx(ctx, tx, repository.PoolMint, in.PaymentUnits); err != nil {
			return err
		}
		minted = make([]model.Ticket, 0, n)
		for _, seat := range seatingInfoList {
			t := model.Ticket{
				EventID:     in.EventID,
				EventName:   in.EventName,
				EventDate:   in.EventDate,
				EventType:   in.EventType,
				SeatingInfo: seat,
				OwnerID:     callerID,
			}
			if err := r.tickets.InsertTx(ctx, tx, &t); err != nil {
				return err
			}
			minted = append(minted, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TicketsMinted.Add(float64(n))
	return minted, nil
}

// mintOneTx performs the shared single-mint path: event check, fee check,
// debit, accrue, insert.
func (r *TicketRegistry) mintOneTx(ctx context.Context, tx *sql.Tx, callerID uint64, in MintInput, payment uint64) (model.Ticket, error) {
	ev, err := r.events.GetTx(ctx, tx, in.EventID, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Ticket{}, repository.ErrInvalidEvent
		}
		return model.Ticket{}, err
	}
	if !ev.IsActive {
		return model.Ticket{}, repository.ErrInvalidEvent
	}
	pool, err := r.fees.GetTx(ctx, tx, repository.PoolMint)
	if err != nil {
		return model.Ticket{}, err
	}
	if payment < pool.FeeUnits {
		return model.Ticket{}, repository.ErrInsufficientPayment
	}
	if err := r.accounts.DebitTx(ctx, tx, callerID, payment); err != nil {
		return model.Ticket{}, err
	}
	if err := r.fees.AccrueTx(ctx, tx, repository.PoolMint, payment); err != nil {
		return model.Ticket{}, err
	}
	t := model.Ticket{
		EventID:     in.EventID,
		EventName:   in.EventName,
		EventDate:   in.EventDate,
		EventType:   in.EventType,
		SeatingInfo: strings.TrimSpace(in.SeatingInfo),
		OwnerID:     callerID,
	}
	if err := r.tickets.InsertTx(ctx, tx, &t); err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}

// Details returns the ticket record for a token id.
func (r *TicketRegistry) Details(ctx context.Context, tokenID uint64) (model.Ticket, error) {
	return r.tickets.Get(ctx, tokenID)
}

// OwnedBy returns all tickets owned by an account.
func (r *TicketRegistry) OwnedBy(ctx context.Context, ownerID uint64) ([]model.Ticket, error) {
	return r.tickets.ListByOwner(ctx, ownerID)
}

// Transfer moves a ticket to another account. The caller must be the owner
// or hold an approval (per-token or blanket). The per-token approval is
// cleared on transfer.
func (r *TicketRegistry) Transfer(ctx context.Context, callerID, tokenID, to uint64) error {
	return r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := r.tickets.GetTx(ctx, tx, tokenID, true)
		if err != nil {
			return err
		}
		ok, err := r.callerMayMoveTx(ctx, tx, callerID, t)
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrUnauthorized
		}
		if _, err := r.accounts.GetTx(ctx, tx, to, false); err != nil {
			return err
		}
		if err := r.tickets.SetOwnerTx(ctx, tx, tokenID, to); err != nil {
			return err
		}
		return r.tickets.ClearApprovalTx(ctx, tx, tokenID)
	})
}

// callerMayMoveTx reports whether caller is the owner or an approved
// operator for the ticket.
func (r *TicketRegistry) callerMayMoveTx(ctx context.Context, tx *sql.Tx, callerID uint64, t model.Ticket) (bool, error) {
	if t.OwnerID == callerID {
		return true, nil
	}
	op, found, err := r.tickets.ApprovedOperatorTx(ctx, tx, t.TokenID)
	if err != nil {
		return false, err
	}
	if found && op == callerID {
		return true, nil
	}
	return r.tickets.HasOperatorApprovalTx(ctx, tx, t.OwnerID, callerID)
}

// Approve delegates transfer rights on one token to an operator. Only the
// current owner may approve.
func (r *TicketRegistry) Approve(ctx context.Context, callerID, tokenID, operatorID uint64) error {
	return r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		t, err := r.tickets.GetTx(ctx, tx, tokenID, true)
		if err != nil {
			return err
		}
		if t.OwnerID != callerID {
			return repository.ErrUnauthorized
		}
		if _, err := r.accounts.GetTx(ctx, tx, operatorID, false); err != nil {
			return err
		}
		return r.tickets.ApproveTx(ctx, tx, tokenID, operatorID)
	})
}

// SetApprovalForAll grants or revokes blanket transfer rights over all of
// the caller's tickets.
func (r *TicketRegistry) SetApprovalForAll(ctx context.Context, callerID, operatorID uint64, approved bool) error {
	return r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if approved {
			if _, err := r.accounts.GetTx(ctx, tx, operatorID, false); err != nil {
				return err
			}
		}
		return r.tickets.SetOperatorApprovalTx(ctx, tx, callerID, operatorID, approved)
	})
}

// SetMintFee updates the flat mint fee. Administrator only.
func (r *TicketRegistry) SetMintFee(ctx context.Context, callerID, fee uint64) error {
	if err := requireAdmin(ctx, r.accounts, callerID); err != nil {
		return err
	}
	return r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return r.fees.SetFeeTx(ctx, tx, repository.PoolMint, fee)
	})
}

// WithdrawMintFees moves the accrued mint revenue to the administrator's
// account and returns the amount withdrawn.
func (r *TicketRegistry) WithdrawMintFees(ctx context.Context, callerID uint64) (uint64, error) {
	if err := requireAdmin(ctx, r.accounts, callerID); err != nil {
		return 0, err
	}
	var amount uint64
	err := r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		drained, err := r.fees.DrainTx(ctx, tx, repository.PoolMint)
		if err != nil {
			return err
		}
		amount = drained
		if drained == 0 {
			return nil
		}
		return r.accounts.CreditTx(ctx, tx, callerID, drained)
	})
	return amount, err
}
