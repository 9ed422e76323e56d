package registry

import (
	"context"
	"database/sql"
	"log"

	"github.com/blockticket/blockticket/internal/metrics"
	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

// ListInput carries the fields of a single listing creation.
type ListInput struct {
	TokenID      uint64
	PriceUnits   uint64
	InviteeID    *uint64
	PaymentUnits uint64
}

// Sale describes a completed purchase. It is handed to the publisher after
// commit so downstream consumers (sale log, notification mail) never see a
// sale that was rolled back.
type Sale struct {
	Ticket      model.Ticket
	PriceUnits  uint64
	SellerID    uint64
	SellerEmail string
	BuyerID     uint64
	BuyerEmail  string
}

// SalePublisher receives committed sales. Publishing is best-effort: a
// broker failure must never abort or undo the purchase.
type SalePublisher interface {
	PublishTicketSold(ctx context.Context, sale Sale) error
}

// ListingsSnapshot is the parallel-array view of all active listings, in
// listing-creation order. The shape mirrors the original registry's
// getAllListedTickets return value.
type ListingsSnapshot struct {
	TokenIDs   []uint64          `json:"token_ids"`
	Prices     []uint64          `json:"prices"`
	Sellers    []uint64          `json:"sellers"`
	EventTypes []model.EventType `json:"event_types"`
	EventIDs   []uint64          `json:"event_ids"`
}

// Marketplace implements the listing/purchase state machine. Per token the
// states are Unlisted -> Listed -> {sold, cancelled} -> Unlisted; the
// listing row's existence is the Listed state. The marketplace acts under
// a dedicated operator account: sellers must have approved that account
// (per token or blanket) before listing, which is the transfer permission
// consumed when a sale moves the ticket.
type Marketplace struct {
	runner          repository.TxRunner
	listings        ListingStore
	tickets         TicketStore
	events          EventStore
	accounts        AccountStore
	fees            FeeStore
	marketAccountID uint64
	publisher       SalePublisher
}

// NewMarketplace wires the marketplace to its stores. marketAccountID is
// the system account sellers grant transfer approval to; publisher may be
// nil to disable sale events.
func NewMarketplace(runner repository.TxRunner, listings ListingStore, tickets TicketStore, events EventStore,
	accounts AccountStore, fees FeeStore, marketAccountID uint64, publisher SalePublisher) *Marketplace {
	return &Marketplace{
		runner:          runner,
		listings:        listings,
		tickets:         tickets,
		events:          events,
		accounts:        accounts,
		fees:            fees,
		marketAccountID: marketAccountID,
		publisher:       publisher,
	}
}

// ListingFee returns the current flat listing fee in base units.
func (m *Marketplace) ListingFee(ctx context.Context) (uint64, error) {
	return m.fees.Fee(ctx, repository.PoolListing)
}

// List creates a listing for a token the caller owns. The whole payment is
// retained as listing-fee revenue, matching the flat-fee model of minting.
func (m *Marketplace) List(ctx context.Context, callerID uint64, in ListInput) (model.Listing, error) {
	var created model.Listing
	err := m.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		pool, err := m.fees.GetTx(ctx, tx, repository.PoolListing)
		if err != nil {
			return err
		}
		if in.PaymentUnits < pool.FeeUnits {
			return repository.ErrInsufficientPayment
		}
		l, err := m.listOneTx(ctx, tx, callerID, in)
		if err != nil {
			return err
		}
		if err := m.accounts.DebitTx(ctx, tx, callerID, in.PaymentUnits); err != nil {
			return err
		}
		if err := m.fees.AccrueTx(ctx, tx, repository.PoolListing, in.PaymentUnits); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return model.Listing{}, err
	}
	metrics.ListingsCreated.Inc()
	return created, nil
}

// ListBatch lists several tokens atomically at their respective prices.
// The fee scales with the batch size: payment must cover listing fee times
// count. Any per-element failure aborts the whole batch.
func (m *Marketplace) ListBatch(ctx context.Context, callerID uint64, tokenIDs []uint64, prices []uint64, payment uint64) ([]model.Listing, error) {
	n := len(tokenIDs)
	if n == 0 || n > MaxBatchSize {
		return nil, repository.ErrInvalidBatchSize
	}
	if len(prices) != n {
		return nil, repository.ErrInvalidInput
	}
	var created []model.Listing
	err := m.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		pool, err := m.fees.GetTx(ctx, tx, repository.PoolListing)
		if err != nil {
			return err
		}
		if payment < pool.FeeUnits*uint64(n) {
			return repository.ErrInsufficientPayment
		}
		created = make([]model.Listing, 0, n)
		for i, tokenID := range tokenIDs {
			l, err := m.listOneTx(ctx, tx, callerID, ListInput{TokenID: tokenID, PriceUnits: prices[i]})
			if err != nil {
				return err
			}
			created = append(created, l)
		}
		if err := m.accounts.DebitTx(ctx, tx, callerID, payment); err != nil {
			return err
		}
		return m.fees.AccrueTx(ctx, tx, repository.PoolListing, payment)
	})
	if err != nil {
		return nil, err
	}
	metrics.ListingsCreated.Add(float64(n))
	return created, nil
}

// listOneTx checks every listing precondition for one token and inserts
// the listing row. Fee handling is left to the caller so batches debit
// once.
func (m *Marketplace) listOneTx(ctx context.Context, tx *sql.Tx, callerID uint64, in ListInput) (model.Listing, error) {
	if in.PriceUnits == 0 {
		return model.Listing{}, repository.ErrInvalidInput
	}
	t, err := m.tickets.GetTx(ctx, tx, in.TokenID, true)
	if err != nil {
		return model.Listing{}, err
	}
	if t.OwnerID != callerID {
		return model.Listing{}, repository.ErrUnauthorized
	}
	ev, err := m.events.GetTx(ctx, tx, t.EventID, false)
	if err != nil {
		return model.Listing{}, err
	}
	if !ev.IsActive {
		return model.Listing{}, repository.ErrEventNoLongerValid
	}
	approved, err := m.marketApprovedTx(ctx, tx, t)
	if err != nil {
		return model.Listing{}, err
	}
	if !approved {
		return model.Listing{}, repository.ErrNotApproved
	}
	exists, err := m.listings.ExistsTx(ctx, tx, in.TokenID)
	if err != nil {
		return model.Listing{}, err
	}
	if exists {
		return model.Listing{}, repository.ErrAlreadyListed
	}
	if in.InviteeID != nil {
		if _, err := m.accounts.GetTx(ctx, tx, *in.InviteeID, false); err != nil {
			return model.Listing{}, err
		}
	}
	l := model.Listing{
		TokenID:    in.TokenID,
		PriceUnits: in.PriceUnits,
		SellerID:   callerID,
		InviteeID:  in.InviteeID,
		EventID:    t.EventID,
		EventType:  t.EventType,
	}
	if err := m.listings.InsertTx(ctx, tx, &l); err != nil {
		return model.Listing{}, err
	}
	return l, nil
}

// marketApprovedTx reports whether the marketplace operator account holds
// a transfer approval for the ticket.
func (m *Marketplace) marketApprovedTx(ctx context.Context, tx *sql.Tx, t model.Ticket) (bool, error) {
	op, found, err := m.tickets.ApprovedOperatorTx(ctx, tx, t.TokenID)
	if err != nil {
		return false, err
	}
	if found && op == m.marketAccountID {
		return true, nil
	}
	return m.tickets.HasOperatorApprovalTx(ctx, tx, t.OwnerID, m.marketAccountID)
}

// Buy purchases a listed ticket. The buyer is debited exactly the listing
// price: any payment above the price stays with the buyer, the refund of
// the original contract. The seller is credited the full price; the
// listing fee was already retained at listing time.
func (m *Marketplace) Buy(ctx context.Context, callerID, tokenID, payment uint64) (Sale, error) {
	var sale Sale
	err := m.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		l, err := m.listings.GetTx(ctx, tx, tokenID, true)
		if err != nil {
			return err
		}
		if l.InviteeID != nil && *l.InviteeID != callerID {
			return repository.ErrUnauthorized
		}
		if l.SellerID == callerID {
			return repository.ErrInvalidInput
		}
		if payment < l.PriceUnits {
			return repository.ErrInsufficientPayment
		}
		ev, err := m.events.GetTx(ctx, tx, l.EventID, false)
		if err != nil {
			return err
		}
		if !ev.IsActive {
			return repository.ErrEventNoLongerValid
		}
		t, err := m.tickets.GetTx(ctx, tx, tokenID, true)
		if err != nil {
			return err
		}
		seller, err := m.accounts.GetTx(ctx, tx, l.SellerID, true)
		if err != nil {
			return err
		}
		buyer, err := m.accounts.GetTx(ctx, tx, callerID, true)
		if err != nil {
			return err
		}
		if err := m.accounts.DebitTx(ctx, tx, callerID, l.PriceUnits); err != nil {
			return err
		}
		if err := m.accounts.CreditTx(ctx, tx, l.SellerID, l.PriceUnits); err != nil {
			return err
		}
		if err := m.tickets.SetOwnerTx(ctx, tx, tokenID, callerID); err != nil {
			return err
		}
		if err := m.tickets.ClearApprovalTx(ctx, tx, tokenID); err != nil {
			return err
		}
		if err := m.listings.DeleteTx(ctx, tx, tokenID); err != nil {
			return err
		}
		t.OwnerID = callerID
		sale = Sale{
			Ticket:      t,
			PriceUnits:  l.PriceUnits,
			SellerID:    l.SellerID,
			SellerEmail: seller.Email,
			BuyerID:     callerID,
			BuyerEmail:  buyer.Email,
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	metrics.TicketsSold.Inc()
	if m.publisher != nil {
		if err := m.publisher.PublishTicketSold(ctx, sale); err != nil {
			log.Printf("marketplace: publish ticket.sold failed for token %d: %v", sale.Ticket.TokenID, err)
		}
	}
	return sale, nil
}

// CancelListing removes the caller's listing without moving ownership.
func (m *Marketplace) CancelListing(ctx context.Context, callerID, tokenID uint64) error {
	err := m.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		l, err := m.listings.GetTx(ctx, tx, tokenID, true)
		if err != nil {
			return err
		}
		if l.SellerID != callerID {
			return repository.ErrUnauthorized
		}
		return m.listings.DeleteTx(ctx, tx, tokenID)
	})
	if err != nil {
		return err
	}
	metrics.ListingsCancelled.Inc()
	return nil
}

// AllListings returns a snapshot of every active listing in creation
// order, as parallel sequences.
func (m *Marketplace) AllListings(ctx context.Context) (ListingsSnapshot, error) {
	ls, err := m.listings.ListAll(ctx)
	if err != nil {
		return ListingsSnapshot{}, err
	}
	snap := ListingsSnapshot{
		TokenIDs:   make([]uint64, 0, len(ls)),
		Prices:     make([]uint64, 0, len(ls)),
		Sellers:    make([]uint64, 0, len(ls)),
		EventTypes: make([]model.EventType, 0, len(ls)),
		EventIDs:   make([]uint64, 0, len(ls)),
	}
	for _, l := range ls {
		snap.TokenIDs = append(snap.TokenIDs, l.TokenID)
		snap.Prices = append(snap.Prices, l.PriceUnits)
		snap.Sellers = append(snap.Sellers, l.SellerID)
		snap.EventTypes = append(snap.EventTypes, l.EventType)
		snap.EventIDs = append(snap.EventIDs, l.EventID)
	}
	return snap, nil
}

// BySeller returns the seller's active listings in creation order.
func (m *Marketplace) BySeller(ctx context.Context, sellerID uint64) ([]model.Listing, error) {
	return m.listings.ListBySeller(ctx, sellerID)
}

// SetListingFee updates the flat listing fee. Administrator only.
func (m *Marketplace) SetListingFee(ctx context.Context, callerID, fee uint64) error {
	if err := requireAdmin(ctx, m.accounts, callerID); err != nil {
		return err
	}
	return m.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return m.fees.SetFeeTx(ctx, tx, repository.PoolListing, fee)
	})
}

// WithdrawListingFees moves accrued listing revenue to the administrator's
// account and returns the amount withdrawn.
func (m *Marketplace) WithdrawListingFees(ctx context.Context, callerID uint64) (uint64, error) {
	if err := requireAdmin(ctx, m.accounts, callerID); err != nil {
		return 0, err
	}
	var amount uint64
	err := m.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		drained, err := m.fees.DrainTx(ctx, tx, repository.PoolListing)
		if err != nil {
			return err
		}
		amount = drained
		if drained == 0 {
			return nil
		}
		return m.accounts.CreditTx(ctx, tx, callerID, drained)
	})
	return amount, err
}
