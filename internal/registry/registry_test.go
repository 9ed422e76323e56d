package registry

import (
	"context"
	"database/sql"
	"sort"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

// passRunner executes the transaction body directly. The fakes below keep
// their state in maps, so there is no transaction to manage.
type passRunner struct{}

func (passRunner) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	return fn(ctx, nil)
}

type fakeEvents struct {
	byID   map[uint64]model.Event
	nextID uint64
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{byID: map[uint64]model.Event{}, nextID: 1}
}

func (f *fakeEvents) CreateTx(_ context.Context, _ *sql.Tx, ev *model.Event) error {
	ev.ID = f.nextID
	ev.IsActive = true
	f.nextID++
	f.byID[ev.ID] = *ev
	return nil
}

func (f *fakeEvents) Get(_ context.Context, id uint64) (model.Event, error) {
	ev, ok := f.byID[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return ev, nil
}

func (f *fakeEvents) GetTx(ctx context.Context, _ *sql.Tx, id uint64, _ bool) (model.Event, error) {
	return f.Get(ctx, id)
}

func (f *fakeEvents) UpdateTx(_ context.Context, _ *sql.Tx, ev model.Event) error {
	if _, ok := f.byID[ev.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[ev.ID] = ev
	return nil
}

func (f *fakeEvents) SetInactiveTx(_ context.Context, _ *sql.Tx, id uint64) error {
	ev, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	ev.IsActive = false
	f.byID[id] = ev
	return nil
}

func (f *fakeEvents) ActiveIDs(context.Context) ([]uint64, error) {
	var ids []uint64
	for id, ev := range f.byID {
		if ev.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeEvents) ListByOrganizer(_ context.Context, organizerID uint64) ([]model.Event, error) {
	var out []model.Event
	for _, ev := range f.byID {
		if ev.OrganizerID == organizerID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type operatorKey struct{ owner, operator uint64 }

type fakeTickets struct {
	byID      map[uint64]model.Ticket
	approvals map[uint64]uint64
	operators map[operatorKey]bool
	nextID    uint64
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{
		byID:      map[uint64]model.Ticket{},
		approvals: map[uint64]uint64{},
		operators: map[operatorKey]bool{},
		nextID:    1,
	}
}

func (f *fakeTickets) InsertTx(_ context.Context, _ *sql.Tx, t *model.Ticket) error {
	t.TokenID = f.nextID
	f.nextID++
	f.byID[t.TokenID] = *t
	return nil
}

func (f *fakeTickets) Get(_ context.Context, tokenID uint64) (model.Ticket, error) {
	t, ok := f.byID[tokenID]
	if !ok {
		return model.Ticket{}, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeTickets) GetTx(ctx context.Context, _ *sql.Tx, tokenID uint64, _ bool) (model.Ticket, error) {
	return f.Get(ctx, tokenID)
}

func (f *fakeTickets) SetOwnerTx(_ context.Context, _ *sql.Tx, tokenID, newOwner uint64) error {
	t, ok := f.byID[tokenID]
	if !ok {
		return repository.ErrNotFound
	}
	t.OwnerID = newOwner
	f.byID[tokenID] = t
	return nil
}

func (f *fakeTickets) ListByOwner(_ context.Context, ownerID uint64) ([]model.Ticket, error) {
	var out []model.Ticket
	for _, t := range f.byID {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out, nil
}

func (f *fakeTickets) ApproveTx(_ context.Context, _ *sql.Tx, tokenID, operatorID uint64) error {
	f.approvals[tokenID] = operatorID
	return nil
}

func (f *fakeTickets) ClearApprovalTx(_ context.Context, _ *sql.Tx, tokenID uint64) error {
	delete(f.approvals, tokenID)
	return nil
}

func (f *fakeTickets) ApprovedOperatorTx(_ context.Context, _ *sql.Tx, tokenID uint64) (uint64, bool, error) {
	op, ok := f.approvals[tokenID]
	return op, ok, nil
}

func (f *fakeTickets) SetOperatorApprovalTx(_ context.Context, _ *sql.Tx, ownerID, operatorID uint64, approved bool) error {
	k := operatorKey{ownerID, operatorID}
	if approved {
		f.operators[k] = true
	} else {
		delete(f.operators, k)
	}
	return nil
}

func (f *fakeTickets) HasOperatorApprovalTx(_ context.Context, _ *sql.Tx, ownerID, operatorID uint64) (bool, error) {
	return f.operators[operatorKey{ownerID, operatorID}], nil
}

type fakeListings struct {
	byToken map[uint64]model.Listing
	nextSeq uint64
}

func newFakeListings() *fakeListings {
	return &fakeListings{byToken: map[uint64]model.Listing{}, nextSeq: 1}
}

func (f *fakeListings) InsertTx(_ context.Context, _ *sql.Tx, l *model.Listing) error {
	l.Seq = f.nextSeq
	f.nextSeq++
	f.byToken[l.TokenID] = *l
	return nil
}

func (f *fakeListings) GetTx(_ context.Context, _ *sql.Tx, tokenID uint64, _ bool) (model.Listing, error) {
	l, ok := f.byToken[tokenID]
	if !ok {
		return model.Listing{}, repository.ErrNotListed
	}
	return l, nil
}

func (f *fakeListings) ExistsTx(_ context.Context, _ *sql.Tx, tokenID uint64) (bool, error) {
	_, ok := f.byToken[tokenID]
	return ok, nil
}

func (f *fakeListings) DeleteTx(_ context.Context, _ *sql.Tx, tokenID uint64) error {
	delete(f.byToken, tokenID)
	return nil
}

func (f *fakeListings) ListAll(context.Context) ([]model.Listing, error) {
	out := make([]model.Listing, 0, len(f.byToken))
	for _, l := range f.byToken {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (f *fakeListings) ListBySeller(_ context.Context, sellerID uint64) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range f.byToken {
		if l.SellerID == sellerID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

type fakeAccounts struct {
	byID map[uint64]model.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[uint64]model.Account{}}
}

func (f *fakeAccounts) add(id uint64, role string, balance uint64) {
	f.byID[id] = model.Account{ID: id, Email: emailFor(id), Role: role, BalanceUnits: balance, IsActive: true}
}

func emailFor(id uint64) string {
	return string(rune('a'+id%26)) + "@example.com"
}

func (f *fakeAccounts) GetByID(_ context.Context, id uint64) (model.Account, error) {
	a, ok := f.byID[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) GetTx(ctx context.Context, _ *sql.Tx, id uint64, _ bool) (model.Account, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAccounts) CreditTx(_ context.Context, _ *sql.Tx, id uint64, delta uint64) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.BalanceUnits += delta
	f.byID[id] = a
	return nil
}

func (f *fakeAccounts) DebitTx(_ context.Context, _ *sql.Tx, id uint64, delta uint64) error {
	a, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.BalanceUnits < delta {
		return repository.ErrInsufficientBalance
	}
	a.BalanceUnits -= delta
	f.byID[id] = a
	return nil
}

func (f *fakeAccounts) balance(id uint64) uint64 { return f.byID[id].BalanceUnits }

type fakeFees struct {
	pools map[string]repository.FeePool
}

func newFakeFees(mintFee, listingFee uint64) *fakeFees {
	return &fakeFees{pools: map[string]repository.FeePool{
		repository.PoolMint:    {Pool: repository.PoolMint, FeeUnits: mintFee},
		repository.PoolListing: {Pool: repository.PoolListing, FeeUnits: listingFee},
	}}
}

func (f *fakeFees) Fee(_ context.Context, pool string) (uint64, error) {
	return f.pools[pool].FeeUnits, nil
}

func (f *fakeFees) GetTx(_ context.Context, _ *sql.Tx, pool string) (repository.FeePool, error) {
	p, ok := f.pools[pool]
	if !ok {
		return repository.FeePool{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeFees) SetFeeTx(_ context.Context, _ *sql.Tx, pool string, fee uint64) error {
	p := f.pools[pool]
	p.FeeUnits = fee
	f.pools[pool] = p
	return nil
}

func (f *fakeFees) AccrueTx(_ context.Context, _ *sql.Tx, pool string, amount uint64) error {
	p := f.pools[pool]
	p.AccruedUnits += amount
	f.pools[pool] = p
	return nil
}

func (f *fakeFees) DrainTx(_ context.Context, _ *sql.Tx, pool string) (uint64, error) {
	p := f.pools[pool]
	drained := p.AccruedUnits
	p.AccruedUnits = 0
	f.pools[pool] = p
	return drained, nil
}

// fixture bundles the fakes and the registries built on top of them.
type fixture struct {
	events   *fakeEvents
	tickets  *fakeTickets
	listings *fakeListings
	accounts *fakeAccounts
	fees     *fakeFees

	eventReg  *EventRegistry
	ticketReg *TicketRegistry
	market    *Marketplace
	accReg    *AccountRegistry
}

const (
	adminID  = uint64(1)
	marketID = uint64(2)
	aliceID  = uint64(10)
	bobID    = uint64(11)
	caraID   = uint64(12)
)

func newFixture(mintFee, listingFee uint64) *fixture {
	f := &fixture{
		events:   newFakeEvents(),
		tickets:  newFakeTickets(),
		listings: newFakeListings(),
		accounts: newFakeAccounts(),
		fees:     newFakeFees(mintFee, listingFee),
	}
	f.accounts.add(adminID, model.RoleAdmin, 0)
	f.accounts.add(marketID, model.RoleUser, 0)
	f.accounts.add(aliceID, model.RoleUser, 10_000)
	f.accounts.add(bobID, model.RoleUser, 10_000)
	f.accounts.add(caraID, model.RoleUser, 10_000)

	runner := passRunner{}
	f.eventReg = NewEventRegistry(runner, f.events)
	f.ticketReg = NewTicketRegistry(runner, f.tickets, f.events, f.accounts, f.fees)
	f.market = NewMarketplace(runner, f.listings, f.tickets, f.events, f.accounts, f.fees, marketID, nil)
	f.accReg = NewAccountRegistry(runner, f.accounts)
	return f
}

// createEvent registers an active event owned by aliceID.
func (f *fixture) createEvent(ctx context.Context) model.Event {
	ev, err := f.eventReg.Create(ctx, aliceID, EventInput{
		Name:     "Summer Jam",
		Date:     1766000000,
		Venue:    "Riverside Arena",
		Capacity: 500,
	})
	if err != nil {
		panic(err)
	}
	return ev
}

// mintTicket mints one concert ticket for ownerID against ev.
func (f *fixture) mintTicket(ctx context.Context, ownerID uint64, ev model.Event) model.Ticket {
	t, err := f.ticketReg.Mint(ctx, ownerID, MintInput{
		EventID:      ev.ID,
		EventName:    ev.Name,
		EventDate:    ev.Date,
		EventType:    model.EventTypeConcert,
		SeatingInfo:  "GA",
		PaymentUnits: 100,
	})
	if err != nil {
		panic(err)
	}
	return t
}
