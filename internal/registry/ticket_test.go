package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

func TestMintHappyPath(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	minted, err := f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID:      ev.ID,
		EventName:    ev.Name,
		EventDate:    ev.Date,
		EventType:    model.EventTypeConcert,
		SeatingInfo:  "Row 4 Seat 12",
		PaymentUnits: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, bobID, minted.OwnerID)
	assert.Equal(t, ev.ID, minted.EventID)
	assert.Equal(t, model.EventTypeConcert, minted.EventType)
	// The full payment is retained as mint revenue.
	assert.Equal(t, uint64(10_000-100), f.accounts.balance(bobID))
	assert.Equal(t, uint64(100), f.fees.pools[repository.PoolMint].AccruedUnits)
}

func TestMintOverpaymentRetained(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	_, err := f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID: ev.ID, EventName: ev.Name, EventDate: ev.Date,
		EventType: model.EventTypeShow, SeatingInfo: "GA", PaymentUnits: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000-250), f.accounts.balance(bobID))
	assert.Equal(t, uint64(250), f.fees.pools[repository.PoolMint].AccruedUnits)
}

func TestMintInsufficientPayment(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	_, err := f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID: ev.ID, EventName: ev.Name, EventDate: ev.Date,
		EventType: model.EventTypeShow, SeatingInfo: "GA", PaymentUnits: 99,
	})
	assert.ErrorIs(t, err, repository.ErrInsufficientPayment)
	assert.Equal(t, uint64(10_000), f.accounts.balance(bobID))
}

func TestMintAgainstMissingOrCancelledEvent(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()

	_, err := f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID: 404, EventName: "ghost", EventDate: 1,
		EventType: model.EventTypeShow, SeatingInfo: "GA", PaymentUnits: 100,
	})
	assert.ErrorIs(t, err, repository.ErrInvalidEvent)

	ev := f.createEvent(ctx)
	require.NoError(t, f.eventReg.Cancel(ctx, aliceID, ev.ID))
	_, err = f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID: ev.ID, EventName: ev.Name, EventDate: ev.Date,
		EventType: model.EventTypeShow, SeatingInfo: "GA", PaymentUnits: 100,
	})
	assert.ErrorIs(t, err, repository.ErrInvalidEvent)
}

func TestMintRejectsBadInput(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	_, err := f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID: ev.ID, EventType: model.EventType(9), SeatingInfo: "GA", PaymentUnits: 100,
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = f.ticketReg.Mint(ctx, bobID, MintInput{
		EventID: ev.ID, EventType: model.EventTypeShow, SeatingInfo: "   ", PaymentUnits: 100,
	})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestMintBatch(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	seats := []string{"A1", "A2", "A3"}
	minted, err := f.ticketReg.MintBatch(ctx, bobID, MintInput{
		EventID: ev.ID, EventName: ev.Name, EventDate: ev.Date,
		EventType: model.EventTypeSports, PaymentUnits: 300,
	}, seats)
	require.NoError(t, err)
	require.Len(t, minted, 3)

	for i, tk := range minted {
		assert.Equal(t, seats[i], tk.SeatingInfo)
		assert.Equal(t, bobID, tk.OwnerID)
	}
	// Token ids are unique and increasing within the batch.
	assert.True(t, minted[0].TokenID < minted[1].TokenID)
	assert.True(t, minted[1].TokenID < minted[2].TokenID)
	assert.Equal(t, uint64(10_000-300), f.accounts.balance(bobID))
}

func TestMintBatchFeeScalesWithCount(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	// 3 seats at fee 100 need 300; 299 is short.
	_, err := f.ticketReg.MintBatch(ctx, bobID, MintInput{
		EventID: ev.ID, EventType: model.EventTypeSports, PaymentUnits: 299,
	}, []string{"A1", "A2", "A3"})
	assert.ErrorIs(t, err, repository.ErrInsufficientPayment)
}

func TestMintBatchSizeBounds(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	_, err := f.ticketReg.MintBatch(ctx, bobID, MintInput{EventID: ev.ID, EventType: model.EventTypeShow, PaymentUnits: 100}, nil)
	assert.ErrorIs(t, err, repository.ErrInvalidBatchSize)

	tooMany := make([]string, MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("S%d", i)
	}
	_, err = f.ticketReg.MintBatch(ctx, bobID, MintInput{EventID: ev.ID, EventType: model.EventTypeShow, PaymentUnits: 1_000_000}, tooMany)
	assert.ErrorIs(t, err, repository.ErrInvalidBatchSize)
}

func TestMintBatchAbortsOnBlankSeat(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)

	_, err := f.ticketReg.MintBatch(ctx, bobID, MintInput{
		EventID: ev.ID, EventType: model.EventTypeShow, PaymentUnits: 300,
	}, []string{"A1", " ", "A3"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)
	owned, _ := f.ticketReg.OwnedBy(ctx, bobID)
	assert.Empty(t, owned)
	assert.Equal(t, uint64(10_000), f.accounts.balance(bobID))
}

func TestTransferByOwner(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)
	tk := f.mintTicket(ctx, bobID, ev)

	require.NoError(t, f.ticketReg.Transfer(ctx, bobID, tk.TokenID, caraID))

	got, err := f.ticketReg.Details(ctx, tk.TokenID)
	require.NoError(t, err)
	assert.Equal(t, caraID, got.OwnerID)
}

func TestTransferStrangerDenied(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)
	tk := f.mintTicket(ctx, bobID, ev)

	err := f.ticketReg.Transfer(ctx, caraID, tk.TokenID, caraID)
	assert.ErrorIs(t, err, repository.ErrUnauthorized)
}

func TestTransferByApprovedOperatorClearsApproval(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)
	tk := f.mintTicket(ctx, bobID, ev)

	require.NoError(t, f.ticketReg.Approve(ctx, bobID, tk.TokenID, caraID))
	require.NoError(t, f.ticketReg.Transfer(ctx, caraID, tk.TokenID, caraID))

	got, _ := f.ticketReg.Details(ctx, tk.TokenID)
	assert.Equal(t, caraID, got.OwnerID)

	// The per-token approval is spent: cara cannot move it again after
	// giving it back.
	require.NoError(t, f.ticketReg.Transfer(ctx, caraID, tk.TokenID, bobID))
	err := f.ticketReg.Transfer(ctx, caraID, tk.TokenID, caraID)
	assert.ErrorIs(t, err, repository.ErrUnauthorized)
}

func TestBlanketOperatorApproval(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)
	tk1 := f.mintTicket(ctx, bobID, ev)
	tk2 := f.mintTicket(ctx, bobID, ev)

	require.NoError(t, f.ticketReg.SetApprovalForAll(ctx, bobID, caraID, true))
	require.NoError(t, f.ticketReg.Transfer(ctx, caraID, tk1.TokenID, caraID))
	require.NoError(t, f.ticketReg.Transfer(ctx, caraID, tk2.TokenID, caraID))

	require.NoError(t, f.ticketReg.SetApprovalForAll(ctx, bobID, caraID, false))
	tk3 := f.mintTicket(ctx, bobID, ev)
	err := f.ticketReg.Transfer(ctx, caraID, tk3.TokenID, caraID)
	assert.ErrorIs(t, err, repository.ErrUnauthorized)
}

func TestApproveNonOwnerDenied(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)
	tk := f.mintTicket(ctx, bobID, ev)

	err := f.ticketReg.Approve(ctx, caraID, tk.TokenID, caraID)
	assert.ErrorIs(t, err, repository.ErrUnauthorized)
}

func TestSetMintFeeAdminOnly(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()

	assert.ErrorIs(t, f.ticketReg.SetMintFee(ctx, bobID, 500), repository.ErrUnauthorized)

	require.NoError(t, f.ticketReg.SetMintFee(ctx, adminID, 500))
	fee, err := f.ticketReg.MintFee(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), fee)
}

func TestWithdrawMintFees(t *testing.T) {
	f := newFixture(100, 50)
	ctx := context.Background()
	ev := f.createEvent(ctx)
	f.mintTicket(ctx, bobID, ev)
	f.mintTicket(ctx, caraID, ev)

	assert.ErrorIs(t, func() error { _, err := f.ticketReg.WithdrawMintFees(ctx, bobID); return err }(), repository.ErrUnauthorized)

	amount, err := f.ticketReg.WithdrawMintFees(ctx, adminID)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), amount)
	assert.Equal(t, uint64(200), f.accounts.balance(adminID))

	// Pool is empty afterwards.
	amount, err = f.ticketReg.WithdrawMintFees(ctx, adminID)
	require.NoError(t, err)
	assert.Zero(t, amount)
}

func TestEventTypeStrings(t *testing.T) {
	cases := map[model.EventType]string{
		model.EventTypePrivate:    "PrivateEvent",
		model.EventTypeSports:     "SportsGame",
		model.EventTypeShow:       "Show",
		model.EventTypeConcert:    "Concert",
		model.EventTypeConference: "Conference",
		model.EventType(9):        "Unknown",
	}
	for typ, want := range cases {
		assert.Equal(t, want, typ.String())
	}
	assert.True(t, model.EventTypeConference.Valid())
	assert.False(t, model.EventType(5).Valid())
}
