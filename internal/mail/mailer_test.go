package mail

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockticket/blockticket/internal/queue"
)

type recordingSender struct {
	sent    []Message
	failFor string // recipient whose send fails
}

func (r *recordingSender) Send(msg Message) error {
	if msg.To == r.failFor {
		return errors.New("mailbox full")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func saleEvent() queue.TicketSoldEvent {
	return queue.TicketSoldEvent{
		MessageID:   "m-1",
		TokenID:     42,
		EventID:     7,
		EventName:   "Summer Jam",
		EventDate:   1766000000,
		EventType:   "Concert",
		SeatingInfo: "Row 4 Seat 12",
		PriceUnits:  400,
		SellerID:    10,
		SellerEmail: "seller@example.com",
		BuyerID:     11,
		BuyerEmail:  "buyer@example.com",
	}
}

func TestNotifySaleMailsBothParties(t *testing.T) {
	rec := &recordingSender{}
	n := NewSaleNotifier(rec)

	require.NoError(t, n.NotifySale(saleEvent()))
	require.Len(t, rec.sent, 2)

	seller, buyer := rec.sent[0], rec.sent[1]
	assert.Equal(t, "seller@example.com", seller.To)
	assert.Contains(t, seller.Subject, "Summer Jam")
	assert.Contains(t, seller.Text, "#42")
	assert.Contains(t, seller.Text, "400 units")

	assert.Equal(t, "buyer@example.com", buyer.To)
	assert.Contains(t, buyer.Text, "Row 4 Seat 12")
}

func TestNotifySaleSellerFailureStillMailsBuyer(t *testing.T) {
	rec := &recordingSender{failFor: "seller@example.com"}
	n := NewSaleNotifier(rec)

	err := n.NotifySale(saleEvent())
	assert.Error(t, err)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "buyer@example.com", rec.sent[0].To)
}
