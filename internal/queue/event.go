// Package queue defines message payloads exchanged over the message broker.
package queue

// SaleQueueName is the durable queue sale events travel through.
const SaleQueueName = "ticket.sold"

// TicketSoldEvent is published after a marketplace purchase commits. It
// carries enough information for downstream consumers to log the sale and
// notify both parties without querying the primary database.
type TicketSoldEvent struct {
	MessageID   string `json:"message_id"`
	TokenID     uint64 `json:"token_id"`
	EventID     uint64 `json:"event_id"`
	EventName   string `json:"event_name"`
	EventDate   int64  `json:"event_date"`
	EventType   string `json:"event_type"`
	SeatingInfo string `json:"seating_info"`
	PriceUnits  uint64 `json:"price_units"`
	SellerID    uint64 `json:"seller_id"`
	SellerEmail string `json:"seller_email"`
	BuyerID     uint64 `json:"buyer_id"`
	BuyerEmail  string `json:"buyer_email"`
	SoldAt      string `json:"sold_at"`
}
