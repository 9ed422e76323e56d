package model

import "time"

// Listing represents a row in the `listings` table: a ticket currently
// offered for sale. A token has at most one active listing; the row is
// deleted on purchase or cancellation, so presence in the table is the
// Listed state of the marketplace state machine. Listing a ticket does not
// move ownership, it only records the offer; the marketplace relies on a
// separate transfer approval to move the ticket on a sale.
//
// Fields:
//  TokenID    – the listed ticket.
//  Seq        – auto-increment used to preserve insertion order in browse
//               queries.
//  PriceUnits – asking price in base units, strictly positive.
//  SellerID   – account that created the listing; must own the ticket at
//               creation time.
//  InviteeID  – when non-nil, the only account allowed to buy (private
//               listing).
//  EventID    – event the ticket belongs to, denormalized for browsing.
//  EventType  – ticket type snapshot, denormalized for browsing.
//  CreatedAt  – creation timestamp.
type Listing struct {
	TokenID    uint64    // listings.token_id
	Seq        uint64    // listings.seq
	PriceUnits uint64    // listings.price_units
	SellerID   uint64    // listings.seller_id
	InviteeID  *uint64   // listings.invitee_id (nullable)
	EventID    uint64    // listings.event_id
	EventType  EventType // listings.event_type
	CreatedAt  time.Time // listings.created_at
}
