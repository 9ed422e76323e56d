package model

import "time"

// EventType classifies a ticket. The ordinal values are part of the wire
// contract and must not be renumbered.
type EventType uint8

const (
	EventTypePrivate    EventType = 0
	EventTypeSports     EventType = 1
	EventTypeShow       EventType = 2
	EventTypeConcert    EventType = 3
	EventTypeConference EventType = 4
)

// Valid reports whether t is one of the defined event types.
func (t EventType) Valid() bool { return t <= EventTypeConference }

// String returns the display name used in API responses and notifications.
func (t EventType) String() string {
	switch t {
	case EventTypePrivate:
		return "PrivateEvent"
	case EventTypeSports:
		return "SportsGame"
	case EventTypeShow:
		return "Show"
	case EventTypeConcert:
		return "Concert"
	case EventTypeConference:
		return "Conference"
	}
	return "Unknown"
}

// Ticket represents a row in the `tickets` table. A ticket is a
// non-fungible record minted against an active event; event name, date and
// type are snapshots taken at mint time so the ticket stays a faithful
// historical record even after the event is updated or cancelled. Tickets
// are never destroyed; ownership changes only through transfers and
// marketplace purchases.
type Ticket struct {
	TokenID     uint64    // tickets.token_id
	EventID     uint64    // tickets.event_id
	EventName   string    // tickets.event_name (snapshot)
	EventDate   int64     // tickets.event_date (snapshot, unix seconds)
	EventType   EventType // tickets.event_type
	SeatingInfo string    // tickets.seating_info
	OwnerID     uint64    // tickets.owner_id
	CreatedAt   time.Time // tickets.created_at
}
