package model

import "time"

// Event represents a row in the `events` table. Events are created by an
// organizer account and stay mutable only while active. Cancellation flips
// IsActive to false permanently; event ids are assigned sequentially and
// never reused.
//
// Fields:
//  ID          – primary key identifier, monotonically assigned.
//  Name        – human readable event name.
//  Date        – scheduled date as a unix timestamp (seconds).
//  Venue       – free-form venue description.
//  Capacity    – maximum attendance, strictly positive.
//  IsActive    – false once the organizer cancels; never reverts to true.
//  OrganizerID – account that created the event.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          uint64    // events.id
	Name        string    // events.name
	Date        int64     // events.event_date (unix seconds)
	Venue       string    // events.venue
	Capacity    uint32    // events.capacity
	IsActive    bool      // events.is_active
	OrganizerID uint64    // events.organizer_id
	CreatedAt   time.Time // events.created_at
	UpdatedAt   time.Time // events.updated_at
}
