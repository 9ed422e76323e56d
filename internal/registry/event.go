package registry

import (
	"context"
	"database/sql"
	"strings"

	"github.com/blockticket/blockticket/internal/metrics"
	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/repository"
)

// EventInput carries the caller-supplied fields of a create or update.
type EventInput struct {
	Name     string
	Date     int64
	Venue    string
	Capacity uint32
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Venue) == "" {
		return repository.ErrInvalidInput
	}
	if in.Capacity == 0 {
		return repository.ErrInvalidInput
	}
	return nil
}

// EventRegistry owns the event lifecycle: create, update, cancel. Events
// stay mutable only for their organizer and only while active;
// cancellation is terminal.
type EventRegistry struct {
	runner repository.TxRunner
	events EventStore
}

// NewEventRegistry wires the registry to its transaction runner and store.
func NewEventRegistry(runner repository.TxRunner, events EventStore) *EventRegistry {
	return &EventRegistry{runner: runner, events: events}
}

// Create registers a new event owned by the caller and returns it with its
// assigned id. Ids are strictly increasing across all create calls.
func (r *EventRegistry) Create(ctx context.Context, organizerID uint64, in EventInput) (model.Event, error) {
	if err := in.validate(); err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		Name:        strings.TrimSpace(in.Name),
		Date:        in.Date,
		Venue:       strings.TrimSpace(in.Venue),
		Capacity:    in.Capacity,
		OrganizerID: organizerID,
	}
	err := r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return r.events.CreateTx(ctx, tx, &ev)
	})
	if err != nil {
		return model.Event{}, err
	}
	metrics.EventsCreated.Inc()
	return ev, nil
}

// Update rewrites the mutable fields of an event. Only the organizer may
// update, and only while the event is active.
func (r *EventRegistry) Update(ctx context.Context, callerID, eventID uint64, in EventInput) (model.Event, error) {
	if err := in.validate(); err != nil {
		return model.Event{}, err
	}
	var updated model.Event
	err := r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		ev, err := r.events.GetTx(ctx, tx, eventID, true)
		if err != nil {
			return err
		}
		if ev.OrganizerID != callerID {
			return repository.ErrUnauthorized
		}
		if !ev.IsActive {
			return repository.ErrInvalidState
		}
		ev.Name = strings.TrimSpace(in.Name)
		ev.Date = in.Date
		ev.Venue = strings.TrimSpace(in.Venue)
		ev.Capacity = in.Capacity
		if err := r.events.UpdateTx(ctx, tx, ev); err != nil {
			return err
		}
		updated = ev
		return nil
	})
	return updated, err
}

// Cancel flips the event inactive. Cancelling an already cancelled event
// fails with InvalidState; the flag never reverts to active.
func (r *EventRegistry) Cancel(ctx context.Context, callerID, eventID uint64) error {
	return r.runner.WithinTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		ev, err := r.events.GetTx(ctx, tx, eventID, true)
		if err != nil {
			return err
		}
		if ev.OrganizerID != callerID {
			return repository.ErrUnauthorized
		}
		if !ev.IsActive {
			return repository.ErrInvalidState
		}
		return r.events.SetInactiveTx(ctx, tx, eventID)
	})
}

// Get returns an event by id.
func (r *EventRegistry) Get(ctx context.Context, eventID uint64) (model.Event, error) {
	return r.events.Get(ctx, eventID)
}

// ActiveEvents returns the ids of all active events in ascending order.
func (r *EventRegistry) ActiveEvents(ctx context.Context) ([]uint64, error) {
	return r.events.ActiveIDs(ctx)
}

// ByOrganizer returns the caller's events, including cancelled ones.
func (r *EventRegistry) ByOrganizer(ctx context.Context, organizerID uint64) ([]model.Event, error) {
	return r.events.ListByOrganizer(ctx, organizerID)
}
