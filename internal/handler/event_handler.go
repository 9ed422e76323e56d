package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/registry"
)

// EventHandler exposes the event registry over HTTP.
type EventHandler struct {
	Events *registry.EventRegistry
}

func NewEventHandler(events *registry.EventRegistry) *EventHandler {
	return &EventHandler{Events: events}
}

type eventReq struct {
	Name     string `json:"name"`
	Date     int64  `json:"date"`
	Venue    string `json:"venue"`
	Capacity uint32 `json:"capacity"`
}

type eventResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Date        int64  `json:"date"`
	Venue       string `json:"venue"`
	Capacity    uint32 `json:"capacity"`
	IsActive    bool   `json:"is_active"`
	OrganizerID uint64 `json:"organizer_id"`
}

func toEventResp(ev model.Event) eventResp {
	return eventResp{
		ID:          ev.ID,
		Name:        ev.Name,
		Date:        ev.Date,
		Venue:       ev.Venue,
		Capacity:    ev.Capacity,
		IsActive:    ev.IsActive,
		OrganizerID: ev.OrganizerID,
	}
}

// Create registers a new event owned by the caller.
func (h *EventHandler) Create(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, err := h.Events.Create(c.Request().Context(), caller, registry.EventInput{
		Name: req.Name, Date: req.Date, Venue: req.Venue, Capacity: req.Capacity,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// Update rewrites the mutable fields of the caller's event.
func (h *EventHandler) Update(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ev, err := h.Events.Update(c.Request().Context(), caller, id, registry.EventInput{
		Name: req.Name, Date: req.Date, Venue: req.Venue, Capacity: req.Capacity,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// Cancel flips the caller's event inactive; the flag never reverts.
func (h *EventHandler) Cancel(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Cancel(c.Request().Context(), caller, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get returns one event, cancelled ones included.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// Active returns the ids of all active events in ascending order.
func (h *EventHandler) Active(c echo.Context) error {
	ids, err := h.Events.ActiveEvents(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, echo.Map{"event_ids": ids})
}

// Mine returns the caller's events, including cancelled ones.
func (h *EventHandler) Mine(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	evs, err := h.Events.ByOrganizer(c.Request().Context(), caller)
	if err != nil {
		return fail(c, err)
	}
	out := make([]eventResp, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toEventResp(ev))
	}
	return c.JSON(http.StatusOK, out)
}
