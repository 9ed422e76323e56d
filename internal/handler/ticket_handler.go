package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/registry"
)

// TicketHandler exposes minting, ownership and approval operations.
type TicketHandler struct {
	Tickets *registry.TicketRegistry
}

func NewTicketHandler(tickets *registry.TicketRegistry) *TicketHandler {
	return &TicketHandler{Tickets: tickets}
}

type mintReq struct {
	EventID      uint64 `json:"event_id"`
	EventName    string `json:"event_name"`
	EventDate    int64  `json:"event_date"`
	EventType    uint8  `json:"event_type"`
	SeatingInfo  string `json:"seating_info"`
	PaymentUnits uint64 `json:"payment_units"`
}

type mintBatchReq struct {
	EventID         uint64   `json:"event_id"`
	EventName       string   `json:"event_name"`
	EventDate       int64    `json:"event_date"`
	EventType       uint8    `json:"event_type"`
	SeatingInfoList []string `json:"seating_info_list"`
	PaymentUnits    uint64   `json:"payment_units"`
}

type ticketResp struct {
	TokenID     uint64 `json:"token_id"`
	EventID     uint64 `json:"event_id"`
	EventName   string `json:"event_name"`
	EventDate   int64  `json:"event_date"`
	EventType   uint8  `json:"event_type"`
	TypeName    string `json:"type_name"`
	SeatingInfo string `json:"seating_info"`
	OwnerID     uint64 `json:"owner_id"`
}

func toTicketResp(t model.Ticket) ticketResp {
	return ticketResp{
		TokenID:     t.TokenID,
		EventID:     t.EventID,
		EventName:   t.EventName,
		EventDate:   t.EventDate,
		EventType:   uint8(t.EventType),
		TypeName:    t.EventType.String(),
		SeatingInfo: t.SeatingInfo,
		OwnerID:     t.OwnerID,
	}
}

// Mint creates one ticket owned by the caller.
func (h *TicketHandler) Mint(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, err := h.Tickets.Mint(c.Request().Context(), caller, registry.MintInput{
		EventID:      req.EventID,
		EventName:    req.EventName,
		EventDate:    req.EventDate,
		EventType:    model.EventType(req.EventType),
		SeatingInfo:  req.SeatingInfo,
		PaymentUnits: req.PaymentUnits,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toTicketResp(t))
}

// MintBatch creates one ticket per seating entry, all or nothing.
func (h *TicketHandler) MintBatch(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mintBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ts, err := h.Tickets.MintBatch(c.Request().Context(), caller, registry.MintInput{
		EventID:      req.EventID,
		EventName:    req.EventName,
		EventDate:    req.EventDate,
		EventType:    model.EventType(req.EventType),
		PaymentUnits: req.PaymentUnits,
	}, req.SeatingInfoList)
	if err != nil {
		return fail(c, err)
	}
	out := make([]ticketResp, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusCreated, out)
}

// Get returns the ticket record for a token id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	t, err := h.Tickets.Details(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toTicketResp(t))
}

// Mine returns the caller's tickets.
func (h *TicketHandler) Mine(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ts, err := h.Tickets.OwnedBy(c.Request().Context(), caller)
	if err != nil {
		return fail(c, err)
	}
	out := make([]ticketResp, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTicketResp(t))
	}
	return c.JSON(http.StatusOK, out)
}

type transferReq struct {
	To uint64 `json:"to"`
}

// Transfer moves a ticket; the caller must own it or hold an approval.
func (h *TicketHandler) Transfer(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil || req.To == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient required"})
	}
	if err := h.Tickets.Transfer(c.Request().Context(), caller, id, req.To); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type approveReq struct {
	OperatorID uint64 `json:"operator_id"`
}

// Approve delegates transfer rights on one token to an operator.
func (h *TicketHandler) Approve(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	var req approveReq
	if err := c.Bind(&req); err != nil || req.OperatorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "operator_id required"})
	}
	if err := h.Tickets.Approve(c.Request().Context(), caller, id, req.OperatorID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type operatorApprovalReq struct {
	OperatorID uint64 `json:"operator_id"`
	Approved   bool   `json:"approved"`
}

// SetOperatorApproval grants or revokes blanket transfer rights over all
// of the caller's tickets.
func (h *TicketHandler) SetOperatorApproval(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req operatorApprovalReq
	if err := c.Bind(&req); err != nil || req.OperatorID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "operator_id required"})
	}
	if err := h.Tickets.SetApprovalForAll(c.Request().Context(), caller, req.OperatorID, req.Approved); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
