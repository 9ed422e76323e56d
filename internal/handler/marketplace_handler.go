package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/model"
	"github.com/blockticket/blockticket/internal/registry"
)

// MarketplaceHandler exposes the listing/purchase state machine.
type MarketplaceHandler struct {
	Market *registry.Marketplace
}

func NewMarketplaceHandler(market *registry.Marketplace) *MarketplaceHandler {
	return &MarketplaceHandler{Market: market}
}

type listReq struct {
	TokenID      uint64  `json:"token_id"`
	PriceUnits   uint64  `json:"price_units"`
	InviteeID    *uint64 `json:"invitee_id,omitempty"`
	PaymentUnits uint64  `json:"payment_units"`
}

type listBatchReq struct {
	TokenIDs     []uint64 `json:"token_ids"`
	Prices       []uint64 `json:"prices"`
	PaymentUnits uint64   `json:"payment_units"`
}

type listingResp struct {
	TokenID    uint64  `json:"token_id"`
	PriceUnits uint64  `json:"price_units"`
	SellerID   uint64  `json:"seller_id"`
	InviteeID  *uint64 `json:"invitee_id,omitempty"`
	EventID    uint64  `json:"event_id"`
	EventType  uint8   `json:"event_type"`
}

func toListingResp(l model.Listing) listingResp {
	return listingResp{
		TokenID:    l.TokenID,
		PriceUnits: l.PriceUnits,
		SellerID:   l.SellerID,
		InviteeID:  l.InviteeID,
		EventID:    l.EventID,
		EventType:  uint8(l.EventType),
	}
}

// List places one of the caller's tickets on the marketplace.
func (h *MarketplaceHandler) List(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	l, err := h.Market.List(c.Request().Context(), caller, registry.ListInput{
		TokenID:      req.TokenID,
		PriceUnits:   req.PriceUnits,
		InviteeID:    req.InviteeID,
		PaymentUnits: req.PaymentUnits,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toListingResp(l))
}

// ListBatch lists several tickets atomically at their respective prices.
func (h *MarketplaceHandler) ListBatch(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req listBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ls, err := h.Market.ListBatch(c.Request().Context(), caller, req.TokenIDs, req.Prices, req.PaymentUnits)
	if err != nil {
		return fail(c, err)
	}
	out := make([]listingResp, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListingResp(l))
	}
	return c.JSON(http.StatusCreated, out)
}

type buyReq struct {
	PaymentUnits uint64 `json:"payment_units"`
}

// Buy purchases the listing for a token. The buyer is debited exactly the
// listing price.
func (h *MarketplaceHandler) Buy(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	var req buyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sale, err := h.Market.Buy(c.Request().Context(), caller, id, req.PaymentUnits)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket":      toTicketResp(sale.Ticket),
		"price_units": sale.PriceUnits,
		"seller_id":   sale.SellerID,
	})
}

// Cancel withdraws the caller's listing without moving ownership.
func (h *MarketplaceHandler) Cancel(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token id"})
	}
	if err := h.Market.CancelListing(c.Request().Context(), caller, id); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// All returns every active listing as parallel sequences in creation
// order.
func (h *MarketplaceHandler) All(c echo.Context) error {
	snap, err := h.Market.AllListings(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// Mine returns the caller's active listings.
func (h *MarketplaceHandler) Mine(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ls, err := h.Market.BySeller(c.Request().Context(), caller)
	if err != nil {
		return fail(c, err)
	}
	out := make([]listingResp, 0, len(ls))
	for _, l := range ls {
		out = append(out, toListingResp(l))
	}
	return c.JSON(http.StatusOK, out)
}
