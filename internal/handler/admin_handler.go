package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/registry"
)

// AdminHandler exposes the administrator operations: fee management,
// revenue withdrawal and account funding. The routes are additionally
// guarded by the ADMIN role middleware; the registries re-check the
// capability so a misconfigured route cannot widen access.
type AdminHandler struct {
	Tickets  *registry.TicketRegistry
	Market   *registry.Marketplace
	Accounts *registry.AccountRegistry
}

func NewAdminHandler(tickets *registry.TicketRegistry, market *registry.Marketplace, accounts *registry.AccountRegistry) *AdminHandler {
	return &AdminHandler{Tickets: tickets, Market: market, Accounts: accounts}
}

// Fees returns the current flat fees. Public: clients need them to size
// payments.
func (h *AdminHandler) Fees(c echo.Context) error {
	ctx := c.Request().Context()
	mint, err := h.Tickets.MintFee(ctx)
	if err != nil {
		return fail(c, err)
	}
	listing, err := h.Market.ListingFee(ctx)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"mint_fee_units":    mint,
		"listing_fee_units": listing,
	})
}

type setFeeReq struct {
	FeeUnits uint64 `json:"fee_units"`
}

// SetMintFee updates the flat mint fee.
func (h *AdminHandler) SetMintFee(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req setFeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Tickets.SetMintFee(c.Request().Context(), caller, req.FeeUnits); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetListingFee updates the flat listing fee.
func (h *AdminHandler) SetListingFee(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req setFeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Market.SetListingFee(c.Request().Context(), caller, req.FeeUnits); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// WithdrawMintFees drains accrued mint revenue to the caller's account.
func (h *AdminHandler) WithdrawMintFees(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	amount, err := h.Tickets.WithdrawMintFees(c.Request().Context(), caller)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawn_units": amount})
}

// WithdrawListingFees drains accrued listing revenue to the caller's
// account.
func (h *AdminHandler) WithdrawListingFees(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	amount, err := h.Market.WithdrawListingFees(c.Request().Context(), caller)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"withdrawn_units": amount})
}

type creditReq struct {
	AmountUnits uint64 `json:"amount_units"`
}

// CreditAccount funds a target account with base units.
func (h *AdminHandler) CreditAccount(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	target, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}
	var req creditReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := h.Accounts.Credit(c.Request().Context(), caller, target, req.AmountUnits); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
