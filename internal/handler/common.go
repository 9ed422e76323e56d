package handler // handler defines the HTTP surface of the API

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blockticket/blockticket/internal/repository"
)

// callerID extracts the authenticated account id placed into the context
// by the JWT middleware and converts it to uint64. JWT numeric claims
// arrive as float64; string subjects are parsed for robustness.
func callerID(c echo.Context) (uint64, error) {
	v := c.Get("account_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid account_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// domainStatus maps the repository sentinel errors onto HTTP statuses.
// Anything unmapped is an infrastructure failure and reported as 500.
func domainStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, repository.ErrNotListed):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrUnauthorized),
		errors.Is(err, repository.ErrNotApproved):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrInvalidState),
		errors.Is(err, repository.ErrAlreadyListed),
		errors.Is(err, repository.ErrInvalidEvent),
		errors.Is(err, repository.ErrEventNoLongerValid),
		errors.Is(err, repository.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidBatchSize):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrInsufficientPayment),
		errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// fail renders a domain error as JSON. The body carries the sentinel
// message and its stable machine-readable code.
func fail(c echo.Context, err error) error {
	status := domainStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{
		"error": msg,
		"code":  repository.Code(err),
	})
}
