package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockticket/blockticket/internal/repository"
)

func TestDomainStatusMapping(t *testing.T) {
	cases := map[error]int{
		repository.ErrNotFound:            http.StatusNotFound,
		repository.ErrNotListed:           http.StatusNotFound,
		repository.ErrUnauthorized:        http.StatusForbidden,
		repository.ErrNotApproved:         http.StatusForbidden,
		repository.ErrInvalidState:        http.StatusConflict,
		repository.ErrAlreadyListed:       http.StatusConflict,
		repository.ErrInvalidEvent:        http.StatusConflict,
		repository.ErrEventNoLongerValid:  http.StatusConflict,
		repository.ErrEmailExists:         http.StatusConflict,
		repository.ErrInvalidInput:        http.StatusBadRequest,
		repository.ErrInvalidBatchSize:    http.StatusBadRequest,
		repository.ErrInsufficientPayment: http.StatusPaymentRequired,
		repository.ErrInsufficientBalance: http.StatusPaymentRequired,
	}
	for err, status := range cases {
		assert.Equal(t, status, domainStatus(err), "error %v", err)
	}
	assert.Equal(t, http.StatusInternalServerError, domainStatus(fmt.Errorf("driver broke")))
}

func TestFailRendersCodeAndMessage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, fail(c, repository.ErrEventNoLongerValid))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Event is no longer valid","code":"EVENT_INVALID"}`, rec.Body.String())
}

func TestFailHidesInternalDetail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, fail(c, fmt.Errorf("dsn contains password")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error","code":"INTERNAL"}`, rec.Body.String())
}

func TestCallerIDAcceptsJWTClaimTypes(t *testing.T) {
	e := echo.New()
	for _, v := range []interface{}{uint64(7), int(7), int64(7), float64(7), "7"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("account_id", v)
		id, err := callerID(c)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := callerID(c)
	assert.Error(t, err)
}
