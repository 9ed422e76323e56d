package middleware

// identity.go holds the account identification helper shared by the other
// middleware files.  Rate-limit keys need a stable per-account component;
// unauthenticated requests all share the "anon" bucket component and are
// distinguished by IP instead.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentAccountID renders the authenticated account id stored by JWTAuth
// as a string, or "anon" when the request carries no valid token.
func currentAccountID(c echo.Context) string {
	switch v := c.Get("account_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return "anon"
}
