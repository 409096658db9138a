package middleware

import "github.com/labstack/echo/v4"

// CurrentUserID returns the authenticated user's ID from the context, 0
// when unauthenticated.
func CurrentUserID(c echo.Context) uint64 {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v
	}
	return 0
}

// CurrentFamilyID returns the token's active family, 0 when the session
// has no family selected.
func CurrentFamilyID(c echo.Context) uint64 {
	if v, ok := c.Get("family_id").(uint64); ok {
		return v
	}
	return 0
}
