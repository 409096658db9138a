package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// MembershipChecker answers whether a user currently belongs to a family.
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, familyID uint64) (bool, error)
}

// FamilyScope guards routes that operate on the active family. A token
// without a family claim gets 400; membership is re-checked against the
// database on every request, so a stale token stops working the moment
// the user leaves the family, even though the token itself stays valid
// until expiry.
func FamilyScope(members MembershipChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := CurrentUserID(c)
			familyID := CurrentFamilyID(c)
			if familyID == 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "no family selected"})
			}
			ok, err := members.IsMember(c.Request().Context(), userID, familyID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not verify family membership"})
			}
			if !ok {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this family"})
			}
			return next(c)
		}
	}
}
