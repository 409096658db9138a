package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"famlink/internal/middleware"
	"famlink/internal/service"
)

// SearchHandler serves post search within the active family.
type SearchHandler struct {
	Svc *service.PostService
}

func NewSearchHandler(posts *service.PostService) *SearchHandler {
	return &SearchHandler{Svc: posts}
}

// Posts matches post content against the q parameter, newest first. An
// empty query returns an empty result, not an error.
func (h *SearchHandler) Posts(c echo.Context) error {
	query := c.QueryParam("q")
	offset, limit := pageParams(c, 50)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, total, err := h.Svc.Search(ctx, middleware.CurrentFamilyID(c), query, offset, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"query":   query,
		"total":   total,
		"results": posts,
	})
}
