package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"famlink/internal/middleware"
	"famlink/internal/repository"
	"famlink/internal/service"
)

// FamilyHandler serves the family registry and the AI digest endpoints.
type FamilyHandler struct {
	Families  *service.FamilyService
	Summaries *service.SummaryService
}

func NewFamilyHandler(families *service.FamilyService, summaries *service.SummaryService) *FamilyHandler {
	return &FamilyHandler{Families: families, Summaries: summaries}
}

type joinFamilyReq struct {
	Name string `json:"name"`
}
type summaryReq struct {
	GroqAPIKey string `json:"groq_api_key"`
	Date       string `json:"date"`
}

// ListMine returns the caller's family memberships.
func (h *FamilyHandler) ListMine(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fams, err := h.Families.ListForUser(ctx, middleware.CurrentUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list families failed"})
	}
	return c.JSON(http.StatusOK, toFamParts(fams))
}

// Check reports whether a family with the given name already exists, so
// the client can confirm "create new" versus "join existing". The answer
// is advisory; Join stays correct either way.
func (h *FamilyHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	exists, err := h.Families.Exists(ctx, c.QueryParam("name"))
	if err != nil {
		var ve service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "family check failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

// Join adds the caller to the named family, creating it when absent.
// Joining a family the caller already belongs to succeeds unchanged.
func (h *FamilyHandler) Join(c echo.Context) error {
	var req joinFamilyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Families.Join(ctx, middleware.CurrentUserID(c), req.Name)
	if err != nil {
		var ve service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join family failed"})
	}
	return c.JSON(http.StatusOK, famPart{ID: f.ID, Name: f.Name})
}

// Members lists the active family's members.
func (h *FamilyHandler) Members(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Families.Members(ctx, middleware.CurrentFamilyID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list members failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Summary generates the AI digest of the active family's posts for a
// day. The completion API key comes from the request body and is only
// forwarded, never stored. Digest calls can take a while, so the timeout
// is wider than for plain DB endpoints.
func (h *FamilyHandler) Summary(c echo.Context) error {
	var req summaryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	sum, err := h.Summaries.Summarize(ctx, req.GroqAPIKey, middleware.CurrentFamilyID(c), req.Date)
	if err != nil {
		var ve service.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "summary generation failed"})
	}
	return c.JSON(http.StatusOK, sum)
}

// MemberSummary digests one member's day, including the messages they
// exchanged with the caller.
func (h *FamilyHandler) MemberSummary(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req summaryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	sum, err := h.Summaries.SummarizeMember(ctx, req.GroqAPIKey, middleware.CurrentUserID(c), userID, req.Date)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "summary generation failed"})
	}
	return c.JSON(http.StatusOK, sum)
}
