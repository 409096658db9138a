package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"famlink/internal/middleware"
	"famlink/internal/model"
	"famlink/internal/repository"
	"famlink/internal/service"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type signupReq struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	FullName    string   `json:"full_name"`
	Bio         string   `json:"bio"`
	FamilyNames []string `json:"family_names"`
}
type selectFamilyReq struct {
	FamilyID uint64 `json:"family_id"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
	FamilyID     uint64 `json:"family_id"`
}
type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Bio      string `json:"bio,omitempty"`
}
type famPart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User             userPart   `json:"user"`
	Families         []famPart  `json:"families"`
	SelectedFamily   *famPart   `json:"selected_family"`
	PendingSelection bool       `json:"pending_family_selection,omitempty"`
	TokenType        string     `json:"token_type,omitempty"`
	Access           *tokenPart `json:"access,omitempty"`
	Refresh          *tokenPart `json:"refresh,omitempty"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName, Bio: u.Bio}
}

func toFamParts(fams []model.Family) []famPart {
	out := make([]famPart, 0, len(fams))
	for _, f := range fams {
		out = append(out, famPart{ID: f.ID, Name: f.Name})
	}
	return out
}

func toAuthResp(r service.LoginResult) authResp {
	resp := authResp{
		User:             toUserPart(r.User),
		Families:         toFamParts(r.Families),
		PendingSelection: r.PendingSelection,
	}
	if r.SelectedFamily != nil {
		resp.SelectedFamily = &famPart{ID: r.SelectedFamily.ID, Name: r.SelectedFamily.Name}
	}
	if !r.PendingSelection {
		resp.TokenType = "bearer"
		resp.Access = &tokenPart{Token: r.Access.Token, Expires: r.Access.Exp}
		resp.Refresh = &tokenPart{Token: r.Refresh.Raw, Expires: r.Refresh.Exp} // raw back to client, only the hash is stored
	}
	return resp
}

// Signup creates the user, joins the requested families and logs in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Signup(ctx, service.SignupParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		Bio:         req.Bio,
		FamilyNames: req.FamilyNames,
	})
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	return c.JSON(http.StatusCreated, toAuthResp(res))
}

// Login verifies credentials. The body is form-encoded; family_id is
// optional and selects the active family explicitly. A user in several
// families who sends no family_id gets a pending response without
// tokens and must repeat the call with a family_id.
func (h *AuthHandler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	var familyID uint64
	if raw := c.FormValue("family_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid family_id"})
		}
		familyID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, username, password, familyID)
	if err != nil {
		var ve service.ValidationError
		switch {
		case errors.As(err, &ve):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this family"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// SelectFamily issues a new token pair scoped to the chosen family.
func (h *AuthHandler) SelectFamily(c echo.Context) error {
	var req selectFamilyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FamilyID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "family_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.SelectFamily(ctx, middleware.CurrentUserID(c), req.FamilyID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this family"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "family selection failed"})
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Refresh rotates a refresh token and returns a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, req.RefreshToken, req.FamilyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this family"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Logout revokes the presented refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, req.RefreshToken, 0); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// LogoutAll revokes every refresh token of the authenticated user.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Auth.Logout(ctx, "", middleware.CurrentUserID(c)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out everywhere"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Me(ctx, middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}
