package service

import (
	"context"
	"errors"
	"strings"

	"famlink/internal/model"
	"famlink/internal/repository"
	"famlink/internal/utils"
)

// FamilyRegistrar is the slice of the family service the auth flow needs
// during signup.
type FamilyRegistrar interface {
	Join(ctx context.Context, userID uint64, name string) (model.Family, error)
}

// AuthService verifies credentials and issues family-scoped tokens. It
// drives the multi-family login state machine:
//
//	Unauthenticated → CredentialsVerified →
//	  {NoFamilies, SingleFamily, PendingFamilySelection} →
//	Authenticated(active family or none)
//
// Tokens are stateless and time-bounded; switching families issues a new
// token and never mutates or revokes the previous one, which stays
// technically valid until natural expiry.
type AuthService struct {
	users    UserStore
	families FamilyStore
	tokens   TokenStore
	reg      FamilyRegistrar

	secret         string
	accessTTLMin   int
	refreshTTLDays int
	bcryptCost     int
}

func NewAuthService(users UserStore, families FamilyStore, tokens TokenStore, reg FamilyRegistrar,
	secret string, accessTTLMin, refreshTTLDays, bcryptCost int) *AuthService {
	return &AuthService{
		users:          users,
		families:       families,
		tokens:         tokens,
		reg:            reg,
		secret:         secret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
		bcryptCost:     bcryptCost,
	}
}

// LoginResult is the outcome of the login state machine. When
// PendingSelection is set the caller holds no token yet: Families lists
// the candidates and the client must repeat login with a family_id to
// finish. Otherwise Access/Refresh are populated and SelectedFamily is
// the active family (nil for a user with no families).
type LoginResult struct {
	User             model.User
	Families         []model.Family
	SelectedFamily   *model.Family
	PendingSelection bool
	Access           utils.AccessToken
	Refresh          utils.RefreshToken
}

// Login verifies credentials and applies the family-selection state
// machine. requestedFamilyID of 0 means "no explicit selection".
func (s *AuthService) Login(ctx context.Context, username, password string, requestedFamilyID uint64) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ValidationError("username and password are required")
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}

	fams, err := s.families.ListByUser(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}

	var selected *model.Family
	switch {
	case requestedFamilyID != 0:
		for i := range fams {
			if fams[i].ID == requestedFamilyID {
				selected = &fams[i]
				break
			}
		}
		if selected == nil {
			return LoginResult{}, repository.ErrForbidden
		}
	case len(fams) == 0:
		// Authenticated with no active family; family-scoped reads will
		// ask the user to join one first.
	case len(fams) == 1:
		selected = &fams[0]
	default:
		// Ambiguous: every family-scoped read must be attributable to
		// exactly one family, so no token is issued until the client
		// picks one.
		return LoginResult{User: u, Families: fams, PendingSelection: true}, nil
	}

	return s.issue(ctx, u, fams, selected)
}

// SelectFamily issues a fresh token for an already authenticated user
// with the given family as the active claim. The previous token is not
// revoked; it expires on its own.
func (s *AuthService) SelectFamily(ctx context.Context, userID, familyID uint64) (LoginResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	fams, err := s.families.ListByUser(ctx, u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	var selected *model.Family
	for i := range fams {
		if fams[i].ID == familyID {
			selected = &fams[i]
			break
		}
	}
	if selected == nil {
		return LoginResult{}, repository.ErrForbidden
	}
	return s.issue(ctx, u, fams, selected)
}

// SignupParams carries the signup form.
type SignupParams struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	Bio         string
	FamilyNames []string
}

// Signup creates the user, joins the requested families (blank names are
// skipped, duplicates collapse) and immediately runs the same login
// state machine with the password just set.
func (s *AuthService) Signup(ctx context.Context, p SignupParams) (LoginResult, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	switch {
	case p.Username == "":
		return LoginResult{}, ValidationError("username is required")
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return LoginResult{}, ValidationError("a valid email is required")
	case len(p.Password) < 8:
		return LoginResult{}, ValidationError("password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(p.Password, s.bcryptCost)
	if err != nil {
		return LoginResult{}, err
	}
	uid, err := s.users.Create(ctx, p.Username, p.Email, hash, strings.TrimSpace(p.FullName), strings.TrimSpace(p.Bio))
	if err != nil {
		return LoginResult{}, err
	}

	for _, name := range p.FamilyNames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, err := s.reg.Join(ctx, uid, name); err != nil {
			return LoginResult{}, err
		}
	}

	return s.Login(ctx, p.Username, p.Password, 0)
}

// Refresh validates and rotates a refresh token, returning a fresh token
// pair. familyID of 0 keeps the session family-less; a non-zero value is
// checked against the user's memberships like any other selection.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string, familyID uint64) (LoginResult, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(rawRefresh))
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	// Rotation must not leave the old token alive next to the new one.
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return LoginResult{}, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	fams, err := s.families.ListByUser(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}
	var selected *model.Family
	if familyID != 0 {
		for i := range fams {
			if fams[i].ID == familyID {
				selected = &fams[i]
				break
			}
		}
		if selected == nil {
			return LoginResult{}, repository.ErrForbidden
		}
	}
	return s.issue(ctx, u, fams, selected)
}

// Logout revokes a single session by its refresh token, or every session
// of the user when userID is non-zero and no token is given.
func (s *AuthService) Logout(ctx context.Context, rawRefresh string, userID uint64) error {
	raw := strings.TrimSpace(rawRefresh)
	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := s.tokens.ValidateRefresh(ctx, hash); err != nil {
			return ErrInvalidCredentials
		}
		return s.tokens.RevokeByHash(ctx, hash)
	}
	if userID != 0 {
		return s.tokens.RevokeAllForUser(ctx, userID)
	}
	return ValidationError("refresh_token is required")
}

// Me loads the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uint64) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, u model.User, fams []model.Family, selected *model.Family) (LoginResult, error) {
	var famID uint64
	if selected != nil {
		famID = selected.ID
	}
	access, err := utils.NewAccessToken(s.secret, u.ID, famID, s.accessTTLMin)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := utils.NewRefreshToken(s.refreshTTLDays)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		User:           u,
		Families:       fams,
		SelectedFamily: selected,
		Access:         access,
		Refresh:        refresh,
	}, nil
}
