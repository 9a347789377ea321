package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// Registration is the input for creating a new account.
type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone_number"`
	Role      UserRole
	UseHashid bool
}

// UserSummary is the token-free view of an account returned by most
// operations.
type UserSummary struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Gender    string     `json:"gender,omitempty"`
	Phone     string     `json:"phone_number,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// AuthResult carries the token pair minted at login. The refresh token
// plaintext appears here exactly once and is never again retrievable.
type AuthResult struct {
	User         UserSummary `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

// CurrentUserResult is returned by refresh and current-user lookups.
// AccessToken is only set on refresh.
type CurrentUserResult struct {
	User        UserSummary `json:"user"`
	AccessToken string      `json:"access_token,omitempty"`
}

// RevocationResult reports the outcome of a revoke call. A failed
// repository update surfaces here as a message rather than an error.
type RevocationResult struct {
	Revoked bool   `json:"revoked"`
	Message string `json:"message"`
}

// UserUpdate carries the mutable profile fields for Update.
type UserUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone_number"`
}

// SessionManager orchestrates registration, login, refresh, and revocation.
// It holds no mutable session state; every transition is persisted through
// the user store immediately.
type SessionManager struct {
	users           UserStore
	signer          *TokenSigner
	passwords       PasswordAuthenticator
	refreshTokenTTL time.Duration
	logger          Logger
}

// NewSessionManager wires a session manager over the given store. The
// returned error is fatal configuration (missing signing key).
func NewSessionManager(users UserStore, cfg Config) (*SessionManager, error) {
	signer, err := NewTokenSigner(cfg, roleSourceFor(users), defLogger{})
	if err != nil {
		return nil, err
	}

	return &SessionManager{
		users:           users,
		signer:          signer,
		passwords:       BcryptAuthenticator{},
		refreshTokenTTL: refreshTTL(cfg),
		logger:          defLogger{},
	}, nil
}

func (s *SessionManager) WithLogger(logger Logger) *SessionManager {
	if logger != nil {
		s.logger = logger
		s.signer.logger = logger
	}
	return s
}

// WithPasswordAuthenticator overrides the credential verifier.
func (s *SessionManager) WithPasswordAuthenticator(p PasswordAuthenticator) *SessionManager {
	if p != nil {
		s.passwords = p
	}
	return s
}

// WithTokenSigner replaces the signer, e.g. to share one with middleware.
func (s *SessionManager) WithTokenSigner(signer *TokenSigner) *SessionManager {
	if signer != nil {
		s.signer = signer
	}
	return s
}

// TokenSigner returns the signer used by this manager.
func (s *SessionManager) TokenSigner() *TokenSigner {
	return s.signer
}

// Register creates a new account. Emails are unique, compared
// case-insensitively; usernames are derived from the sanitized name with a
// numeric suffix on collision.
func (s *SessionManager) Register(ctx context.Context, reg Registration) (*UserSummary, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))

	taken, err := s.users.ExistsWithEmail(ctx, email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	}
	if taken {
		return nil, ErrEmailRegistered
	}

	username, err := s.GenerateUsername(ctx, reg.FirstName, reg.LastName)
	if err != nil {
		return nil, err
	}

	user := &User{
		FirstName: strings.TrimSpace(reg.FirstName),
		LastName:  strings.TrimSpace(reg.LastName),
		Email:     email,
		Username:  username,
		Gender:    reg.Gender,
		Phone:     reg.Phone,
		Role:      reg.Role,
	}

	if reg.UseHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	created, err := s.users.CreateWithPassword(ctx, user, reg.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryValidation {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "could not create user").
			WithTextCode("USER_CREATE_FAILED")
	}

	s.logger.Info("registered user", "id", created.ID, "username", created.Username)

	return summarize(created), nil
}

// GenerateUsername derives a repository-unique username by lowercasing the
// sanitized first and last name and appending an incrementing numeric
// suffix until no collision remains.
func (s *SessionManager) GenerateUsername(ctx context.Context, firstName, lastName string) (string, error) {
	base := sanitizeUsername(firstName + lastName)
	if base == "" {
		base = "user"
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := s.users.ExistsWithUsername(ctx, candidate)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username uniqueness")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

// Login verifies credentials and mints a token pair. Unknown users and
// wrong passwords produce the same error so callers cannot enumerate
// accounts. The refresh token secret is returned in plaintext exactly
// once; only its hash is persisted, replacing any prior refresh state.
func (s *SessionManager) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Debug("login for unknown email", "email", email)
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if err := s.passwords.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.signer.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	secret, err := s.signer.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(s.refreshTokenTTL)
	if err := s.users.StoreRefreshToken(ctx, user.ID, HashRefreshToken(secret), expiresAt); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist refresh token")
	}

	return &AuthResult{
		User:         *summarize(user),
		AccessToken:  accessToken,
		RefreshToken: secret,
	}, nil
}

// RefreshToken exchanges a valid refresh token secret for a new access
// token. The stored refresh state is left untouched: the same secret
// remains valid until it expires or is revoked.
func (s *SessionManager) RefreshToken(ctx context.Context, secret string) (*CurrentUserResult, error) {
	user, err := s.lookupByRefreshSecret(ctx, secret)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.signer.GenerateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &CurrentUserResult{
		User:        *summarize(user),
		AccessToken: accessToken,
	}, nil
}

// RevokeRefreshToken clears the refresh state matching the given secret.
// A failed repository update is reported as a message payload rather than
// an error; lookup and expiry failures keep their usual error kinds.
func (s *SessionManager) RevokeRefreshToken(ctx context.Context, secret string) (*RevocationResult, error) {
	user, err := s.lookupByRefreshSecret(ctx, secret)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
			return nil, err
		}
		return nil, ErrRevocationFailed
	}

	if err := s.users.ClearRefreshToken(ctx, user.ID); err != nil {
		s.logger.Error("failed to clear refresh token", "id", user.ID, "error", err)
		return &RevocationResult{
			Revoked: false,
			Message: "could not revoke refresh token",
		}, nil
	}

	return &RevocationResult{
		Revoked: true,
		Message: "refresh token revoked",
	}, nil
}

// CurrentUser resolves the authenticated identity from the context and
// returns its summary without tokens attached.
func (s *SessionManager) CurrentUser(ctx context.Context) (*CurrentUserResult, error) {
	id, ok := CurrentUserID(ctx)
	if !ok {
		return nil, ErrUnableToFindSession
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve current user")
	}

	return &CurrentUserResult{User: *summarize(user)}, nil
}

// GetByID returns the summary for the given user id.
func (s *SessionManager) GetByID(ctx context.Context, id uuid.UUID) (*UserSummary, error) {
	user, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return summarize(user), nil
}

// Update mutates profile fields and bumps the modification timestamp.
func (s *SessionManager) Update(ctx context.Context, id uuid.UUID, update UserUpdate) (*UserSummary, error) {
	user, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FirstName != "" {
		user.FirstName = strings.TrimSpace(update.FirstName)
	}
	if update.LastName != "" {
		user.LastName = strings.TrimSpace(update.LastName)
	}
	if update.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(update.Email))
	}
	if update.Gender != "" {
		user.Gender = update.Gender
	}
	if update.Phone != "" {
		user.Phone = update.Phone
	}

	updated, err := s.users.UpdateFields(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
	}

	return summarize(updated), nil
}

// Delete removes the account outright. No soft delete at this layer.
func (s *SessionManager) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.HardDelete(ctx, id); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}
	return nil
}

func (s *SessionManager) lookupByRefreshSecret(ctx context.Context, secret string) (*User, error) {
	user, err := s.users.GetByRefreshTokenHash(ctx, HashRefreshToken(secret))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrRefreshTokenInvalid
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	if user.RefreshTokenExpired(time.Now()) {
		return nil, ErrRefreshTokenExpired
	}

	return user, nil
}

func (s *SessionManager) findByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.users.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}
	return user, nil
}

func summarize(user *User) *UserSummary {
	return &UserSummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		Email:     user.Email,
		Gender:    user.Gender,
		Phone:     user.Phone,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func sanitizeUsername(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// roleSourceFor adapts a UserStore into the signer's RoleSource when the
// store supports role lookups.
func roleSourceFor(users UserStore) RoleSource {
	if users == nil {
		return nil
	}
	return roleSourceFunc(users.Roles)
}

type roleSourceFunc func(ctx context.Context, user *User) ([]string, error)

func (f roleSourceFunc) Roles(ctx context.Context, user *User) ([]string, error) {
	return f(ctx, user)
}
