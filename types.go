package accounts

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds session auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetRefreshExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator verifies passwords against stored hashes. The
// session manager treats it as an external collaborator; the bcrypt
// implementation in this package is the default.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// RoleSource supplies the role list embedded in access token claims.
type RoleSource interface {
	Roles(ctx context.Context, user *User) ([]string, error)
}

// UserStore is the repository surface the session manager depends on.
// The Users repository implements it; tests substitute mocks.
type UserStore interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*User, error)
	ExistsWithEmail(ctx context.Context, email string) (bool, error)
	ExistsWithUsername(ctx context.Context, username string) (bool, error)
	CreateWithPassword(ctx context.Context, record *User, password string) (*User, error)
	UpdateFields(ctx context.Context, record *User) (*User, error)
	StoreRefreshToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Roles(ctx context.Context, user *User) ([]string, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
