package accounts_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func newClaims() *accounts.JWTClaims {
	return &accounts.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-id",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UID:               "user-id",
		PreferredUsername: "janedoe",
		EmailAddress:      "jane@example.com",
		RoleList:          []string{"member", "admin"},
	}
}

func TestJWTClaimsAccessors(t *testing.T) {
	claims := newClaims()

	assert.Equal(t, "subject-id", claims.Subject())
	assert.Equal(t, "user-id", claims.UserID())
	assert.Equal(t, "janedoe", claims.Username())
	assert.Equal(t, "jane@example.com", claims.Email())
	assert.Equal(t, []string{"member", "admin"}, claims.Roles())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Expires(), time.Minute)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), time.Minute)
}

func TestJWTClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &accounts.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "only-subject"},
	}
	assert.Equal(t, "only-subject", claims.UserID())
}

func TestJWTClaimsRoleChecks(t *testing.T) {
	claims := newClaims()

	assert.True(t, claims.HasRole("member"))
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("owner"))

	assert.True(t, claims.IsAtLeast(accounts.RoleGuest))
	assert.True(t, claims.IsAtLeast(accounts.RoleAdmin))
	assert.False(t, claims.IsAtLeast(accounts.RoleOwner))
	assert.False(t, claims.IsAtLeast("bogus"))
}

func TestJWTClaimsEmptyRoleList(t *testing.T) {
	claims := &accounts.JWTClaims{}

	assert.Empty(t, claims.Roles())
	assert.False(t, claims.HasRole("member"))
	assert.False(t, claims.IsAtLeast(accounts.RoleGuest))
}
