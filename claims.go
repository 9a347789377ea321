package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured access token claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Email() string
	Roles() []string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims. Identity fields
// follow the registered OIDC claim names where one exists.
type JWTClaims struct {
	jwt.RegisteredClaims
	UID               string   `json:"uid,omitempty"`
	PreferredUsername string   `json:"preferred_username,omitempty"`
	EmailAddress      string   `json:"email,omitempty"`
	GivenName         string   `json:"given_name,omitempty"`
	FamilyName        string   `json:"family_name,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	RoleList          []string `json:"roles,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Username returns the preferred username claim
func (c *JWTClaims) Username() string {
	return c.PreferredUsername
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.EmailAddress
}

// Roles returns the role list claim
func (c *JWTClaims) Roles() []string {
	return c.RoleList
}

// HasRole checks if the user holds a specific role
func (c *JWTClaims) HasRole(role string) bool {
	for _, r := range c.RoleList {
		if r == role {
			return true
		}
	}
	return false
}

// IsAtLeast checks if any of the user's roles meets the minimum level
func (c *JWTClaims) IsAtLeast(minRole string) bool {
	for _, r := range c.RoleList {
		if RoleIsAtLeast(UserRole(r), UserRole(minRole)) {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
