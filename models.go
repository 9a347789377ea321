package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's global role
type UserRole = string

const (
	// RoleGuest is a guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleMember is a member (i.e. view, edit)
	RoleMember UserRole = "member"
	// RoleAdmin is an admin role (i.e. view, edit, create)
	RoleAdmin UserRole = "admin"
	// RoleOwner is an owner role (i.e. view, edit, create, delete)
	RoleOwner UserRole = "owner"
)

// User is the account model. Refresh token state lives on the row itself:
// a user holds at most one active refresh token, and its hash and expiry
// are always set or cleared together.
type User struct {
	bun.BaseModel         `bun:"table:users,alias:usr"`
	ID                    uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role                  UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName             string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName              string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Username              string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email                 string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone                 string     `bun:"phone_number" json:"phone_number,omitempty"`
	Gender                string     `bun:"gender" json:"gender,omitempty"`
	PasswordHash          string     `bun:"password_hash" json:"-"`
	RefreshTokenHash      *string    `bun:"refresh_token_hash,nullzero" json:"-"`
	RefreshTokenExpiresAt *time.Time `bun:"refresh_token_expires_at,nullzero" json:"-"`
	CreatedAt             *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt             *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt             *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// SetRefreshToken stores the refresh token hash and its expiry on the record.
// Both fields are written together.
func (u *User) SetRefreshToken(hash string, expiresAt time.Time) *User {
	u.RefreshTokenHash = &hash
	u.RefreshTokenExpiresAt = &expiresAt
	return u
}

// ClearRefreshToken removes the refresh token state from the record.
func (u *User) ClearRefreshToken() *User {
	u.RefreshTokenHash = nil
	u.RefreshTokenExpiresAt = nil
	return u
}

// HasRefreshToken reports whether the record carries refresh token state.
func (u *User) HasRefreshToken() bool {
	return u.RefreshTokenHash != nil && u.RefreshTokenExpiresAt != nil
}

// RefreshTokenExpired reports whether the stored refresh token expiry
// is behind the given instant. Records without refresh state count
// as expired.
func (u *User) RefreshTokenExpired(now time.Time) bool {
	if u.RefreshTokenExpiresAt == nil {
		return true
	}
	return u.RefreshTokenExpiresAt.Before(now)
}

// RoleAssignment is a single role granted to a user. The role list embedded
// in access tokens is read from these rows.
type RoleAssignment struct {
	bun.BaseModel `bun:"table:user_roles,alias:url"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	Role          UserRole   `bun:"role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
