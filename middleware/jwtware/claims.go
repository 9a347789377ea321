package jwtware

import (
	"github.com/golang-jwt/jwt/v5"
)

// roleRank mirrors the account role hierarchy so locally parsed tokens can
// answer authorization checks without importing the accounts package.
var roleRank = map[string]int{
	"guest":  0,
	"member": 1,
	"admin":  2,
	"owner":  3,
}

// mapClaims wraps jwt.MapClaims parsed locally when no TokenValidator is
// configured.
type mapClaims jwt.MapClaims

var _ AuthClaims = (mapClaims)(nil)

func (m mapClaims) Subject() string {
	sub, _ := jwt.MapClaims(m).GetSubject()
	return sub
}

func (m mapClaims) UserID() string {
	if uid, ok := m["uid"].(string); ok && uid != "" {
		return uid
	}
	return m.Subject()
}

func (m mapClaims) Username() string {
	username, _ := m["preferred_username"].(string)
	return username
}

func (m mapClaims) Email() string {
	email, _ := m["email"].(string)
	return email
}

func (m mapClaims) Roles() []string {
	raw, ok := m["roles"].([]any)
	if !ok {
		return nil
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

func (m mapClaims) HasRole(role string) bool {
	for _, r := range m.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

func (m mapClaims) IsAtLeast(minRole string) bool {
	min, ok := roleRank[minRole]
	if !ok {
		return false
	}

	for _, r := range m.Roles() {
		if rank, ok := roleRank[r]; ok && rank >= min {
			return true
		}
	}
	return false
}
