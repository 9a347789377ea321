package accounts

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// refreshTokenBytes is the entropy of a refresh token secret before encoding.
const refreshTokenBytes = 64

// TokenSigner issues signed access tokens and random refresh token secrets.
// Signing key, issuer, audience, and expiry are fixed at construction and
// never mutated afterwards.
type TokenSigner struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	roles           RoleSource
	logger          Logger
}

// NewTokenSigner creates a TokenSigner from the given config. A missing or
// empty signing key is a fatal configuration error, reported here rather
// than on first use.
func NewTokenSigner(cfg Config, roles RoleSource, logger Logger) (*TokenSigner, error) {
	if cfg == nil || cfg.GetSigningKey() == "" {
		return nil, ErrMissingSigningKey
	}

	if logger == nil {
		logger = defLogger{}
	}

	if roles == nil {
		roles = singleRoleSource{}
	}

	return &TokenSigner{
		signingKey:      []byte(cfg.GetSigningKey()),
		tokenExpiration: cfg.GetTokenExpiration(),
		issuer:          cfg.GetIssuer(),
		audience:        cfg.GetAudience(),
		roles:           roles,
		logger:          logger,
	}, nil
}

// GenerateRefreshToken produces a new opaque refresh token secret from a
// cryptographically secure random source. The plaintext is returned to the
// caller exactly once; only its hash is ever stored.
func (ts *TokenSigner) GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read random bytes")
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// HashRefreshToken computes the storable digest of a refresh token secret.
func HashRefreshToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// GenerateToken builds and signs an access token for the given user. The
// role list is read from the configured RoleSource. Callers must pass a
// resolved user record; no token is ever issued for a nil user.
func (ts *TokenSigner) GenerateToken(ctx context.Context, user *User) (string, error) {
	if user == nil {
		return "", goerrors.New("cannot issue token for nil user", goerrors.CategoryInternal)
	}

	roles, err := ts.roles.Roles(ctx, user)
	if err != nil {
		ts.logger.Error("TokenSigner failed to resolve roles", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve user roles")
	}

	claims := ts.newClaims(user, roles)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenSigner) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning structured claims
func (ts *TokenSigner) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenSigner validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenSigner validate could not decode or validate claims")
	return nil, ErrUnableToDecodeSession
}

func (ts *TokenSigner) newClaims(user *User, roles []string) *JWTClaims {
	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Minute)),
		},
		UID:               user.ID.String(),
		PreferredUsername: user.Username,
		EmailAddress:      user.Email,
		GivenName:         user.FirstName,
		FamilyName:        user.LastName,
		Gender:            user.Gender,
		RoleList:          roles,
	}
}

// singleRoleSource is the default RoleSource; it reports the user's base
// role without touching storage.
type singleRoleSource struct{}

func (singleRoleSource) Roles(_ context.Context, user *User) ([]string, error) {
	if user == nil || user.Role == "" {
		return nil, nil
	}
	return []string{string(user.Role)}, nil
}
