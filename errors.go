package accounts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrEmailRegistered is returned when a registration email is already taken
var ErrEmailRegistered = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode("EMAIL_IN_USE").
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials covers both unknown users and password mismatches.
// The two cases are deliberately indistinguishable to callers.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(goerrors.CodeUnauthorized)

// ErrRefreshTokenInvalid is returned when a presented refresh token
// matches no stored hash
var ErrRefreshTokenInvalid = goerrors.New("invalid refresh token", goerrors.CategoryAuth).
	WithTextCode("REFRESH_TOKEN_INVALID").
	WithCode(goerrors.CodeUnauthorized)

// ErrRefreshTokenExpired is returned when a refresh token matched but is
// past its expiry window
var ErrRefreshTokenExpired = goerrors.New("refresh token expired", goerrors.CategoryAuth).
	WithTextCode("REFRESH_TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrRevocationFailed masks unexpected internal failures during revocation
var ErrRevocationFailed = goerrors.New("could not revoke refresh token", goerrors.CategoryInternal).
	WithTextCode("REVOCATION_FAILED")

// ErrTokenExpired is returned for expired access tokens
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or verify
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(goerrors.CodeUnauthorized)

// ErrMissingSigningKey is a fatal configuration error raised at construction
var ErrMissingSigningKey = goerrors.New("signing key is required", goerrors.CategoryInternal).
	WithTextCode("SIGNING_KEY_MISSING")

// ErrMismatchedHashAndPassword is the bcrypt mismatch error
var ErrMismatchedHashAndPassword = goerrors.New("hash and password mismatch", goerrors.CategoryAuth).
	WithTextCode("PASSWORD_MISMATCH").
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is returned when a required string value is empty
var ErrNoEmptyString = goerrors.New("value should not be an empty string", goerrors.CategoryValidation).
	WithTextCode("EMPTY_STRING").
	WithCode(goerrors.CodeBadRequest)

// ErrUnableToFindSession is the error when the request carries no session
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT claims from the request
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode("SESSION_DECODE").
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
