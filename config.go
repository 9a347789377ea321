package accounts

import "time"

// DefaultRefreshExpiration is the refresh token lifetime in hours.
const DefaultRefreshExpiration = 48

// DefaultTokenExpiration is the access token lifetime in minutes.
const DefaultTokenExpiration = 15

// SimpleConfig is an immutable Config implementation. Construct it once at
// process start and pass it by reference; nothing in this package reads
// configuration from ambient state at call time.
type SimpleConfig struct {
	SigningKey        string
	SigningMethod     string
	ContextKey        string
	TokenExpiration   int
	RefreshExpiration int
	TokenLookup       string
	AuthScheme        string
	Issuer            string
	Audience          []string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetSigningMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c SimpleConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "user"
	}
	return c.ContextKey
}

// GetTokenExpiration returns the access token lifetime in minutes.
func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return DefaultTokenExpiration
	}
	return c.TokenExpiration
}

// GetRefreshExpiration returns the refresh token lifetime in hours.
func (c SimpleConfig) GetRefreshExpiration() int {
	if c.RefreshExpiration <= 0 {
		return DefaultRefreshExpiration
	}
	return c.RefreshExpiration
}

func (c SimpleConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

func (c SimpleConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

// refreshTTL converts the configured refresh expiration to a duration.
func refreshTTL(cfg Config) time.Duration {
	hours := cfg.GetRefreshExpiration()
	if hours <= 0 {
		hours = DefaultRefreshExpiration
	}
	return time.Duration(hours) * time.Hour
}
