package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestSimpleConfigDefaults(t *testing.T) {
	cfg := accounts.SimpleConfig{SigningKey: "secret"}

	assert.Equal(t, "secret", cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.Equal(t, accounts.DefaultTokenExpiration, cfg.GetTokenExpiration())
	assert.Equal(t, accounts.DefaultRefreshExpiration, cfg.GetRefreshExpiration())
	assert.Equal(t, "header:Authorization", cfg.GetTokenLookup())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Empty(t, cfg.GetIssuer())
	assert.Empty(t, cfg.GetAudience())
}

func TestSimpleConfigOverrides(t *testing.T) {
	cfg := accounts.SimpleConfig{
		SigningKey:        "secret",
		SigningMethod:     "HS512",
		ContextKey:        "identity",
		TokenExpiration:   30,
		RefreshExpiration: 24,
		TokenLookup:       "cookie:jwt",
		AuthScheme:        "Token",
		Issuer:            "accounts.test",
		Audience:          []string{"api", "web"},
	}

	assert.Equal(t, "HS512", cfg.GetSigningMethod())
	assert.Equal(t, "identity", cfg.GetContextKey())
	assert.Equal(t, 30, cfg.GetTokenExpiration())
	assert.Equal(t, 24, cfg.GetRefreshExpiration())
	assert.Equal(t, "cookie:jwt", cfg.GetTokenLookup())
	assert.Equal(t, "Token", cfg.GetAuthScheme())
	assert.Equal(t, "accounts.test", cfg.GetIssuer())
	assert.Equal(t, []string{"api", "web"}, cfg.GetAudience())
}
