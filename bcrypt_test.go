package accounts_test

import (
	"testing"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hasher := accounts.BcryptAuthenticator{Cost: 4}

	hash, err := hasher.HashPassword("some long passphrase")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "some long passphrase", hash)

	assert.NoError(t, hasher.ComparePasswordAndHash("some long passphrase", hash))

	err = hasher.ComparePasswordAndHash("a different passphrase", hash)
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, accounts.ErrMismatchedHashAndPassword))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := accounts.HashPassword("")
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, accounts.ErrNoEmptyString))

	_, err = accounts.BcryptAuthenticator{}.HashPassword("")
	require.Error(t, err)
}

func TestHashesAreSalted(t *testing.T) {
	hasher := accounts.BcryptAuthenticator{Cost: 4}

	h1, err := hasher.HashPassword("same input")
	require.NoError(t, err)
	h2, err := hasher.HashPassword("same input")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NoError(t, hasher.ComparePasswordAndHash("same input", h1))
	assert.NoError(t, hasher.ComparePasswordAndHash("same input", h2))
}

func TestRandomPasswordHash(t *testing.T) {
	h := accounts.RandomPasswordHash()
	assert.NotEmpty(t, h)
}
