package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUserMessageType(t *testing.T) {
	assert.Equal(t, "user.register", accounts.RegisterUserMessage{}.Type())
}

func TestRegisterUserHandlerExecute(t *testing.T) {
	store := newMemoryUserStore()
	manager, err := accounts.NewSessionManager(store, newTestConfig())
	require.NoError(t, err)
	manager.WithPasswordAuthenticator(accounts.BcryptAuthenticator{Cost: 4})

	handler := accounts.NewRegisterUserHandler(manager)

	var created *accounts.UserSummary
	err = handler.Execute(context.Background(), accounts.RegisterUserMessage{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password1234",
		OnResponse: func(summary *accounts.UserSummary) {
			created = summary
		},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "janedoe", created.Username)
	assert.Equal(t, "jane@example.com", created.Email)
}

func TestRegisterUserHandlerHashidIdentity(t *testing.T) {
	store := newMemoryUserStore()
	manager, err := accounts.NewSessionManager(store, newTestConfig())
	require.NoError(t, err)
	manager.WithPasswordAuthenticator(accounts.BcryptAuthenticator{Cost: 4})

	handler := accounts.NewRegisterUserHandler(manager)

	var created *accounts.UserSummary
	err = handler.Execute(context.Background(), accounts.RegisterUserMessage{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password1234",
		UseHashid: true,
		OnResponse: func(summary *accounts.UserSummary) {
			created = summary
		},
	})

	require.NoError(t, err)
	require.NotNil(t, created)

	// hashid identities are deterministic per email
	expected, err := hashid.NewUUID("jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, expected, created.ID)
}

func TestRegisterUserHandlerCancelledContext(t *testing.T) {
	store := newMemoryUserStore()
	manager, err := accounts.NewSessionManager(store, newTestConfig())
	require.NoError(t, err)

	handler := accounts.NewRegisterUserHandler(manager)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = handler.Execute(ctx, accounts.RegisterUserMessage{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password1234",
	})

	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, goerrors.CategoryOperation, richErr.Category)
}
