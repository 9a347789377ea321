package accounts_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryUserStore is a map backed accounts.UserStore used to exercise the
// full session lifecycle without a database.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*accounts.User

	failClear bool
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[uuid.UUID]*accounts.User{}}
}

var _ accounts.UserStore = (*memoryUserStore)(nil)

func (s *memoryUserStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound()
	}

	user, ok := s.users[uid]
	if !ok {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (s *memoryUserStore) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memoryUserStore) GetByRefreshTokenHash(ctx context.Context, hash string) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.RefreshTokenHash != nil && *user.RefreshTokenHash == hash {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *memoryUserStore) ExistsWithEmail(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryUserStore) ExistsWithUsername(ctx context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryUserStore) CreateWithPassword(ctx context.Context, record *accounts.User, password string) (*accounts.User, error) {
	hash, err := accounts.BcryptAuthenticator{Cost: 4}.HashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = accounts.RoleMember
	}
	record.PasswordHash = hash

	s.users[record.ID] = record
	return record, nil
}

func (s *memoryUserStore) UpdateFields(ctx context.Context, record *accounts.User) (*accounts.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[record.ID]; !ok {
		return nil, repository.NewRecordNotFound()
	}
	s.users[record.ID] = record
	return record, nil
}

func (s *memoryUserStore) StoreRefreshToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.NewRecordNotFound()
	}
	user.SetRefreshToken(hash, expiresAt)
	return nil
}

func (s *memoryUserStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failClear {
		return goerrors.New("storage unavailable", goerrors.CategoryInternal)
	}

	user, ok := s.users[id]
	if !ok {
		return repository.NewRecordNotFound()
	}
	user.ClearRefreshToken()
	return nil
}

func (s *memoryUserStore) HardDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.NewRecordNotFound()
	}
	delete(s.users, id)
	return nil
}

func (s *memoryUserStore) Roles(ctx context.Context, user *accounts.User) ([]string, error) {
	if user == nil || user.Role == "" {
		return nil, nil
	}
	return []string{string(user.Role)}, nil
}

func TestSessionLifecycleIntegration(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUserStore()

	manager, err := accounts.NewSessionManager(store, newTestConfig())
	require.NoError(t, err)
	manager.WithPasswordAuthenticator(accounts.BcryptAuthenticator{Cost: 4})

	// two users with the same name: the second username gets a suffix
	first, err := manager.Register(ctx, accounts.Registration{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "janedoe", first.Username)

	second, err := manager.Register(ctx, accounts.Registration{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane.other@example.com",
		Password:  "password1234",
	})
	require.NoError(t, err)
	assert.Equal(t, "janedoe1", second.Username)

	// email uniqueness is case-insensitive
	_, err = manager.Register(ctx, accounts.Registration{
		FirstName: "Impostor",
		LastName:  "Doe",
		Email:     "JANE@EXAMPLE.COM",
		Password:  "password1234",
	})
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, accounts.ErrEmailRegistered))

	// login stores only the digest of the refresh secret
	auth, err := manager.Login(ctx, "jane@example.com", "password1234")
	require.NoError(t, err)
	require.NotEmpty(t, auth.RefreshToken)

	stored := store.users[first.ID]
	require.NotNil(t, stored.RefreshTokenHash)
	assert.Equal(t, accounts.HashRefreshToken(auth.RefreshToken), *stored.RefreshTokenHash)
	assert.NotEqual(t, auth.RefreshToken, *stored.RefreshTokenHash)
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), *stored.RefreshTokenExpiresAt, time.Minute)

	// a second login displaces the previous refresh token
	previousHash := *stored.RefreshTokenHash
	auth2, err := manager.Login(ctx, "jane@example.com", "password1234")
	require.NoError(t, err)
	assert.NotEqual(t, previousHash, *stored.RefreshTokenHash)

	_, err = manager.RefreshToken(ctx, auth.RefreshToken)
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, accounts.ErrRefreshTokenInvalid))

	// refresh succeeds with the live secret and does not rotate it
	refreshed, err := manager.RefreshToken(ctx, auth2.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, accounts.HashRefreshToken(auth2.RefreshToken), *stored.RefreshTokenHash)

	claims, err := manager.TokenSigner().Validate(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), claims.UserID())

	// revoke clears the slot; further refreshes fail
	revoked, err := manager.RevokeRefreshToken(ctx, auth2.RefreshToken)
	require.NoError(t, err)
	assert.True(t, revoked.Revoked)
	assert.Nil(t, stored.RefreshTokenHash)

	_, err = manager.RefreshToken(ctx, auth2.RefreshToken)
	require.Error(t, err)
	assert.True(t, goerrors.Is(err, accounts.ErrRefreshTokenInvalid))
}

func TestRevokeSoftFailureIntegration(t *testing.T) {
	ctx := context.Background()
	store := newMemoryUserStore()

	manager, err := accounts.NewSessionManager(store, newTestConfig())
	require.NoError(t, err)
	manager.WithPasswordAuthenticator(accounts.BcryptAuthenticator{Cost: 4})

	_, err = manager.Register(ctx, accounts.Registration{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password1234",
	})
	require.NoError(t, err)

	auth, err := manager.Login(ctx, "jane@example.com", "password1234")
	require.NoError(t, err)

	store.failClear = true

	result, err := manager.RevokeRefreshToken(ctx, auth.RefreshToken)
	require.NoError(t, err)
	assert.False(t, result.Revoked)
	assert.NotEmpty(t, result.Message)

	// the token is still live since nothing was cleared
	store.failClear = false
	_, err = manager.RefreshToken(ctx, auth.RefreshToken)
	assert.NoError(t, err)
}
