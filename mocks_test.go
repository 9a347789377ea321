package accounts_test

import (
	"context"
	"time"

	accounts "github.com/goliatone/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserStore implements accounts.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*accounts.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetByRefreshTokenHash(ctx context.Context, hash string) (*accounts.User, error) {
	args := m.Called(ctx, hash)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) ExistsWithEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) ExistsWithUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) CreateWithPassword(ctx context.Context, record *accounts.User, password string) (*accounts.User, error) {
	args := m.Called(ctx, record, password)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) UpdateFields(ctx context.Context, record *accounts.User) (*accounts.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockUserStore) StoreRefreshToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, hash, expiresAt)
	return args.Error(0)
}

func (m *MockUserStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) Roles(ctx context.Context, user *accounts.User) ([]string, error) {
	args := m.Called(ctx, user)
	roles, _ := args.Get(0).([]string)
	return roles, args.Error(1)
}

// MockLogger implements accounts.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func newTestConfig() accounts.SimpleConfig {
	return accounts.SimpleConfig{
		SigningKey:        "test-signing-key",
		TokenExpiration:   15,
		RefreshExpiration: 48,
	}
}
