package accounts

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var StoreRefreshTokenSQL = `UPDATE "users" AS "usr"
SET
	"refresh_token_hash" = ?,
	"refresh_token_expires_at" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var ClearRefreshTokenSQL = `UPDATE "users" AS "usr"
SET
	"refresh_token_hash" = NULL,
	"refresh_token_expires_at" = NULL,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByRefreshTokenHash(ctx context.Context, hash string) (*User, error)
	GetByRefreshTokenHashTx(ctx context.Context, tx bun.IDB, hash string) (*User, error)
	ExistsWithEmail(ctx context.Context, email string) (bool, error)
	ExistsWithUsername(ctx context.Context, username string) (bool, error)

	CreateWithPassword(ctx context.Context, record *User, password string) (*User, error)
	CreateWithPasswordTx(ctx context.Context, tx bun.IDB, record *User, password string) (*User, error)
	UpdateFields(ctx context.Context, record *User) (*User, error)

	StoreRefreshToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	StoreRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
	ClearRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	Roles(ctx context.Context, user *User) ([]string, error)
	AssignRole(ctx context.Context, id uuid.UUID, role UserRole) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db        *bun.DB
	passwords PasswordAuthenticator
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
	_ UserStore                    = (*users)(nil)
	_ RoleSource                   = (*users)(nil)
)

type UsersOption func(*users)

// WithPasswordAuthenticator overrides the credential hasher used by
// CreateWithPassword.
func WithPasswordAuthenticator(p PasswordAuthenticator) UsersOption {
	return func(u *users) {
		if p != nil {
			u.passwords = p
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	repoUsers := &users{
		Repository: repo,
		db:         db,
		passwords:  BcryptAuthenticator{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}

	return repoUsers
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx looks a user up by email. The comparison is
// case-insensitive; there is exactly one uniqueness rule for emails in
// this package.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("LOWER(?TableAlias.email) = LOWER(?)", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByRefreshTokenHash(ctx context.Context, hash string) (*User, error) {
	return a.GetByRefreshTokenHashTx(ctx, a.db, hash)
}

// GetByRefreshTokenHashTx resolves the user holding the given refresh token
// hash. Exact match only.
func (a *users) GetByRefreshTokenHashTx(ctx context.Context, tx bun.IDB, hash string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.refresh_token_hash = ?", hash).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ExistsWithEmail(ctx context.Context, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("LOWER(?TableAlias.email) = LOWER(?)", strings.TrimSpace(email)).
		Exists(ctx)
}

func (a *users) ExistsWithUsername(ctx context.Context, username string) (bool, error) {
	return a.db.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.username = ?", username).
		Exists(ctx)
}

func (a *users) CreateWithPassword(ctx context.Context, record *User, password string) (*User, error) {
	var created *User
	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		created, err = a.CreateWithPasswordTx(ctx, tx, record, password)
		return err
	})
	return created, err
}

// CreateWithPasswordTx creates the user plus its base role assignment in a
// single transaction. Hashing is delegated to the configured
// PasswordAuthenticator.
func (a *users) CreateWithPasswordTx(ctx context.Context, tx bun.IDB, record *User, password string) (*User, error) {
	hash, err := a.passwords.HashPassword(password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password provided")
	}

	prepareUserDefaults(record)
	record.PasswordHash = hash

	created, err := a.Repository.CreateTx(ctx, tx, record)
	if err != nil {
		return nil, err
	}

	assignment := &RoleAssignment{
		ID:     uuid.New(),
		UserID: created.ID,
		Role:   created.Role,
	}
	if _, err := tx.NewInsert().Model(assignment).Exec(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateFields persists profile fields on an existing record and bumps
// updated_at.
func (a *users) UpdateFields(ctx context.Context, record *User) (*User, error) {
	if record == nil || record.ID == uuid.Nil {
		return nil, repository.NewRecordNotFound()
	}

	now := time.Now()
	record.UpdatedAt = &now

	return a.Repository.Update(ctx, record, repository.UpdateByID(record.ID.String()))
}

func (a *users) StoreRefreshToken(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	return a.StoreRefreshTokenTx(ctx, a.db, id, hash, expiresAt)
}

// StoreRefreshTokenTx overwrites the user's refresh token state. Hash and
// expiry are written together; any prior token is replaced. Last writer
// wins across concurrent logins.
func (a *users) StoreRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expiresAt time.Time) error {
	res, err := a.Repository.RawTx(ctx, tx, StoreRefreshTokenSQL, hash, expiresAt, time.Now(), id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return a.ClearRefreshTokenTx(ctx, a.db, id)
}

// ClearRefreshTokenTx nulls both refresh token columns.
func (a *users) ClearRefreshTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := a.Repository.RawTx(ctx, tx, ClearRefreshTokenSQL, time.Now(), id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// Roles returns the role list for token claims: every assignment for the
// user, falling back to the base role when no assignments exist.
func (a *users) Roles(ctx context.Context, user *User) ([]string, error) {
	if user == nil {
		return nil, nil
	}

	var names []string
	err := a.db.NewSelect().
		Model((*RoleAssignment)(nil)).
		Column("role").
		Where("user_id = ?", user.ID).
		Order("role ASC").
		Scan(ctx, &names)

	if err != nil {
		return nil, err
	}

	if len(names) == 0 && user.Role != "" {
		names = []string{string(user.Role)}
	}

	return names, nil
}

func (a *users) AssignRole(ctx context.Context, id uuid.UUID, role UserRole) error {
	assignment := &RoleAssignment{
		ID:     uuid.New(),
		UserID: id,
		Role:   role,
	}
	_, err := a.db.NewInsert().Model(assignment).Exec(ctx)
	return err
}

// HardDelete removes the user row outright, bypassing the soft delete
// column, along with its role assignments.
func (a *users) HardDelete(ctx context.Context, id uuid.UUID) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*RoleAssignment)(nil)).
			Where("user_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*User)(nil)).
			Where("id = ?", id).
			ForceDelete().
			Exec(ctx)
		if err != nil {
			return err
		}

		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}

		return nil
	})
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleMember
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	now := time.Now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	if record.UpdatedAt == nil {
		record.UpdatedAt = &now
	}
}
