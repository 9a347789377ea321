package accounts

import (
	"context"
	"database/sql"
	"io/fs"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/schema"
)

// RegisterModels registers the account models with the persistence layer.
// Call once before building a persistence client.
func RegisterModels() {
	persistence.RegisterModel((*User)(nil))
	persistence.RegisterModel((*RoleAssignment)(nil))
}

// SetupPersistence builds a persistence client with the account models and
// embedded migrations registered, runs migrations, and returns the client.
func SetupPersistence(ctx context.Context, cfg persistence.Config, db *sql.DB, dialect schema.Dialect) (*persistence.Client, error) {
	RegisterModels()

	client, err := persistence.New(cfg, db, dialect)
	if err != nil {
		return nil, err
	}

	migrations, err := fs.Sub(GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	client.RegisterDialectMigrations(
		migrations,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)

	if err := client.ValidateDialects(ctx); err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// NewRepositoryManagerFromClient wires a repository manager over the
// client's bun connection.
func NewRepositoryManagerFromClient(client *persistence.Client, opts ...UsersOption) RepositoryManager {
	return NewRepositoryManager(client.DB(), opts...)
}
