// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mlebedeva/projectdock/internal/dbx"
	"github.com/mlebedeva/projectdock/internal/server/migrations"
	"github.com/mlebedeva/projectdock/internal/server/repositories/documents"
	"github.com/mlebedeva/projectdock/internal/server/repositories/participants"
	"github.com/mlebedeva/projectdock/internal/server/repositories/projects"
	"github.com/mlebedeva/projectdock/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Participants(db dbx.DBTX) participants.Repository {
	return participants.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// Open connects to PostgreSQL through the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
