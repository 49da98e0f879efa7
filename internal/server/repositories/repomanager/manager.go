package repomanager

import (
	"context"
	"database/sql"

	"github.com/mlebedeva/projectdock/internal/dbx"
	"github.com/mlebedeva/projectdock/internal/server/repositories/documents"
	"github.com/mlebedeva/projectdock/internal/server/repositories/participants"
	"github.com/mlebedeva/projectdock/internal/server/repositories/projects"
	"github.com/mlebedeva/projectdock/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// the same repository code against *sql.DB and against an open transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Projects(db dbx.DBTX) projects.Repository
	Participants(db dbx.DBTX) participants.Repository
	Documents(db dbx.DBTX) documents.Repository
}
