// Package participants provides the PostgreSQL-backed repository for
// project participant rows.
package participants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/dbx"
	"github.com/mlebedeva/projectdock/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, projectID, userID string) (*models.ProjectParticipant, error) {
	query :=
		`SELECT id, project_id, user_id, created_at FROM project_participants
		 WHERE project_id = $1 AND user_id = $2
		 `

	p := &models.ProjectParticipant{}
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&p.ID, &p.ProjectID, &p.UserID, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

// Create inserts a participant row if one does not exist for the pair yet,
// and returns the existing row otherwise. The uniqueness constraint on
// (project_id, user_id) guarantees at most one row per pair even under
// concurrent invites.
func (r *PostgresRepository) Create(ctx context.Context, projectID, userID string) (*models.ProjectParticipant, error) {
	query :=
		`INSERT INTO project_participants (project_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (project_id, user_id) DO NOTHING
		 RETURNING id, project_id, user_id, created_at
		 `

	p := &models.ProjectParticipant{}
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&p.ID, &p.ProjectID, &p.UserID, &p.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// conflict path: the pair already exists
			return r.Get(ctx, projectID, userID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.ProjectParticipant, error) {
	query :=
		`SELECT id, project_id, user_id, created_at FROM project_participants
		 WHERE project_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.ProjectParticipant
	for rows.Next() {
		var p models.ProjectParticipant
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
