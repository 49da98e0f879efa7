// Package projects provides the PostgreSQL-backed repository for projects.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/dbx"
	"github.com/mlebedeva/projectdock/internal/server/models"
)

// PostgresRepository implements project storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query :=
		`INSERT INTO projects (owner_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		project.OwnerID, project.Name, project.Description).Scan(&project.ID, &project.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query :=
		`SELECT id, owner_id, name, description, logo_url, created_at FROM projects
		 WHERE id = $1
		 `

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.OwnerID, &project.Name, &project.Description,
		&project.LogoURL, &project.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) ListOwnedBy(ctx context.Context, userID string) ([]*models.Project, error) {
	query :=
		`SELECT id, owner_id, name, description, logo_url, created_at FROM projects
		 WHERE owner_id = $1
		 ORDER BY created_at
		 `

	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListParticipating(ctx context.Context, userID string) ([]*models.Project, error) {
	query :=
		`SELECT p.id, p.owner_id, p.name, p.description, p.logo_url, p.created_at
		 FROM projects p
		 JOIN project_participants pp ON pp.project_id = p.id
		 WHERE pp.user_id = $1
		 ORDER BY p.created_at
		 `

	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.LogoURL, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, project *models.Project) error {
	query :=
		`UPDATE projects SET name = $1, description = $2
		 WHERE id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, project.Name, project.Description, project.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return ensureOneRow(res)
}

func (r *PostgresRepository) SetLogoURL(ctx context.Context, projectID string, logoURL string) error {
	query :=
		`UPDATE projects SET logo_url = $1
		 WHERE id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, logoURL, projectID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return ensureOneRow(res)
}

// Delete removes the project row. Documents and participant rows go with it
// through the schema's ON DELETE CASCADE constraints.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM projects
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return ensureOneRow(res)
}

func ensureOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
