// Package documents provides the PostgreSQL-backed repository for document
// metadata rows. Document content lives in object storage.
package documents

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

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query :=
		`INSERT INTO documents (project_id, filename, storage_key, file_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		doc.ProjectID, doc.Filename, doc.StorageKey, doc.FileURL).Scan(&doc.ID, &doc.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query :=
		`SELECT id, project_id, filename, storage_key, file_url, created_at FROM documents
		 WHERE id = $1
		 `

	doc := &models.Document{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.ProjectID, &doc.Filename, &doc.StorageKey, &doc.FileURL, &doc.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	query :=
		`SELECT id, project_id, filename, storage_key, file_url, created_at FROM documents
		 WHERE project_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Filename, &d.StorageKey, &d.FileURL, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListFilenames returns the filenames already taken within the project.
// Used as the collision snapshot for upload batches.
func (r *PostgresRepository) ListFilenames(ctx context.Context, projectID string) ([]string, error) {
	query :=
		`SELECT filename FROM documents
		 WHERE project_id = $1
		 `

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM documents
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}

	return nil
}
