package documents

import (
	"context"

	"github.com/mlebedeva/projectdock/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, id string) (*models.Document, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.Document, error)
	ListFilenames(ctx context.Context, projectID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}
