package projects

import (
	"context"

	"github.com/mlebedeva/projectdock/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListOwnedBy(ctx context.Context, userID string) ([]*models.Project, error)
	ListParticipating(ctx context.Context, userID string) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	SetLogoURL(ctx context.Context, projectID string, logoURL string) error
	Delete(ctx context.Context, id string) error
}
