package participants

import (
	"context"

	"github.com/mlebedeva/projectdock/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, projectID, userID string) (*models.ProjectParticipant, error)
	Create(ctx context.Context, projectID, userID string) (*models.ProjectParticipant, error)
	ListByProject(ctx context.Context, projectID string) ([]*models.ProjectParticipant, error)
}
