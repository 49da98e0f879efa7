package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/dbx"
	"github.com/mlebedeva/projectdock/internal/logging"
	"github.com/mlebedeva/projectdock/internal/server/blob"
	"github.com/mlebedeva/projectdock/internal/server/config"
	"github.com/mlebedeva/projectdock/internal/server/membership"
	"github.com/mlebedeva/projectdock/internal/server/models"
	"github.com/mlebedeva/projectdock/internal/server/repositories/repomanager"
)

// ProjectService handles project lifecycle and the invite workflow.
// Existence is always resolved before access: a missing project is NotFound
// for everyone, an existing but unreachable one is Forbidden.
type ProjectService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	resolver   *membership.Resolver
	store      blob.Store
	docBucket  string
	logoBucket string
	logger     logging.Logger
}

func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, store blob.Store, cfg *config.Config, l logging.Logger) *ProjectService {
	return &ProjectService{
		db:         db,
		repos:      m,
		resolver:   membership.NewResolver(m.Projects(db), m.Participants(db)),
		store:      store,
		docBucket:  cfg.S3DocumentBucket,
		logoBucket: cfg.S3LogoBucket,
		logger:     l.With("module", "project_service"),
	}
}

// Create makes a new project owned by ownerID. The name must be non-empty
// after trimming; there is no uniqueness constraint on names.
func (s *ProjectService) Create(ctx context.Context, ownerID, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name must not be empty", common.ErrValidation)
	}

	project := &models.Project{OwnerID: ownerID, Name: name, Description: description}
	repo := s.repos.Projects(s.db)
	p, err := repo.Create(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}
	return p, nil
}

// ListForUser returns summaries for every project the user owns or
// participates in, with nested document filenames. Projects are
// de-duplicated by id in case both paths ever yield the same project.
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]*models.ProjectSummary, error) {
	projectRepo := s.repos.Projects(s.db)
	docRepo := s.repos.Documents(s.db)

	owned, err := projectRepo.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing owned projects: %w", err)
	}
	participating, err := projectRepo.ListParticipating(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing participating projects: %w", err)
	}

	seen := make(map[string]struct{})
	summaries := make([]*models.ProjectSummary, 0, len(owned)+len(participating))
	for _, p := range append(owned, participating...) {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}

		filenames, err := docRepo.ListFilenames(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing documents for project %s: %w", p.ID, err)
		}
		summaries = append(summaries, &models.ProjectSummary{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Documents:   filenames,
		})
	}

	return summaries, nil
}

// Get returns the project if the requester can read it.
func (s *ProjectService) Get(ctx context.Context, projectID, requesterID string) (*models.Project, error) {
	project, err := s.repos.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	level, err := s.resolver.AccessLevel(ctx, requesterID, projectID)
	if err != nil {
		return nil, err
	}
	if level == membership.None {
		return nil, common.ErrForbidden
	}

	return project, nil
}

// Update changes name and description. Owner only: participants read
// project metadata but never mutate it.
func (s *ProjectService) Update(ctx context.Context, projectID, requesterID, name, description string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name must not be empty", common.ErrValidation)
	}

	repo := s.repos.Projects(s.db)
	project, err := repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	level, err := s.resolver.AccessLevel(ctx, requesterID, projectID)
	if err != nil {
		return nil, err
	}
	if level != membership.Owner {
		return nil, common.ErrForbidden
	}

	project.Name = name
	project.Description = description
	if err := repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("error updating project: %w", err)
	}

	return project, nil
}

// Delete removes the project and everything it owns. The relational cascade
// (documents, participants) commits in one transaction; blob cleanup runs
// afterwards and cannot be part of it. A cleanup failure leaves orphaned
// objects, which is reported rather than masked.
func (s *ProjectService) Delete(ctx context.Context, projectID, requesterID string) error {
	if _, err := s.repos.Projects(s.db).GetByID(ctx, projectID); err != nil {
		return err
	}

	level, err := s.resolver.AccessLevel(ctx, requesterID, projectID)
	if err != nil {
		return err
	}
	if level != membership.Owner {
		return common.ErrForbidden
	}

	// Snapshot document keys before the rows disappear.
	docs, err := s.repos.Documents(s.db).ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("error listing documents: %w", err)
	}
	docKeys := make([]string, 0, len(docs))
	for _, d := range docs {
		docKeys = append(docKeys, d.StorageKey)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Projects(tx).Delete(ctx, projectID)
	})
	if err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}

	return s.cleanupBlobs(ctx, projectID, docKeys)
}

// cleanupBlobs removes the project's objects from both buckets. Failures are
// logged with the orphaned prefix and surfaced as an upstream-store error.
func (s *ProjectService) cleanupBlobs(ctx context.Context, projectID string, docKeys []string) error {
	prefix := projectID + "/"

	if err := s.store.DeleteBatch(ctx, s.docBucket, docKeys); err != nil {
		s.logger.Error(ctx, "document blob cleanup failed, objects orphaned",
			"project_id", projectID, "bucket", s.docBucket, "prefix", prefix, "error", err.Error())
		return fmt.Errorf("%w: project rows deleted but document objects remain under %s", common.ErrUpstreamStore, prefix)
	}

	logoKeys, err := s.store.ListKeys(ctx, s.logoBucket, prefix)
	if err == nil {
		err = s.store.DeleteBatch(ctx, s.logoBucket, logoKeys)
	}
	if err != nil {
		s.logger.Error(ctx, "logo blob cleanup failed, objects orphaned",
			"project_id", projectID, "bucket", s.logoBucket, "prefix", prefix, "error", err.Error())
		return fmt.Errorf("%w: project rows deleted but logo objects remain under %s", common.ErrUpstreamStore, prefix)
	}

	return nil
}

// Invite grants inviteeEmail participant access to the project. Owner only.
// Inviting the owner (or yourself) is a conflict; inviting an existing
// participant is a no-op returning the existing record.
func (s *ProjectService) Invite(ctx context.Context, projectID, inviterID, inviteeEmail string) (*models.ProjectParticipant, error) {
	project, err := s.repos.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if project.OwnerID != inviterID {
		return nil, fmt.Errorf("%w: only the project owner can invite participants", common.ErrForbidden)
	}

	invitee, err := s.repos.Users(s.db).GetByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with that email", common.ErrNotFound)
		}
		return nil, err
	}

	if invitee.ID == project.OwnerID {
		return nil, fmt.Errorf("%w: the owner cannot be added as a participant", common.ErrConflict)
	}

	participant, err := s.repos.Participants(s.db).Create(ctx, projectID, invitee.ID)
	if err != nil {
		return nil, fmt.Errorf("error adding participant: %w", err)
	}
	return participant, nil
}
