package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/logging"
	"github.com/mlebedeva/projectdock/internal/server/blob"
	"github.com/mlebedeva/projectdock/internal/server/config"
	"github.com/mlebedeva/projectdock/internal/server/membership"
	"github.com/mlebedeva/projectdock/internal/server/models"
	"github.com/mlebedeva/projectdock/internal/server/repositories/repomanager"
)

var (
	documentExtensions = map[string]struct{}{"docx": {}, "pdf": {}}
	logoExtensions     = map[string]struct{}{"jpg": {}, "jpeg": {}, "png": {}}
)

// FileUpload is one (filename, content) pair of an upload batch.
type FileUpload struct {
	Filename string
	Content  []byte
}

// UploadResult reports the outcome for one file of a batch: the filename it
// was stored under after collision handling, or the error that kept it out.
type UploadResult struct {
	Filename string
	StoredAs string
	FileURL  string
	Err      error
}

// AssetService handles document and logo lifecycle: extension validation,
// filename collision handling, and the coupling between relational rows and
// their blobs. Documents and logos live in separate buckets, so logo
// prefix operations can never touch document objects.
type AssetService struct {
	db         *sql.DB
	repos      repomanager.RepositoryManager
	resolver   *membership.Resolver
	store      blob.Store
	docBucket  string
	logoBucket string
	logger     logging.Logger
}

func NewAssetService(db *sql.DB, m repomanager.RepositoryManager, store blob.Store, cfg *config.Config, l logging.Logger) *AssetService {
	return &AssetService{
		db:         db,
		repos:      m,
		resolver:   membership.NewResolver(m.Projects(db), m.Participants(db)),
		store:      store,
		docBucket:  cfg.S3DocumentBucket,
		logoBucket: cfg.S3LogoBucket,
		logger:     l.With("module", "asset_service"),
	}
}

// allowedExtension reports whether the filename carries an extension from
// the given allow-list.
func allowedExtension(filename string, allowed map[string]struct{}) bool {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	_, ok := allowed[ext]
	return ok
}

// disambiguate returns filename if it is not taken, otherwise the first
// "name(n).ext" variant that is free.
func disambiguate(filename string, taken map[string]struct{}) string {
	if _, ok := taken[filename]; !ok {
		return filename
	}

	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s(%d)%s", base, n, ext)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// checkProjectRead resolves existence first, then read access.
func (s *AssetService) checkProjectRead(ctx context.Context, projectID, requesterID string) error {
	if _, err := s.repos.Projects(s.db).GetByID(ctx, projectID); err != nil {
		return err
	}

	canRead, err := s.resolver.CanRead(ctx, requesterID, projectID)
	if err != nil {
		return err
	}
	if !canRead {
		return common.ErrForbidden
	}
	return nil
}

// UploadDocuments stores a batch of documents for a project the requester
// can read (participants may upload). The whole batch is validated against
// the extension allow-list before any blob write. The filename snapshot is
// taken once per batch so identical names within a batch still receive
// distinct "(n)" suffixes. A per-file blob failure skips that file's row
// and the batch continues; the result list reports each file's outcome.
func (s *AssetService) UploadDocuments(ctx context.Context, projectID, requesterID string, files []FileUpload) ([]UploadResult, error) {
	if err := s.checkProjectRead(ctx, projectID, requesterID); err != nil {
		return nil, err
	}

	for _, f := range files {
		if !allowedExtension(f.Filename, documentExtensions) {
			return nil, fmt.Errorf("%w: %s (only .docx and .pdf are allowed)", common.ErrUnsupportedMedia, f.Filename)
		}
	}

	docRepo := s.repos.Documents(s.db)

	existing, err := docRepo.ListFilenames(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error listing filenames: %w", err)
	}
	taken := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		taken[name] = struct{}{}
	}

	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		stored := disambiguate(f.Filename, taken)
		taken[stored] = struct{}{}

		key := projectID + "/" + stored
		if err := s.store.Put(ctx, s.docBucket, key, f.Content); err != nil {
			s.logger.Error(ctx, "document upload failed",
				"project_id", projectID, "filename", f.Filename, "error", err.Error())
			results = append(results, UploadResult{Filename: f.Filename, Err: err})
			continue
		}

		url := s.store.ObjectURL(s.docBucket, key)
		doc := &models.Document{
			ProjectID:  projectID,
			Filename:   stored,
			StorageKey: key,
			FileURL:    url,
		}
		if _, err := docRepo.Create(ctx, doc); err != nil {
			s.logger.Error(ctx, "document row insert failed after blob write",
				"project_id", projectID, "key", key, "error", err.Error())
			results = append(results, UploadResult{Filename: f.Filename, Err: err})
			continue
		}

		results = append(results, UploadResult{Filename: f.Filename, StoredAs: stored, FileURL: url})
	}

	return results, nil
}

// ListDocuments returns the document rows of a readable project.
func (s *AssetService) ListDocuments(ctx context.Context, projectID, requesterID string) ([]*models.Document, error) {
	if err := s.checkProjectRead(ctx, projectID, requesterID); err != nil {
		return nil, err
	}
	return s.repos.Documents(s.db).ListByProject(ctx, projectID)
}

// getDocumentRead fetches the row, then checks read access on its project.
func (s *AssetService) getDocumentRead(ctx context.Context, documentID, requesterID string) (*models.Document, error) {
	doc, err := s.repos.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	canRead, err := s.resolver.CanRead(ctx, requesterID, doc.ProjectID)
	if err != nil {
		return nil, err
	}
	if !canRead {
		return nil, common.ErrForbidden
	}
	return doc, nil
}

// DownloadDocument returns the document row and its content. A row that
// exists without its backing object is reported distinctly from a missing
// row.
func (s *AssetService) DownloadDocument(ctx context.Context, documentID, requesterID string) (*models.Document, []byte, error) {
	doc, err := s.getDocumentRead(ctx, documentID, requesterID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.store.Get(ctx, s.docBucket, doc.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: object %s missing from store", common.ErrNotFound, doc.StorageKey)
		}
		return nil, nil, err
	}

	return doc, data, nil
}

// UpdateDocument replaces the content of an existing document in place.
// The exact key must already exist in the store; otherwise nothing is
// mutated and a descriptive not-found error is returned.
func (s *AssetService) UpdateDocument(ctx context.Context, documentID, requesterID string, content []byte) error {
	doc, err := s.getDocumentRead(ctx, documentID, requesterID)
	if err != nil {
		return err
	}

	if err := s.store.Head(ctx, s.docBucket, doc.StorageKey); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%w: object %s missing from store, refusing to create it", common.ErrNotFound, doc.StorageKey)
		}
		return err
	}

	return s.store.Put(ctx, s.docBucket, doc.StorageKey, content)
}

// DeleteDocument removes the blob and then the row. Owner only. The row is
// only deleted after the blob delete succeeds, so a store failure never
// leaves an unreferenced object behind.
func (s *AssetService) DeleteDocument(ctx context.Context, documentID, requesterID string) error {
	doc, err := s.repos.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	level, err := s.resolver.AccessLevel(ctx, requesterID, doc.ProjectID)
	if err != nil {
		return err
	}
	if level != membership.Owner {
		return common.ErrForbidden
	}

	if err := s.store.Delete(ctx, s.docBucket, doc.StorageKey); err != nil {
		return fmt.Errorf("blob delete failed, keeping row %s: %w", doc.ID, err)
	}

	return s.repos.Documents(s.db).Delete(ctx, doc.ID)
}

// UploadLogo stores the logo blob and overwrites the project's logo URL
// unconditionally. A project has at most one logo, so there is no collision
// handling.
func (s *AssetService) UploadLogo(ctx context.Context, projectID, requesterID, filename string, content []byte) (string, error) {
	if !allowedExtension(filename, logoExtensions) {
		return "", fmt.Errorf("%w: %s (only .jpg, .jpeg and .png are allowed)", common.ErrUnsupportedMedia, filename)
	}

	if err := s.checkProjectRead(ctx, projectID, requesterID); err != nil {
		return "", err
	}

	key := projectID + "/" + filename
	if err := s.store.Put(ctx, s.logoBucket, key, content); err != nil {
		return "", err
	}

	url := s.store.ObjectURL(s.logoBucket, key)
	if err := s.repos.Projects(s.db).SetLogoURL(ctx, projectID, url); err != nil {
		return "", fmt.Errorf("error saving logo url: %w", err)
	}

	return url, nil
}

// DownloadLogo returns the logo filename and content.
func (s *AssetService) DownloadLogo(ctx context.Context, projectID, requesterID string) (string, []byte, error) {
	project, err := s.repos.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return "", nil, err
	}

	canRead, err := s.resolver.CanRead(ctx, requesterID, projectID)
	if err != nil {
		return "", nil, err
	}
	if !canRead {
		return "", nil, common.ErrForbidden
	}

	if project.LogoURL == "" {
		return "", nil, fmt.Errorf("%w: project has no logo", common.ErrNotFound)
	}

	filename := path.Base(project.LogoURL)
	data, err := s.store.Get(ctx, s.logoBucket, projectID+"/"+filename)
	if err != nil {
		return "", nil, err
	}

	return filename, data, nil
}

// DeleteLogo removes every object under the project's prefix in the logo
// bucket in one batch call, then clears the URL field. The logo bucket
// holds nothing but logos, so the prefix sweep cannot take anything else
// with it.
func (s *AssetService) DeleteLogo(ctx context.Context, projectID, requesterID string) error {
	project, err := s.repos.Projects(s.db).GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	canRead, err := s.resolver.CanRead(ctx, requesterID, projectID)
	if err != nil {
		return err
	}
	if !canRead {
		return common.ErrForbidden
	}

	if project.LogoURL == "" {
		return fmt.Errorf("%w: project has no logo", common.ErrNotFound)
	}

	keys, err := s.store.ListKeys(ctx, s.logoBucket, projectID+"/")
	if err != nil {
		return err
	}
	if err := s.store.DeleteBatch(ctx, s.logoBucket, keys); err != nil {
		return err
	}

	if err := s.repos.Projects(s.db).SetLogoURL(ctx, projectID, ""); err != nil {
		return fmt.Errorf("error clearing logo url: %w", err)
	}

	return nil
}
