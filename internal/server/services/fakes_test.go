package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/dbx"
	"github.com/mlebedeva/projectdock/internal/logging"
	"github.com/mlebedeva/projectdock/internal/server/config"
	"github.com/mlebedeva/projectdock/internal/server/models"
	documentsrepo "github.com/mlebedeva/projectdock/internal/server/repositories/documents"
	participantsrepo "github.com/mlebedeva/projectdock/internal/server/repositories/participants"
	projectsrepo "github.com/mlebedeva/projectdock/internal/server/repositories/projects"
	usersrepo "github.com/mlebedeva/projectdock/internal/server/repositories/users"
)

// fakeState is a shared in-memory database. The fake repositories are views
// over it, so relationships (participants, documents, FK cascade on project
// delete) behave like the real schema.
type fakeState struct {
	seq          int
	users        map[string]*models.User
	projects     map[string]*models.Project
	participants map[string]*models.ProjectParticipant // id -> row
	documents    map[string]*models.Document           // id -> row
}

func newFakeState() *fakeState {
	return &fakeState{
		users:        make(map[string]*models.User),
		projects:     make(map[string]*models.Project),
		participants: make(map[string]*models.ProjectParticipant),
		documents:    make(map[string]*models.Document),
	}
}

func (s *fakeState) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// --- users ---

type fakeUsersRepo struct{ s *fakeState }

func (f *fakeUsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Email == user.Email {
			return nil, common.ErrConflict
		}
	}
	user.ID = f.s.nextID("u")
	f.s.users[user.ID] = user
	return user, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

// --- projects ---

type fakeProjectsRepo struct{ s *fakeState }

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	p.ID = f.s.nextID("p")
	f.s.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p, ok := f.s.projects[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjectsRepo) ListOwnedBy(ctx context.Context, userID string) ([]*models.Project, error) {
	var result []*models.Project
	for _, p := range f.s.projects {
		if p.OwnerID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProjectsRepo) ListParticipating(ctx context.Context, userID string) ([]*models.Project, error) {
	var result []*models.Project
	for _, pp := range f.s.participants {
		if pp.UserID == userID {
			if p, ok := f.s.projects[pp.ProjectID]; ok {
				result = append(result, p)
			}
		}
	}
	return result, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, p *models.Project) error {
	if _, ok := f.s.projects[p.ID]; !ok {
		return common.ErrNotFound
	}
	f.s.projects[p.ID] = p
	return nil
}

func (f *fakeProjectsRepo) SetLogoURL(ctx context.Context, projectID, logoURL string) error {
	p, ok := f.s.projects[projectID]
	if !ok {
		return common.ErrNotFound
	}
	p.LogoURL = logoURL
	return nil
}

// Delete mirrors the schema's ON DELETE CASCADE: documents and participant
// rows disappear with the project.
func (f *fakeProjectsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.s.projects[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.s.projects, id)
	for docID, d := range f.s.documents {
		if d.ProjectID == id {
			delete(f.s.documents, docID)
		}
	}
	for ppID, pp := range f.s.participants {
		if pp.ProjectID == id {
			delete(f.s.participants, ppID)
		}
	}
	return nil
}

// --- participants ---

type fakeParticipantsRepo struct{ s *fakeState }

func (f *fakeParticipantsRepo) Get(ctx context.Context, projectID, userID string) (*models.ProjectParticipant, error) {
	for _, pp := range f.s.participants {
		if pp.ProjectID == projectID && pp.UserID == userID {
			return pp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeParticipantsRepo) Create(ctx context.Context, projectID, userID string) (*models.ProjectParticipant, error) {
	if existing, err := f.Get(ctx, projectID, userID); err == nil {
		return existing, nil
	}
	pp := &models.ProjectParticipant{ID: f.s.nextID("pp"), ProjectID: projectID, UserID: userID}
	f.s.participants[pp.ID] = pp
	return pp, nil
}

func (f *fakeParticipantsRepo) ListByProject(ctx context.Context, projectID string) ([]*models.ProjectParticipant, error) {
	var result []*models.ProjectParticipant
	for _, pp := range f.s.participants {
		if pp.ProjectID == projectID {
			result = append(result, pp)
		}
	}
	return result, nil
}

// --- documents ---

type fakeDocumentsRepo struct{ s *fakeState }

func (f *fakeDocumentsRepo) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.ID = f.s.nextID("d")
	f.s.documents[doc.ID] = doc
	return doc, nil
}

func (f *fakeDocumentsRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	d, ok := f.s.documents[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return d, nil
}

func (f *fakeDocumentsRepo) ListByProject(ctx context.Context, projectID string) ([]*models.Document, error) {
	var result []*models.Document
	for _, d := range f.s.documents {
		if d.ProjectID == projectID {
			result = append(result, d)
		}
	}
	return result, nil
}

func (f *fakeDocumentsRepo) ListFilenames(ctx context.Context, projectID string) ([]string, error) {
	var result []string
	for _, d := range f.s.documents {
		if d.ProjectID == projectID {
			result = append(result, d.Filename)
		}
	}
	return result, nil
}

func (f *fakeDocumentsRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.s.documents[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.s.documents, id)
	return nil
}

// --- repo manager ---

type fakeRepoManager struct{ s *fakeState }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository {
	return &fakeUsersRepo{s: m.s}
}
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository {
	return &fakeProjectsRepo{s: m.s}
}
func (m *fakeRepoManager) Participants(db dbx.DBTX) participantsrepo.Repository {
	return &fakeParticipantsRepo{s: m.s}
}
func (m *fakeRepoManager) Documents(db dbx.DBTX) documentsrepo.Repository {
	return &fakeDocumentsRepo{s: m.s}
}

// --- blob store ---

type fakeBlobStore struct {
	objects map[string][]byte // "bucket/key" -> content

	putErr    map[string]error // key -> error
	deleteErr map[string]error
	batchErr  error
	listErr   error

	puts    []string            // keys in put order
	batches map[string][]string // bucket -> all keys batch-deleted
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects:   make(map[string][]byte),
		putErr:    make(map[string]error),
		deleteErr: make(map[string]error),
		batches:   make(map[string][]string),
	}
}

func (f *fakeBlobStore) Put(ctx context.Context, bucket, key string, body []byte) error {
	if err := f.putErr[key]; err != nil {
		return err
	}
	f.puts = append(f.puts, key)
	f.objects[bucket+"/"+key] = body
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobStore) Head(ctx context.Context, bucket, key string) error {
	if _, ok := f.objects[bucket+"/"+key]; !ok {
		return common.ErrNotFound
	}
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, bucket, key string) error {
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	delete(f.objects, bucket+"/"+key)
	return nil
}

func (f *fakeBlobStore) DeleteBatch(ctx context.Context, bucket string, keys []string) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches[bucket] = append(f.batches[bucket], keys...)
	for _, key := range keys {
		delete(f.objects, bucket+"/"+key)
	}
	return nil
}

func (f *fakeBlobStore) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for full := range f.objects {
		if !strings.HasPrefix(full, bucket+"/") {
			continue
		}
		key := strings.TrimPrefix(full, bucket+"/")
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeBlobStore) ObjectURL(bucket, key string) string {
	return "https://" + bucket + ".s3.test/" + key
}

// --- wiring helpers ---

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	return cfg
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

// newEnv wires the services over shared fakes. The sqlmock DB only backs
// the WithTx calls; all data lives in the fake state.
type testEnv struct {
	state    *fakeState
	store    *fakeBlobStore
	mock     sqlmock.Sqlmock
	users    *UserService
	projects *ProjectService
	assets   *AssetService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	state := newFakeState()
	store := newFakeBlobStore()
	rm := &fakeRepoManager{s: state}
	cfg := testConfig()

	return &testEnv{
		state:    state,
		store:    store,
		mock:     mock,
		users:    NewUserService(db, rm, cfg),
		projects: NewProjectService(db, rm, store, cfg, testLogger()),
		assets:   NewAssetService(db, rm, store, cfg, testLogger()),
	}
}

// addUser seeds a user directly into the fake state.
func (e *testEnv) addUser(email string) *models.User {
	u := &models.User{ID: e.state.nextID("u"), Email: email, PasswordHash: "x"}
	e.state.users[u.ID] = u
	return u
}

// addProject seeds a project owned by ownerID.
func (e *testEnv) addProject(ownerID, name string) *models.Project {
	p := &models.Project{ID: e.state.nextID("p"), OwnerID: ownerID, Name: name}
	e.state.projects[p.ID] = p
	return p
}

// addParticipant seeds a participant row.
func (e *testEnv) addParticipant(projectID, userID string) *models.ProjectParticipant {
	pp := &models.ProjectParticipant{ID: e.state.nextID("pp"), ProjectID: projectID, UserID: userID}
	e.state.participants[pp.ID] = pp
	return pp
}

// addDocument seeds a document row and its blob.
func (e *testEnv) addDocument(projectID, filename string, content []byte, bucket string) *models.Document {
	key := projectID + "/" + filename
	d := &models.Document{
		ID:         e.state.nextID("d"),
		ProjectID:  projectID,
		Filename:   filename,
		StorageKey: key,
		FileURL:    e.store.ObjectURL(bucket, key),
	}
	e.state.documents[d.ID] = d
	e.store.objects[bucket+"/"+key] = content
	return d
}
