package projects

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mlebedeva/projectdock/internal/common"
	"github.com/mlebedeva/projectdock/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+projects\s*\(owner_id,\s*name,\s*description\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p-1", time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1", "Apollo", "moon stuff").
		WillReturnRows(rows)

	p := &models.Project{OwnerID: "u-1", Name: "Apollo", Description: "moon stuff"}
	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "p-1" {
		t.Fatalf("unexpected project: %+v", got)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id,\s*name,\s*description,\s*logo_url,\s*created_at\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "logo_url", "created_at"}).
		AddRow("p-1", "u-1", "Apollo", "moon stuff", "", time.Now())
	mock.ExpectQuery(q).
		WithArgs("p-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.OwnerID != "u-1" || got.Name != "Apollo" {
		t.Fatalf("unexpected project: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id,\s*name,\s*description,\s*logo_url,\s*created_at\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).
		WithArgs("p-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "p-404")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestListOwnedBy_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id,\s*name,\s*description,\s*logo_url,\s*created_at\s+FROM\s+projects\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s*$`

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "logo_url", "created_at"}).
		AddRow("p-1", "u-1", "Apollo", "", "", time.Now()).
		AddRow("p-2", "u-1", "Gemini", "", "", time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListOwnedBy(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListOwnedBy error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p-1" || got[1].ID != "p-2" {
		t.Fatalf("unexpected projects: %+v", got)
	}
}

func TestListParticipating_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+p\.id,.*FROM\s+projects\s+p\s+JOIN\s+project_participants\s+pp\s+ON\s+pp\.project_id\s*=\s*p\.id\s+WHERE\s+pp\.user_id\s*=\s*\$1`

	rows := sqlmock.NewRows([]string{"id", "owner_id", "name", "description", "logo_url", "created_at"}).
		AddRow("p-9", "u-2", "Shared", "", "", time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.ListParticipating(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListParticipating error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p-9" {
		t.Fatalf("unexpected projects: %+v", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+projects\s+SET\s+name\s*=\s*\$1,\s*description\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$3\s*$`

	mock.ExpectExec(q).
		WithArgs("Artemis", "new", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Project{ID: "p-1", Name: "Artemis", Description: "new"})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NoRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+projects\s+SET\s+name`

	mock.ExpectExec(q).
		WithArgs("Artemis", "", "p-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Project{ID: "p-404", Name: "Artemis"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestSetLogoURL_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+projects\s+SET\s+logo_url\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("https://logos.s3.test/p-1/logo.png", "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetLogoURL(context.Background(), "p-1", "https://logos.s3.test/p-1/logo.png")
	if err != nil {
		t.Fatalf("SetLogoURL error: %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectExec(q).
		WithArgs("p-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "p-404")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestList_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id`

	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.ListOwnedBy(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
