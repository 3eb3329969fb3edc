package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumevault/internal/domain"
)

func newRepoWithMock(t *testing.T) (*ResumeRepository, sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewResumeRepository(sqlxDB), mock, sqlxDB
}

func versionColumns() []string {
	return []string{
		"id", "filename", "storage_key", "storage_url", "uploaded_by",
		"file_size_bytes", "mime_type", "notes", "is_active", "uploaded_at",
	}
}

func versionRow(id int64, filename string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows(versionColumns()).AddRow(
		id, filename, "resumes/key", "https://cdn/resumes/key", "admin",
		int64(1024), "application/pdf", "", active, time.Now(),
	)
}

func TestGetActive_NoActiveRowReturnsNil(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM resume_versions WHERE is_active LIMIT 1`).
		WillReturnError(sql.ErrNoRows)

	version, err := repo.GetActive(context.Background())
	require.NoError(t, err)
	assert.Nil(t, version)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActive_ReturnsActiveRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM resume_versions WHERE is_active LIMIT 1`).
		WillReturnRows(versionRow(7, "resume.pdf", true))

	version, err := repo.GetActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, version)
	assert.Equal(t, int64(7), version.ID)
	assert.True(t, version.IsActive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM resume_versions WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_AssignsIDAndTimestamp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	uploadedAt := time.Now()
	mock.ExpectQuery(`INSERT INTO resume_versions .+ RETURNING id, is_active, uploaded_at`).
		WithArgs("resume.pdf", "resumes/key", "https://cdn/resumes/key", "admin", int64(1024), "application/pdf", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_active", "uploaded_at"}).AddRow(int64(3), false, uploadedAt))

	version := &domain.ResumeVersion{
		Filename:      "resume.pdf",
		StorageKey:    "resumes/key",
		StorageURL:    "https://cdn/resumes/key",
		UploadedBy:    "admin",
		FileSizeBytes: 1024,
		MIMEType:      "application/pdf",
	}

	err := repo.Insert(context.Background(), version)
	require.NoError(t, err)
	assert.Equal(t, int64(3), version.ID)
	assert.False(t, version.IsActive)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivate_SingleTransactionClearsThenSets(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM resume_versions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(2)))
	mock.ExpectExec(`UPDATE resume_versions SET is_active = FALSE WHERE is_active AND id <> \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`UPDATE resume_versions SET is_active = TRUE WHERE id = \$1 RETURNING \*`).
		WithArgs(int64(2)).
		WillReturnRows(versionRow(2, "resume.pdf", true))
	mock.ExpectCommit()

	version, err := repo.Activate(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, version.IsActive)
	assert.Equal(t, int64(2), version.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivate_UnknownIDHasNoSideEffects(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM resume_versions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Activate(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Ни одного UPDATE после неудачной блокировки цели
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RefusesActiveRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT is_active FROM resume_versions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrActiveResume)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_RemovesInactiveRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT is_active FROM resume_versions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))
	mock.ExpectExec(`DELETE FROM resume_versions WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 2)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_UnknownID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT is_active FROM resume_versions WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_RenameOnly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	newName := "renamed.pdf"
	mock.ExpectQuery(`UPDATE resume_versions\s+SET filename = COALESCE\(\$1, filename\),\s+notes\s+= COALESCE\(\$2, notes\)\s+WHERE id = \$3\s+RETURNING \*`).
		WithArgs("renamed.pdf", nil, int64(5)).
		WillReturnRows(versionRow(5, "renamed.pdf", false))

	version, err := repo.Update(context.Background(), 5, domain.ResumeUpdate{Filename: &newName})
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", version.Filename)

	require.NoError(t, mock.ExpectationsWereMet())
}
