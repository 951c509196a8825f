package documentrepo

import (
	"context"
	"database/sql"
	"docshare/internal/models"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{
	"id", "owner_id", "title", "description", "file_name", "storage_key", "size", "content_type",
	"hash", "is_public", "status", "download_count", "last_accessed", "created_by", "created_at", "modified_at",
}

func setup(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := NewRepository(sqlxDB)
	return sqlxDB, mock, repo
}

func docRow(rows *sqlmock.Rows, id string, owner any, public bool, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, owner, "Plan", "quarterly plan", "plan.pdf", "documents/2025/03/01/u1/x_plan.pdf", int64(2048),
		"application/pdf", "abc123", public, "active", int64(3), nil, owner, created, created)
}

func TestCreateDocument_Success(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	doc := &models.Document{
		ID:          "doc1",
		OwnerID:     "u1",
		Title:       "Plan",
		FileName:    "plan.pdf",
		StorageKey:  "documents/2025/03/01/u1/x_plan.pdf",
		Size:        2048,
		ContentType: "application/pdf",
		Hash:        "abc123",
		Status:      models.StatusActive,
		CreatedBy:   "u1",
		CreatedAt:   now,
		ModifiedAt:  now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents`)).
		WithArgs(doc.ID, "u1", doc.Title, doc.Description, doc.FileName, doc.StorageKey, doc.Size,
			doc.ContentType, doc.Hash, false, "active", "u1", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateDocument(context.Background(), doc)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocument_DuplicateHash(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "documents_hash_key"})

	err := repo.CreateDocument(context.Background(), &models.Document{ID: "doc1", OwnerID: "u1"})

	var uniqueErr *models.UniqueConstraintError
	require.True(t, errors.As(err, &uniqueErr))
	assert.Equal(t, "documents_hash_key", uniqueErr.Constraint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentByID_Success(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := docRow(sqlmock.NewRows(columns), "doc1", "u1", true, created)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents d`)).
		WithArgs("doc1").
		WillReturnRows(rows)

	doc, err := repo.DocumentByID(context.Background(), "doc1")
	require.NoError(t, err)
	assert.Equal(t, "doc1", doc.ID)
	assert.Equal(t, "u1", doc.OwnerID)
	assert.True(t, doc.IsPublic)
	assert.Equal(t, models.StatusActive, doc.Status)
	assert.Nil(t, doc.LastAccessed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentByID_OwnerRevoked(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	rows := docRow(sqlmock.NewRows(columns), "doc1", nil, false, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents d`)).
		WithArgs("doc1").
		WillReturnRows(rows)

	doc, err := repo.DocumentByID(context.Background(), "doc1")
	require.NoError(t, err)
	assert.Empty(t, doc.OwnerID)
}

func TestDocumentByID_NotFound(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents d`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	doc, err := repo.DocumentByID(context.Background(), "missing")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestDocumentByID_MalformedID(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM documents d`)).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})

	doc, err := repo.DocumentByID(context.Background(), "not-a-uuid")
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentByHash_IgnoresDeleted(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.hash = $1 AND d.status <> 'deleted'`)).
		WithArgs("abc123").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.DocumentByHash(context.Background(), "abc123")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDocument_PartialFields(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	title := "New plan"
	rows := docRow(sqlmock.NewRows(columns), "doc1", "u1", false, now)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE documents d SET`)).
		WithArgs("doc1", title, nil, nil, nil, now).
		WillReturnRows(rows)

	doc, err := repo.UpdateDocument(context.Background(), "doc1", models.DocumentUpdate{Title: &title}, now)
	require.NoError(t, err)
	assert.Equal(t, "doc1", doc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_RestoreConflict(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET status = $2, modified_at = $3 WHERE id = $1`)).
		WithArgs("doc1", "active", now).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "documents_hash_key"})

	err := repo.UpdateStatus(context.Background(), "doc1", models.StatusActive, now)
	assert.ErrorIs(t, err, models.ErrUNIQUEConstraintFailed)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET status`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "ghost", models.StatusDeleted, time.Now())
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestIncrementDownloadCount_RelativeUpdate(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`download_count = download_count + 1`)).
		WithArgs("doc1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementDownloadCount(context.Background(), "doc1", at)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferOwner_DropsNewOwnersShare(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET owner_id = $2`)).
		WithArgs("doc1", "u2", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shares WHERE document_id = $1 AND recipient_id = $2`)).
		WithArgs("doc1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	dropped, err := repo.TransferOwner(context.Background(), "doc1", "u2", now)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferOwner_NotFoundRollsBack(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET owner_id = $2`)).
		WithArgs("missing", "u2", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.TransferOwner(context.Background(), "missing", "u2", now)
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Success(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
		WithArgs("doc1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(context.Background(), "doc1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_DBError(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE id = $1`)).
		WithArgs("doc1").
		WillReturnError(errors.New("db down"))

	err := repo.Delete(context.Background(), "doc1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "documentRepo/Delete")
}

func TestAccessibleDocuments_Subject(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	rows := docRow(sqlmock.NewRows(columns), "doc1", "u2", false, now)

	mock.ExpectQuery(regexp.QuoteMeta(`s.expires_at IS NULL OR s.expires_at > $2`)).
		WithArgs("u1", now, "%plan%", 10).
		WillReturnRows(rows)

	docs, err := repo.AccessibleDocuments(context.Background(), "u1", now, false,
		models.DocumentFilter{Key: "title", Value: "plan", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessibleDocuments_Anonymous(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.status <> 'deleted' AND d.is_public = TRUE`)).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(columns))

	docs, err := repo.AccessibleDocuments(context.Background(), "", time.Now(), false, models.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessibleDocuments_All(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.status <> 'deleted' AND d.file_name ILIKE $1`)).
		WithArgs("%.pdf").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.AccessibleDocuments(context.Background(), "admin", time.Now(), true,
		models.DocumentFilter{Key: "extension", Value: ".pdf"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessibleDocuments_FilterWildcardsAreLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter models.DocumentFilter
		clause string
		arg    string
	}{
		{
			name:   "title",
			filter: models.DocumentFilter{Key: "title", Value: "100%_done"},
			clause: `d.title ILIKE $1 ESCAPE '\'`,
			arg:    `%100\%\_done%`,
		},
		{
			name:   "extension",
			filter: models.DocumentFilter{Key: "extension", Value: "p_f"},
			clause: `d.file_name ILIKE $1 ESCAPE '\'`,
			arg:    `%.p\_f`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, repo := setup(t)
			defer db.Close()

			mock.ExpectQuery(regexp.QuoteMeta(tt.clause)).
				WithArgs(tt.arg).
				WillReturnRows(sqlmock.NewRows(columns))

			_, err := repo.AccessibleDocuments(context.Background(), "admin", time.Now(), true, tt.filter)
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAccessibleDocuments_MalformedOwnerFilter(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`d.owner_id = $1`)).
		WithArgs("bob").
		WillReturnError(&pq.Error{Code: "22P02"})

	_, err := repo.AccessibleDocuments(context.Background(), "admin", time.Now(), true,
		models.DocumentFilter{Key: "owner", Value: "bob"})
	assert.ErrorIs(t, err, models.ErrInvalidParams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicDocuments(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	rows := docRow(sqlmock.NewRows(columns), "doc1", "u1", true, now)
	rows = docRow(rows, "doc2", "u2", true, now)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.is_public = TRUE AND d.status = 'active'`)).
		WithArgs(20, 0).
		WillReturnRows(rows)

	docs, err := repo.PublicDocuments(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestOwnedDocuments_Error(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE d.owner_id = $1`)).
		WithArgs("u1").
		WillReturnError(errors.New("timeout"))

	docs, err := repo.OwnedDocuments(context.Background(), "u1")
	assert.Nil(t, docs)
	assert.Error(t, err)
}
