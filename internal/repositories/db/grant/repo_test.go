package grantrepo

import (
	"context"
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

func setup(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewRepository(sqlxDB)
}

func TestHasGrant(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("u1", "download_doc", "doc1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasGrant(context.Background(), "u1", models.PermDownloadDoc, "doc1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasGrant_Error(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnError(errors.New("conn refused"))

	ok, err := repo.HasGrant(context.Background(), "u1", models.PermViewDoc, "doc1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestAddGrants_SkipsExisting(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	grants := []*models.Grant{
		{ID: "g1", SubjectID: "u1", Permission: models.PermViewDoc, DocumentID: "doc1", CreatedAt: now},
		{ID: "g2", SubjectID: "u1", Permission: models.PermEditDoc, DocumentID: "doc1", CreatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (subject_id, permission, document_id) DO NOTHING`)).
		WithArgs("g1", "u1", "view_doc", "doc1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO grants`)).
		WithArgs("g2", "u1", "edit_doc", "doc1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.AddGrants(context.Background(), grants)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddGrants_RollsBackOnError(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO grants`)).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := repo.AddGrants(context.Background(), []*models.Grant{{ID: "g1"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveGrants(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM grants`)).
		WithArgs("doc1", pq.Array([]string{"u1", "u2"}), pq.Array([]string{"view_doc"})).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.RemoveGrants(context.Background(), "doc1", []string{"u1", "u2"}, []models.Permission{models.PermViewDoc})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveGrants_MalformedSubject(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM grants`)).
		WithArgs("doc1", pq.Array([]string{"bob"}), pq.Array([]string{"view_doc"})).
		WillReturnError(&pq.Error{Code: "22P02"})

	n, err := repo.RemoveGrants(context.Background(), "doc1", []string{"bob"}, []models.Permission{models.PermViewDoc})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantsForDocument(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "subject_id", "permission", "document_id", "created_at"}).
		AddRow("g1", "u1", "view_doc", "doc1", now).
		AddRow("g2", "u2", "download_doc", "doc1", now)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM grants g`)).
		WithArgs("doc1").
		WillReturnRows(rows)

	grants, err := repo.GrantsForDocument(context.Background(), "doc1")
	require.NoError(t, err)
	require.Len(t, grants, 2)
	assert.Equal(t, models.PermDownloadDoc, grants[1].Permission)
}
