package accessrepo

import (
	"context"
	"docshare/internal/models"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, *repository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, NewRepository(sqlxDB)
}

func TestCreateEvent_WithExtra(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	docID, userID := "doc1", "u1"
	now := time.Now()
	event := &models.AccessEvent{
		ID:         "e1",
		DocumentID: &docID,
		SubjectID:  &userID,
		Action:     models.ActionShare,
		Success:    true,
		IP:         "10.0.0.1",
		UserAgent:  "curl/8.0",
		Extra:      map[string]any{"shared_with": "u2", "permission_level": "view"},
		CreatedAt:  now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO access_logs`)).
		WithArgs("e1", "doc1", "u1", "share", true, "", "10.0.0.1", "curl/8.0",
			[]byte(`{"permission_level":"view","shared_with":"u2"}`), now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateEvent(context.Background(), event)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_Anonymous(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO access_logs`)).
		WithArgs("e2", nil, nil, "upload", false, "duplicate", "", "", nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateEvent(context.Background(), &models.AccessEvent{
		ID: "e2", Action: models.ActionUpload, Error: "duplicate", CreatedAt: now,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventsForDocument(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "document_id", "user_id", "action", "success", "error_message",
		"ip_address", "user_agent", "additional_info", "created_at",
	}).
		AddRow("e2", "doc1", "u2", "download", true, "", "10.0.0.2", "", nil, now).
		AddRow("e1", "doc1", nil, "view", false, "access denied", "", "", []byte(`{"rule":"deny"}`), now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY a.created_at DESC`)).
		WithArgs("doc1", 100).
		WillReturnRows(rows)

	events, err := repo.EventsForDocument(context.Background(), "doc1", 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "u2", *events[0].SubjectID)
	assert.Nil(t, events[1].SubjectID)
	assert.Equal(t, "deny", events[1].Extra["rule"])
}

func TestEventsForDocument_Error(t *testing.T) {
	t.Parallel()

	db, mock, repo := setup(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM access_logs a`)).
		WillReturnError(errors.New("timeout"))

	_, err := repo.EventsForDocument(context.Background(), "doc1", 100)
	assert.Error(t, err)
}
