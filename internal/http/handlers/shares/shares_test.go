package shares

import (
	"context"
	"docshare/internal/models"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockManager struct{ mock.Mock }

func (m *mockManager) CreateShare(ctx context.Context, grantor *models.User, documentID string, recipientID string, level models.PermissionLevel, expiresAt *time.Time) (*models.Share, error) {
	args := m.Called(ctx, grantor, documentID, recipientID, level, expiresAt)
	res, _ := args.Get(0).(*models.Share)
	return res, args.Error(1)
}

func (m *mockManager) BulkCreateShares(ctx context.Context, grantor *models.User, documentID string, recipientIDs []string, level models.PermissionLevel, expiresAt *time.Time) (*models.BulkShareResult, error) {
	args := m.Called(ctx, grantor, documentID, recipientIDs, level, expiresAt)
	res, _ := args.Get(0).(*models.BulkShareResult)
	return res, args.Error(1)
}

func (m *mockManager) UpdateShare(ctx context.Context, actor *models.User, shareID string, upd models.ShareUpdate) (*models.Share, error) {
	args := m.Called(ctx, actor, shareID, upd)
	res, _ := args.Get(0).(*models.Share)
	return res, args.Error(1)
}

func (m *mockManager) RevokeShare(ctx context.Context, actor *models.User, shareID string) error {
	args := m.Called(ctx, actor, shareID)
	return args.Error(0)
}

func (m *mockManager) ListShares(ctx context.Context, actor *models.User, documentID string) ([]*models.Share, error) {
	args := m.Called(ctx, actor, documentID)
	res, _ := args.Get(0).([]*models.Share)
	return res, args.Error(1)
}

func (m *mockManager) CopyPermissions(ctx context.Context, actor *models.User, sourceID string, targetID string, includeShares bool) (*models.CopyResult, error) {
	args := m.Called(ctx, actor, sourceID, targetID, includeShares)
	res, _ := args.Get(0).(*models.CopyResult)
	return res, args.Error(1)
}

var owner = &models.User{ID: "owner"}

func request(method string, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), models.UserContextKey, owner))
}

func TestCreate(t *testing.T) {
	t.Parallel()

	expiry := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantText   string
	}{
		{name: "created", body: `{"user_id":"u1","permission_level":"view","expires_at":"2025-04-01T00:00:00Z"}`, wantStatus: http.StatusCreated},
		{name: "bad json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "exists", body: `{"user_id":"u1","permission_level":"view","expires_at":"2025-04-01T00:00:00Z"}`, serviceErr: models.ErrShareExists, wantStatus: http.StatusConflict},
		{
			name:       "share with owner",
			body:       `{"user_id":"u1","permission_level":"view","expires_at":"2025-04-01T00:00:00Z"}`,
			serviceErr: models.ErrShareWithOwner,
			wantStatus: http.StatusForbidden,
			wantText:   "cannot share with the document owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sm := new(mockManager)
			sm.On("CreateShare", mock.Anything, owner, "doc1", "u1", models.LevelView, mock.MatchedBy(func(at *time.Time) bool {
				return at != nil && at.Equal(expiry)
			})).Return(&models.Share{ID: "s1", RecipientID: "u1", Level: models.LevelView}, tt.serviceErr)

			req := request(http.MethodPost, "/api/docs/doc1/shares", tt.body)
			w := httptest.NewRecorder()

			Create(req.Context(), slog.Default(), w, req, "doc1", sm)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantText != "" {
				assert.Contains(t, w.Body.String(), tt.wantText)
			}
		})
	}
}

func TestBulk(t *testing.T) {
	t.Parallel()

	sm := new(mockManager)
	sm.On("BulkCreateShares", mock.Anything, owner, "doc1", []string{"u1", "u2"}, models.LevelDownload, (*time.Time)(nil)).
		Return(&models.BulkShareResult{CreatedCount: 2}, nil)

	req := request(http.MethodPost, "/api/docs/doc1/shares/bulk", `{"user_ids":["u1","u2"],"permission_level":"download"}`)
	w := httptest.NewRecorder()

	Bulk(req.Context(), slog.Default(), w, req, "doc1", sm)

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data models.BulkShareResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Data.CreatedCount)
}

func TestBulk_TooMany(t *testing.T) {
	t.Parallel()

	sm := new(mockManager)
	sm.On("BulkCreateShares", mock.Anything, owner, "doc1", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, models.ErrTooManyRecipients)

	req := request(http.MethodPost, "/api/docs/doc1/shares/bulk", `{"user_ids":["u1"],"permission_level":"view"}`)
	w := httptest.NewRecorder()

	Bulk(req.Context(), slog.Default(), w, req, "doc1", sm)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "too many recipients")
}

func TestUpdate_ClearsExpiry(t *testing.T) {
	t.Parallel()

	sm := new(mockManager)
	sm.On("UpdateShare", mock.Anything, owner, "s1", models.ShareUpdate{SetExpiry: true}).
		Return(&models.Share{ID: "s1"}, nil)

	req := request(http.MethodPatch, "/api/shares/s1", `{"expires_at":null}`)
	w := httptest.NewRecorder()

	Update(req.Context(), slog.Default(), w, req, "s1", sm)

	assert.Equal(t, http.StatusOK, w.Code)
	sm.AssertExpectations(t)
}

func TestUpdate_InvalidExpiry(t *testing.T) {
	t.Parallel()

	sm := new(mockManager)

	req := request(http.MethodPatch, "/api/shares/s1", `{"expires_at":"soon"}`)
	w := httptest.NewRecorder()

	Update(req.Context(), slog.Default(), w, req, "s1", sm)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	sm.AssertNotCalled(t, "UpdateShare", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRevoke(t *testing.T) {
	t.Parallel()

	sm := new(mockManager)
	sm.On("RevokeShare", mock.Anything, owner, "s1").Return(nil).Once()
	sm.On("RevokeShare", mock.Anything, owner, "s1").Return(models.ErrShareNotFound)

	req := request(http.MethodDelete, "/api/shares/s1", "")

	w := httptest.NewRecorder()
	Revoke(req.Context(), slog.Default(), w, req, "s1", sm)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	Revoke(req.Context(), slog.Default(), w, req, "s1", sm)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAndCopy(t *testing.T) {
	t.Parallel()

	sm := new(mockManager)
	sm.On("ListShares", mock.Anything, owner, "doc1").Return([]*models.Share{{ID: "s1"}}, nil)
	sm.On("CopyPermissions", mock.Anything, owner, "doc1", "doc2", true).Return(&models.CopyResult{GrantsCopied: 2, SharesCopied: 1}, nil)

	req := request(http.MethodGet, "/api/docs/doc1/shares", "")
	w := httptest.NewRecorder()
	List(req.Context(), slog.Default(), w, req, "doc1", sm)
	assert.Equal(t, http.StatusOK, w.Code)

	req = request(http.MethodPost, "/api/docs/doc1/copy-permissions", `{"target_document_id":"doc2","include_shares":true}`)
	w = httptest.NewRecorder()
	CopyPermissions(req.Context(), slog.Default(), w, req, "doc1", sm)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.CopyResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, models.CopyResult{GrantsCopied: 2, SharesCopied: 1}, body.Data)

	req = request(http.MethodPost, "/api/docs/doc1/copy-permissions", `{}`)
	w = httptest.NewRecorder()
	CopyPermissions(req.Context(), slog.Default(), w, req, "doc1", sm)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
