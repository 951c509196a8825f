package server

import (
	"context"
	"docshare/internal/models"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Unimplemented methods panic through the nil embedded interfaces; each test
// only reaches the ones it overrides.
type fakeAuth struct {
	AuthService
}

func (fakeAuth) UserByToken(_ context.Context, token string) (*models.User, error) {
	if token == "good" {
		return &models.User{ID: "u1", Login: "alice"}, nil
	}
	return nil, models.ErrInvalidCredentials
}

type fakeDocs struct {
	DocumentService
	mineCalled  bool
	byIDCalled  string
	requesterID string
}

func (f *fakeDocs) MyDocuments(_ context.Context, requester *models.User) (*models.UserDocuments, error) {
	f.mineCalled = true
	f.requesterID = requester.ID
	return &models.UserDocuments{}, nil
}

func (f *fakeDocs) DocumentByID(_ context.Context, requester *models.User, docID string) (*models.Document, error) {
	f.byIDCalled = docID
	if requester != nil {
		f.requesterID = requester.ID
	}
	return &models.Document{ID: docID, IsPublic: true}, nil
}

func (f *fakeDocs) PublicDocuments(context.Context, int) ([]*models.Document, error) {
	return []*models.Document{}, nil
}

type fakeSharing struct {
	SharingService
}

func router(doc *fakeDocs) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(log, 1<<20, fakeAuth{}, doc, fakeSharing{})
}

func serve(h http.Handler, method string, target string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_MineIsNotAnID(t *testing.T) {
	t.Parallel()

	doc := &fakeDocs{}
	w := serve(router(doc), http.MethodGet, "/api/docs/mine", "good")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, doc.mineCalled)
	assert.Empty(t, doc.byIDCalled)
	assert.Equal(t, "u1", doc.requesterID)
}

func TestRouter_MineRequiresAuth(t *testing.T) {
	t.Parallel()

	doc := &fakeDocs{}
	w := serve(router(doc), http.MethodGet, "/api/docs/mine", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, doc.mineCalled)
}

func TestRouter_AnonymousRead(t *testing.T) {
	t.Parallel()

	doc := &fakeDocs{}
	w := serve(router(doc), http.MethodGet, "/api/docs/doc-1", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doc-1", doc.byIDCalled)
	assert.Empty(t, doc.requesterID)

	w = serve(router(doc), http.MethodGet, "/api/public/docs", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_InvalidTokenOnOpenRoute(t *testing.T) {
	t.Parallel()

	doc := &fakeDocs{}
	w := serve(router(doc), http.MethodGet, "/api/docs/doc-1", "stale")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, doc.byIDCalled)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	w := serve(router(&fakeDocs{}), http.MethodPut, "/api/register", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()

	w := serve(router(&fakeDocs{}), http.MethodGet, "/api/nothing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	h := router(&fakeDocs{})
	serve(h, http.MethodGet, "/api/public/docs", "")

	w := serve(h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docshare_http_requests_total")
}
