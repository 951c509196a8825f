package session

import (
	"context"
	"docshare/internal/models"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) Login(ctx context.Context, login string, password string) (string, error) {
	args := m.Called(ctx, login, password)
	return args.String(0), args.Error(1)
}

func (m *mockSessions) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdd_Success(t *testing.T) {
	t.Parallel()

	sessions := new(mockSessions)
	sessions.On("Login", mock.Anything, "alice", "secret123").Return("tok-1", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"login":"alice","pswd":"secret123"}`))
	w := httptest.NewRecorder()

	Add(req.Context(), discard(), w, req, sessions)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "tok-1", response.Data["token"])
}

func TestAdd_Errors(t *testing.T) {
	t.Parallel()

	sessions := new(mockSessions)
	sessions.On("Login", mock.Anything, "alice", "wrong").Return("", models.ErrInvalidCredentials)

	req := httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"login":"alice","pswd":"wrong"}`))
	w := httptest.NewRecorder()
	Add(req.Context(), discard(), w, req, sessions)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`nope`))
	w = httptest.NewRecorder()
	Add(req.Context(), discard(), w, req, sessions)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "unknown session ignored", err: models.ErrSessionNotFound, wantStatus: http.StatusOK},
		{name: "store down", err: errors.New("redis down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sessions := new(mockSessions)
			sessions.On("Logout", mock.Anything, "tok").Return(tt.err)

			req := httptest.NewRequest(http.MethodDelete, "/api/auth/tok", nil)
			w := httptest.NewRecorder()

			Delete(req.Context(), discard(), w, req, "tok", sessions)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var response struct {
					Data map[string]bool `json:"data"`
				}
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.True(t, response.Data["tok"])
			}
		})
	}
}
