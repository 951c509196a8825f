package cachesessionrepo

import (
	"context"
	"docshare/internal/models"
	cacherepo "docshare/internal/repositories/cache"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

type mockResponse[T any] struct {
	val T
	err error
}

func (m *mockCache) Get(ctx context.Context, key string) cacherepo.CacheResponse[string] {
	args := m.Called(ctx, key)
	return args.Get(0).(cacherepo.CacheResponse[string])
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) cacherepo.CacheResponse[string] {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(cacherepo.CacheResponse[string])
}

func (m *mockCache) Del(ctx context.Context, keys ...string) cacherepo.CacheResponse[int64] {
	args := m.Called(ctx, keys)
	return args.Get(0).(cacherepo.CacheResponse[int64])
}

func (m *mockCache) Scan(ctx context.Context, match string) cacherepo.CacheResponse[[]string] {
	args := m.Called(ctx, match)
	return args.Get(0).(cacherepo.CacheResponse[[]string])
}

func (r *mockResponse[T]) Err() error {
	return r.err
}

func (r *mockResponse[T]) Result() (T, error) {
	return r.val, r.err
}

func TestSaveSession_Success(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[string]{}

	user := &models.User{ID: "u1", Login: "alice", PassHash: []byte("secret-hash"), Groups: []string{"legal"}}

	mockCache.On("Set", mock.Anything, "session:token123", mock.MatchedBy(func(v interface{}) bool {
		raw, ok := v.(string)
		if !ok {
			return false
		}
		var stored map[string]any
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return false
		}
		_, leaked := stored["pass_hash"]
		return stored["user_id"] == "u1" && stored["login"] == "alice" && !leaked
	}), time.Minute).Return(mockResp)

	repo := New(mockCache, time.Minute)

	err := repo.SaveSession(context.Background(), "token123", user)
	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestSaveSession_CacheError(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockCache.On("Set", mock.Anything, "session:token123", mock.Anything, time.Minute).
		Return(&mockResponse[string]{err: errors.New("connection refused")})

	repo := New(mockCache, time.Minute)

	err := repo.SaveSession(context.Background(), "token123", &models.User{ID: "u1"})
	assert.Error(t, err)
}

func TestDeleteSession_Success(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[int64]{val: 1}

	mockCache.On("Del", mock.Anything, []string{"session:token123"}).
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	err := repo.DeleteSession(context.Background(), "token123")
	assert.NoError(t, err)
}

func TestDeleteSession_NotFound(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[int64]{val: 0}

	mockCache.On("Del", mock.Anything, []string{"session:gone"}).
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	err := repo.DeleteSession(context.Background(), "gone")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestUserByToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *mockResponse[string]
		wantUser *models.User
		wantErr  error
		anyErr   bool
	}{
		{
			name:     "found",
			resp:     &mockResponse[string]{val: `{"user_id":"u1","login":"alice","is_superuser":true,"groups":["legal"]}`},
			wantUser: &models.User{ID: "u1", Login: "alice", IsSuperuser: true, Groups: []string{"legal"}},
		},
		{name: "missing", resp: &mockResponse[string]{}, wantErr: models.ErrSessionNotFound},
		{name: "corrupt", resp: &mockResponse[string]{val: "not-json"}, anyErr: true},
		{name: "cache down", resp: &mockResponse[string]{err: errors.New("connection error")}, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockCache := new(mockCache)
			mockCache.On("Get", mock.Anything, "session:tok").Return(tt.resp)

			repo := New(mockCache, time.Minute)

			user, err := repo.UserByToken(context.Background(), "tok")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			case tt.anyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, models.ErrSessionNotFound)
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantUser, user)
			}
		})
	}
}
