package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPermissionLevel_Allows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level  PermissionLevel
		action Action
		want   bool
	}{
		{LevelView, ActionView, true},
		{LevelView, ActionHead, true},
		{LevelView, ActionDownload, false},
		{LevelView, ActionEdit, false},
		{LevelDownload, ActionDownload, true},
		{LevelDownload, ActionEdit, false},
		{LevelEdit, ActionDownload, true},
		{LevelEdit, ActionEdit, true},
		{LevelEdit, ActionDelete, false},
		{LevelEdit, ActionShare, false},
		{PermissionLevel("admin"), ActionView, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.Allows(tt.action), "%s/%s", tt.level, tt.action)
	}
}

func TestShare_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.False(t, (&Share{}).IsExpired(now))
	assert.True(t, (&Share{ExpiresAt: &past}).IsExpired(now))
	assert.True(t, (&Share{ExpiresAt: &now}).IsExpired(now))
	assert.False(t, (&Share{ExpiresAt: &future}).IsExpired(now))
	assert.True(t, (&Share{ExpiresAt: &future}).IsActive(now))
}

func TestErrors_Taxonomy(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrShareWithOwner, ErrForbidden))
	assert.True(t, errors.Is(ErrShareWithSelf, ErrForbidden))
	assert.True(t, errors.Is(ErrShareExists, ErrConflict))
	assert.True(t, errors.Is(ErrDuplicateContent, ErrConflict))
	assert.True(t, errors.Is(ErrShareNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrTooManyRecipients, ErrInvalidParams))
	assert.False(t, errors.Is(ErrShareExists, ErrForbidden))

	var reason *ReasonError
	assert.True(t, errors.As(ErrShareWithSelf, &reason))
	assert.Equal(t, "cannot share with yourself", reason.Reason)
}

func TestDocument_Helpers(t *testing.T) {
	t.Parallel()

	doc := &Document{FileName: "Report.PDF", Size: 1536, OwnerID: "u1"}

	assert.Equal(t, "pdf", doc.Extension())
	assert.Equal(t, "1.5 KB", doc.HumanSize())
	assert.True(t, doc.IsOwnedBy("u1"))
	assert.False(t, doc.IsOwnedBy(""))
	assert.False(t, (&Document{}).IsOwnedBy(""))
}

func TestDocumentFilter_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, DocumentFilter{}.IsValid())
	assert.True(t, DocumentFilter{Key: "title", Value: "plan"}.IsValid())
	assert.False(t, DocumentFilter{Value: "plan"}.IsValid())
	assert.False(t, DocumentFilter{Key: "hash", Value: "x"}.IsValid())
	assert.False(t, DocumentFilter{Key: "status", Value: "gone"}.IsValid())
}

func TestTemplate(t *testing.T) {
	t.Parallel()

	perms, ok := Template("reviewer")
	assert.True(t, ok)
	assert.Equal(t, []Permission{PermViewDoc, PermDownloadDoc}, perms)

	_, ok = Template("guest")
	assert.False(t, ok)
}
