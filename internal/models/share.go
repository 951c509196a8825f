package models

import "time"

type PermissionLevel string

const (
	LevelView     PermissionLevel = "view"
	LevelDownload PermissionLevel = "download"
	LevelEdit     PermissionLevel = "edit"
)

func (l PermissionLevel) IsValid() bool {
	switch l {
	case LevelView, LevelDownload, LevelEdit:
		return true
	}
	return false
}

// Allows reports whether a share at level l confers the action.
// Levels are not ordered: download needs download or edit, edit needs edit.
func (l PermissionLevel) Allows(action Action) bool {
	if !l.IsValid() {
		return false
	}
	switch action {
	case ActionView, ActionList, ActionHead:
		return true
	case ActionDownload:
		return l == LevelDownload || l == LevelEdit
	case ActionEdit:
		return l == LevelEdit
	}
	return false
}

type Share struct {
	ID                  string          `json:"id"`
	DocumentID          string          `json:"document_id"`
	RecipientID         string          `json:"recipient_id"`
	Level               PermissionLevel `json:"permission_level"`
	GrantorID           string          `json:"shared_by"`
	ExpiresAt           *time.Time      `json:"expires_at,omitempty"`
	AccessCount         int64           `json:"access_count"`
	LastAccessed        *time.Time      `json:"last_accessed,omitempty"`
	PermissionChangedAt time.Time       `json:"permission_changed_at"`
	CreatedAt           time.Time       `json:"created_at"`
	ModifiedAt          time.Time       `json:"modified_at"`
}

// IsExpired reports whether the share's expiry is at or before now.
func (s *Share) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

func (s *Share) IsActive(now time.Time) bool {
	return !s.IsExpired(now)
}

type ShareUpdate struct {
	Level *PermissionLevel
	// ExpiresAt replaces the expiry when SetExpiry is true; a nil value clears it.
	ExpiresAt *time.Time
	SetExpiry bool
}

type BulkShareResult struct {
	CreatedCount int      `json:"shared_count"`
	Shares       []*Share `json:"shares"`
}

type CopyResult struct {
	GrantsCopied int `json:"grants_copied"`
	SharesCopied int `json:"shares_copied"`
}
