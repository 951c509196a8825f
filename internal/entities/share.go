package entities

import (
	"database/sql"
	"docshare/internal/models"
	"time"
)

type Share struct {
	ID                  string         `db:"id"`
	DocumentID          string         `db:"document_id"`
	RecipientID         string         `db:"recipient_id"`
	Level               string         `db:"permission_level"`
	GrantorID           sql.NullString `db:"shared_by"`
	ExpiresAt           sql.NullTime   `db:"expires_at"`
	AccessCount         int64          `db:"access_count"`
	LastAccessed        sql.NullTime   `db:"last_accessed"`
	PermissionChangedAt time.Time      `db:"permission_changed_at"`
	CreatedAt           time.Time      `db:"created_at"`
	ModifiedAt          time.Time      `db:"modified_at"`
}

func (s Share) ToModel() *models.Share {
	return &models.Share{
		ID:                  s.ID,
		DocumentID:          s.DocumentID,
		RecipientID:         s.RecipientID,
		Level:               models.PermissionLevel(s.Level),
		GrantorID:           s.GrantorID.String,
		ExpiresAt:           timePtr(s.ExpiresAt),
		AccessCount:         s.AccessCount,
		LastAccessed:        timePtr(s.LastAccessed),
		PermissionChangedAt: s.PermissionChangedAt,
		CreatedAt:           s.CreatedAt,
		ModifiedAt:          s.ModifiedAt,
	}
}

// SharedDocument is a document row joined with the caller's share on it.
type SharedDocument struct {
	Document
	ShareID          string         `db:"share_id"`
	ShareLevel       string         `db:"share_level"`
	ShareGrantorID   sql.NullString `db:"share_shared_by"`
	ShareExpiresAt   sql.NullTime   `db:"share_expires_at"`
	ShareAccessCount int64          `db:"share_access_count"`
	ShareCreatedAt   time.Time      `db:"share_created_at"`
}

func (s SharedDocument) ToModel() *models.Shared {
	doc := s.Document.ToModel()
	return &models.Shared{
		Document: doc,
		Share: &models.Share{
			ID:          s.ShareID,
			DocumentID:  doc.ID,
			Level:       models.PermissionLevel(s.ShareLevel),
			GrantorID:   s.ShareGrantorID.String,
			ExpiresAt:   timePtr(s.ShareExpiresAt),
			AccessCount: s.ShareAccessCount,
			CreatedAt:   s.ShareCreatedAt,
		},
	}
}
