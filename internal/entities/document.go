package entities

import (
	"database/sql"
	"docshare/internal/models"
	"time"
)

type Document struct {
	ID            string         `db:"id"`
	OwnerID       sql.NullString `db:"owner_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	FileName      string         `db:"file_name"`
	StorageKey    string         `db:"storage_key"`
	Size          int64          `db:"size"`
	ContentType   string         `db:"content_type"`
	Hash          string         `db:"hash"`
	IsPublic      bool           `db:"is_public"`
	Status        string         `db:"status"`
	DownloadCount int64          `db:"download_count"`
	LastAccessed  sql.NullTime   `db:"last_accessed"`
	CreatedBy     sql.NullString `db:"created_by"`
	CreatedAt     time.Time      `db:"created_at"`
	ModifiedAt    time.Time      `db:"modified_at"`
}

func (d Document) ToModel() *models.Document {
	return &models.Document{
		ID:            d.ID,
		OwnerID:       d.OwnerID.String,
		Title:         d.Title,
		Description:   d.Description,
		FileName:      d.FileName,
		StorageKey:    d.StorageKey,
		Size:          d.Size,
		ContentType:   d.ContentType,
		Hash:          d.Hash,
		IsPublic:      d.IsPublic,
		Status:        models.DocumentStatus(d.Status),
		DownloadCount: d.DownloadCount,
		LastAccessed:  timePtr(d.LastAccessed),
		CreatedBy:     d.CreatedBy.String,
		CreatedAt:     d.CreatedAt,
		ModifiedAt:    d.ModifiedAt,
	}
}

func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
