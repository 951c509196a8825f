package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusDraft    DocumentStatus = "draft"
	StatusActive   DocumentStatus = "active"
	StatusArchived DocumentStatus = "archived"
	StatusDeleted  DocumentStatus = "deleted"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

type Document struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	FileName      string         `json:"file_name"`
	StorageKey    string         `json:"-"`
	Size          int64          `json:"size"`
	ContentType   string         `json:"content_type"`
	Hash          string         `json:"hash"`
	IsPublic      bool           `json:"is_public"`
	Status        DocumentStatus `json:"status"`
	DownloadCount int64          `json:"download_count"`
	LastAccessed  *time.Time     `json:"last_accessed,omitempty"`
	CreatedBy     string         `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	ModifiedAt    time.Time      `json:"modified_at"`
}

func (d *Document) IsOwnedBy(subjectID string) bool {
	return subjectID != "" && d.OwnerID == subjectID
}

func (d *Document) IsDeleted() bool {
	return d.Status == StatusDeleted
}

// Extension returns the lowercased file extension without the leading dot.
func (d *Document) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.FileName)), ".")
}

func (d *Document) HumanSize() string {
	size := float64(d.Size)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

type DocumentFilter struct {
	Key    string
	Value  string
	Limit  int
	Offset int
}

var allowedKeys = map[string]bool{
	"title":        true,
	"content_type": true,
	"extension":    true,
	"owner":        true,
	"status":       true,
}

func (f DocumentFilter) IsValid() bool {
	if f.Key == "" && f.Value != "" {
		return false
	}
	if f.Key != "" && !allowedKeys[f.Key] {
		return false
	}
	if f.Key == "status" && !DocumentStatus(f.Value).IsValid() {
		return false
	}
	return true
}

// DocumentUpdate holds the editable fields of a document; nil fields are left untouched.
type DocumentUpdate struct {
	Title       *string
	Description *string
	IsPublic    *bool
	Status      *DocumentStatus
}

// TouchesRestricted reports whether the update changes fields reserved to the owner.
func (u DocumentUpdate) TouchesRestricted() bool {
	return u.IsPublic != nil || u.Status != nil
}

func (u DocumentUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.IsPublic == nil && u.Status == nil
}

type UserDocuments struct {
	Owned  []*Document `json:"owned"`
	Shared []*Shared   `json:"shared"`
	Stats  Stats       `json:"stats"`
}

type Shared struct {
	Document *Document `json:"document"`
	Share    *Share    `json:"share"`
}

type Stats struct {
	TotalOwned  int   `json:"total_owned"`
	TotalShared int   `json:"total_shared"`
	TotalSize   int64 `json:"total_size"`
}
