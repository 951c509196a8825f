package models

import "time"

type Permission string

const (
	PermViewDoc     Permission = "view_doc"
	PermEditDoc     Permission = "edit_doc"
	PermDeleteDoc   Permission = "delete_doc"
	PermDownloadDoc Permission = "download_doc"
	PermShareDoc    Permission = "share_doc"
)

func (p Permission) IsValid() bool {
	switch p {
	case PermViewDoc, PermEditDoc, PermDeleteDoc, PermDownloadDoc, PermShareDoc:
		return true
	}
	return false
}

type Grant struct {
	ID         string     `json:"id"`
	SubjectID  string     `json:"subject_id"`
	Permission Permission `json:"permission"`
	DocumentID string     `json:"document_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

var templates = map[string][]Permission{
	"owner":    {PermViewDoc, PermEditDoc, PermDeleteDoc, PermDownloadDoc, PermShareDoc},
	"editor":   {PermViewDoc, PermEditDoc, PermDownloadDoc},
	"viewer":   {PermViewDoc},
	"reviewer": {PermViewDoc, PermDownloadDoc},
}

// Template returns the permission set of a named role template.
func Template(name string) ([]Permission, bool) {
	perms, ok := templates[name]
	if !ok {
		return nil, false
	}
	return append([]Permission(nil), perms...), true
}
