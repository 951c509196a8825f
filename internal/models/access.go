package models

import "time"

type Action string

const (
	ActionView     Action = "view"
	ActionList     Action = "list"
	ActionHead     Action = "head"
	ActionDownload Action = "download"
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionShare    Action = "share"
	ActionUpload   Action = "upload"
	ActionUnshare  Action = "unshare"
	ActionRestore  Action = "restore"
)

// Permission maps an action to the grant that confers it.
func (a Action) Permission() Permission {
	switch a {
	case ActionView, ActionList, ActionHead:
		return PermViewDoc
	case ActionDownload:
		return PermDownloadDoc
	case ActionEdit:
		return PermEditDoc
	case ActionDelete, ActionRestore:
		return PermDeleteDoc
	case ActionShare, ActionUnshare:
		return PermShareDoc
	}
	return ""
}

func (a Action) ReadOnly() bool {
	return a == ActionView || a == ActionList || a == ActionHead
}

type AccessEvent struct {
	ID         string         `json:"id"`
	DocumentID *string        `json:"document_id,omitempty"`
	SubjectID  *string        `json:"user_id,omitempty"`
	Action     Action         `json:"action"`
	Success    bool           `json:"success"`
	Error      string         `json:"error_message,omitempty"`
	IP         string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Extra      map[string]any `json:"additional_info,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// PermissionSummary describes what a subject may do with one document.
type PermissionSummary struct {
	CanView        bool             `json:"can_view"`
	CanEdit        bool             `json:"can_edit"`
	CanDelete      bool             `json:"can_delete"`
	CanDownload    bool             `json:"can_download"`
	CanShare       bool             `json:"can_share"`
	IsOwner        bool             `json:"is_owner"`
	SharedLevel    *PermissionLevel `json:"shared_permission"`
	ShareExpiresAt *time.Time       `json:"share_expires_at"`
}
