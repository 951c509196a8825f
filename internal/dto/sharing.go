package dto

import (
	"docshare/internal/models"
	"encoding/json"
	"time"
)

type ShareRequest struct {
	UserID    string                 `json:"user_id"`
	Level     models.PermissionLevel `json:"permission_level"`
	ExpiresAt *time.Time             `json:"expires_at"`
}

type BulkShareRequest struct {
	UserIDs   []string               `json:"user_ids"`
	Level     models.PermissionLevel `json:"permission_level"`
	ExpiresAt *time.Time             `json:"expires_at"`
}

// ShareUpdateRequest distinguishes an absent expires_at from an explicit null,
// which clears the expiry.
type ShareUpdateRequest struct {
	Level     *models.PermissionLevel `json:"permission_level"`
	ExpiresAt json.RawMessage         `json:"expires_at"`
}

func (r ShareUpdateRequest) Update() (models.ShareUpdate, error) {
	upd := models.ShareUpdate{Level: r.Level}

	if len(r.ExpiresAt) == 0 {
		return upd, nil
	}

	upd.SetExpiry = true
	if string(r.ExpiresAt) == "null" {
		return upd, nil
	}

	var expiresAt time.Time
	if err := json.Unmarshal(r.ExpiresAt, &expiresAt); err != nil {
		return models.ShareUpdate{}, models.ErrInvalidParams
	}
	upd.ExpiresAt = &expiresAt

	return upd, nil
}

type GrantRequest struct {
	UserIDs     []string            `json:"user_ids"`
	Permissions []models.Permission `json:"permissions"`
	Template    string              `json:"template"`
}

type CopyPermissionsRequest struct {
	TargetID      string `json:"target_document_id"`
	IncludeShares bool   `json:"include_shares"`
}
