package entities

import (
	"database/sql"
	"docshare/internal/models"
	"encoding/json"
	"time"
)

type AccessLog struct {
	ID             string         `db:"id"`
	DocumentID     sql.NullString `db:"document_id"`
	UserID         sql.NullString `db:"user_id"`
	Action         string         `db:"action"`
	Success        bool           `db:"success"`
	ErrorMessage   string         `db:"error_message"`
	IPAddress      string         `db:"ip_address"`
	UserAgent      string         `db:"user_agent"`
	AdditionalInfo []byte         `db:"additional_info"`
	CreatedAt      time.Time      `db:"created_at"`
}

func (a AccessLog) ToModel() *models.AccessEvent {
	event := &models.AccessEvent{
		ID:        a.ID,
		Action:    models.Action(a.Action),
		Success:   a.Success,
		Error:     a.ErrorMessage,
		IP:        a.IPAddress,
		UserAgent: a.UserAgent,
		CreatedAt: a.CreatedAt,
	}
	if a.DocumentID.Valid {
		event.DocumentID = &a.DocumentID.String
	}
	if a.UserID.Valid {
		event.SubjectID = &a.UserID.String
	}
	if len(a.AdditionalInfo) > 0 {
		_ = json.Unmarshal(a.AdditionalInfo, &event.Extra)
	}
	return event
}
