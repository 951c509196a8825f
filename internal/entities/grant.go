package entities

import (
	"docshare/internal/models"
	"time"
)

type Grant struct {
	ID         string    `db:"id"`
	SubjectID  string    `db:"subject_id"`
	Permission string    `db:"permission"`
	DocumentID string    `db:"document_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func (g Grant) ToModel() *models.Grant {
	return &models.Grant{
		ID:         g.ID,
		SubjectID:  g.SubjectID,
		Permission: models.Permission(g.Permission),
		DocumentID: g.DocumentID,
		CreatedAt:  g.CreatedAt,
	}
}
