package auditservice

import (
	"context"
	"docshare/internal/models"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event *models.AccessEvent) error
	EventsForDocument(ctx context.Context, documentID string, limit int) ([]*models.AccessEvent, error)
}
