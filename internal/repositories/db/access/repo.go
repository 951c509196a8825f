package accessrepo

import (
	"context"
	"docshare/internal/entities"
	"docshare/internal/models"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const pkg = "accessRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.AccessEvent) error {
	op := pkg + "CreateEvent"

	var extra any
	if len(event.Extra) > 0 {
		raw, err := json.Marshal(event.Extra)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		extra = raw
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_logs (id, document_id, user_id, action, success, error_message,
			ip_address, user_agent, additional_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.DocumentID, event.SubjectID, string(event.Action), event.Success, event.Error,
		event.IP, event.UserAgent, extra, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// EventsForDocument returns the newest events first.
func (r *repository) EventsForDocument(ctx context.Context, documentID string, limit int) ([]*models.AccessEvent, error) {
	op := pkg + "EventsForDocument"

	rawEvents := make([]entities.AccessLog, 0)

	err := r.db.SelectContext(ctx, &rawEvents,
		`SELECT
			a.id AS id,
			a.document_id AS document_id,
			a.user_id AS user_id,
			a.action AS action,
			a.success AS success,
			a.error_message AS error_message,
			a.ip_address AS ip_address,
			a.user_agent AS user_agent,
			a.additional_info AS additional_info,
			a.created_at AS created_at
		FROM access_logs a
		WHERE a.document_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2`,
		documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]*models.AccessEvent, 0, len(rawEvents))
	for _, e := range rawEvents {
		events = append(events, e.ToModel())
	}

	return events, nil
}
