package auditservice

import (
	"context"
	"docshare/internal/clock"
	"docshare/internal/models"
	"fmt"
	"log/slog"
)

const (
	pkg = "auditService/"

	DefaultLogLimit = 100
	MaxLogLimit     = 1000
)

// Recorder appends access events. Writes are best effort: a failed write is
// logged and never fails the operation being audited.
type Recorder struct {
	log   *slog.Logger
	repo  EventRepository
	clock clock.Clock
	ids   clock.IDGenerator
}

func New(log *slog.Logger, repo EventRepository, clk clock.Clock, ids clock.IDGenerator) *Recorder {
	return &Recorder{
		log:   log,
		repo:  repo,
		clock: clk,
		ids:   ids,
	}
}

// Event starts an access event for subject acting on documentID. Empty ids are left unset.
func Event(action models.Action, documentID string, subject *models.User) *models.AccessEvent {
	event := &models.AccessEvent{Action: action, Success: true}
	if documentID != "" {
		event.DocumentID = &documentID
	}
	if subject.IsAuthenticated() {
		id := subject.ID
		event.SubjectID = &id
	}
	return event
}

// Failed marks the event as unsuccessful with err as its message.
func Failed(event *models.AccessEvent, err error) *models.AccessEvent {
	event.Success = false
	if err != nil {
		event.Error = err.Error()
	}
	return event
}

func (r *Recorder) Record(ctx context.Context, event *models.AccessEvent) {
	op := pkg + "Record"

	log := r.log.With(slog.String("op", op))

	if event.ID == "" {
		event.ID = r.ids.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.clock.Now()
	}
	if info, ok := ctx.Value(models.ClientInfoContextKey).(models.ClientInfo); ok {
		if event.IP == "" {
			event.IP = info.IP
		}
		if event.UserAgent == "" {
			event.UserAgent = info.UserAgent
		}
	}

	if err := r.repo.CreateEvent(context.WithoutCancel(ctx), event); err != nil {
		log.Error("failed to write access event",
			slog.String("action", string(event.Action)),
			slog.String("error", err.Error()))
		return
	}

	log.Debug("access event recorded", slog.String("event_id", event.ID), slog.String("action", string(event.Action)))
}

// DocumentLogs returns the newest events of doc. Only the owner and superusers may read them.
func (r *Recorder) DocumentLogs(ctx context.Context, requester *models.User, doc *models.Document, limit int) ([]*models.AccessEvent, error) {
	op := pkg + "DocumentLogs"

	log := r.log.With(slog.String("op", op))

	if !requester.IsAuthenticated() || !(requester.IsSuperuser || doc.IsOwnedBy(requester.ID)) {
		log.Warn("access logs denied", slog.String("doc_id", doc.ID), slog.String("user_id", requester.SubjectID()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	switch {
	case limit <= 0:
		limit = DefaultLogLimit
	case limit > MaxLogLimit:
		limit = MaxLogLimit
	}

	events, err := r.repo.EventsForDocument(ctx, doc.ID, limit)
	if err != nil {
		log.Error("failed to load access events", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return events, nil
}
