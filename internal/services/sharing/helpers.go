package sharingservice

import (
	"context"
	"docshare/internal/models"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"
)

func validateShareInput(level models.PermissionLevel, expiresAt *time.Time, now time.Time) error {
	if !level.IsValid() {
		return models.ErrInvalidPermissionLevel
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return fmt.Errorf("expiry must be in the future: %w", models.ErrInvalidParams)
	}
	return nil
}

// checkRecipient rejects sharing with the owner, then sharing with oneself.
func checkRecipient(doc *models.Document, grantor *models.User, recipientID string) error {
	if recipientID == "" {
		return fmt.Errorf("empty recipient: %w", models.ErrInvalidParams)
	}
	if doc.IsOwnedBy(recipientID) {
		return models.ErrShareWithOwner
	}
	if recipientID == grantor.ID {
		return models.ErrShareWithSelf
	}
	return nil
}

// mayManage reports whether actor may change or revoke share: the document
// owner, the original grantor, or a superuser.
func mayManage(actor *models.User, doc *models.Document, share *models.Share) bool {
	if !actor.IsAuthenticated() {
		return false
	}
	return actor.IsSuperuser || doc.IsOwnedBy(actor.ID) || share.GrantorID == actor.ID
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

func permissionNames(perms []models.Permission) []string {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	return names
}

func (m *Manager) newShare(
	documentID string,
	grantorID string,
	recipientID string,
	level models.PermissionLevel,
	expiresAt *time.Time,
	now time.Time,
) *models.Share {
	var expiry *time.Time
	if expiresAt != nil {
		t := *expiresAt
		expiry = &t
	}

	return &models.Share{
		ID:                  m.ids.New(),
		DocumentID:          documentID,
		RecipientID:         recipientID,
		Level:               level,
		GrantorID:           grantorID,
		ExpiresAt:           expiry,
		PermissionChangedAt: now,
		CreatedAt:           now,
		ModifiedAt:          now,
	}
}

// document loads a document. Soft-deleted documents read as not found unless allowDeleted.
func (m *Manager) document(ctx context.Context, log *slog.Logger, id string, allowDeleted bool) (*models.Document, error) {
	doc, err := m.docs.DocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return nil, models.ErrDocumentNotFound
		}
		log.Error("failed to load document", slog.String("doc_id", id), slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	if doc.IsDeleted() && !allowDeleted {
		return nil, models.ErrDocumentNotFound
	}

	return doc, nil
}

func (m *Manager) managedShare(
	ctx context.Context,
	log *slog.Logger,
	actor *models.User,
	shareID string,
	allowDeleted bool,
) (*models.Share, *models.Document, error) {
	share, err := m.shares.ShareByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, models.ErrShareNotFound) {
			return nil, nil, models.ErrShareNotFound
		}
		log.Error("failed to load share", slog.String("share_id", shareID), slog.String("error", err.Error()))
		return nil, nil, models.ErrInternal
	}

	doc, err := m.document(ctx, log, share.DocumentID, allowDeleted)
	if err != nil {
		return nil, nil, err
	}

	if !mayManage(actor, doc, share) {
		log.Warn("user may not manage share", slog.String("share_id", share.ID), slog.String("user_id", actor.SubjectID()))
		return nil, nil, models.ErrForbidden
	}

	return share, doc, nil
}

// requireExisting fails with ErrUnknownRecipient naming the ids that do not resolve to a user.
func (m *Manager) requireExisting(ctx context.Context, log *slog.Logger, ids []string) error {
	existing, err := m.users.ExistingIDs(ctx, ids)
	if err != nil {
		log.Error("failed to look up users", slog.String("error", err.Error()))
		return models.ErrInternal
	}

	missing := make([]string, 0)
	for _, id := range ids {
		if !slices.Contains(existing, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownRecipient, strings.Join(missing, ", "))
	}

	return nil
}

func (m *Manager) requireAdmin(ctx context.Context, log *slog.Logger, actor *models.User) error {
	ok, err := m.authz.IsAdmin(ctx, actor)
	if err != nil {
		log.Error("failed to resolve admin status", slog.String("error", err.Error()))
		return models.ErrInternal
	}
	if !ok {
		log.Warn("admin rights required", slog.String("user_id", actor.SubjectID()))
		return models.ErrForbidden
	}
	return nil
}

func (m *Manager) grantInput(subjectIDs []string, perms []models.Permission) ([]string, error) {
	subjects := dedupe(subjectIDs)
	if len(subjects) == 0 {
		return nil, fmt.Errorf("no subjects: %w", models.ErrInvalidParams)
	}
	if len(subjects) > m.opts.MaxBulkRecipients {
		return nil, fmt.Errorf("%w: at most %d", models.ErrTooManyRecipients, m.opts.MaxBulkRecipients)
	}
	if len(perms) == 0 {
		return nil, fmt.Errorf("no permissions: %w", models.ErrInvalidParams)
	}
	for _, p := range perms {
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidPermission, p)
		}
	}
	return subjects, nil
}

// Cache failures leave entries to expire by TTL; they never fail the mutation.
func (m *Manager) invalidateSubject(ctx context.Context, log *slog.Logger, subjectID string, documentID string) {
	if err := m.cache.InvalidateSubject(ctx, subjectID, documentID); err != nil {
		log.Error("failed to invalidate permission cache",
			slog.String("subject_id", subjectID),
			slog.String("doc_id", documentID),
			slog.String("error", err.Error()))
	}
}

func (m *Manager) invalidateDocument(ctx context.Context, log *slog.Logger, documentID string) {
	if err := m.cache.InvalidateDocument(ctx, documentID); err != nil {
		log.Error("failed to invalidate permission cache",
			slog.String("doc_id", documentID),
			slog.String("error", err.Error()))
	}
}
