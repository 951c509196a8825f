package sharingservice

import (
	"context"
	"docshare/internal/clock"
	"docshare/internal/models"
	auditservice "docshare/internal/services/audit"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

const (
	pkg = "sharingService/"

	DefaultMaxBulkRecipients = 50
)

type Options struct {
	MaxBulkRecipients int
}

// Manager creates, changes and removes shares and grants. Every mutation
// invalidates the affected permission cache entries before it returns.
type Manager struct {
	log    *slog.Logger
	shares ShareRepository
	grants GrantRepository
	users  UserRepository
	docs   DocumentProvider
	authz  Authorizer
	cache  PermissionCache
	audit  Auditor
	clock  clock.Clock
	ids    clock.IDGenerator
	opts   Options
}

func New(
	log *slog.Logger,
	shares ShareRepository,
	grants GrantRepository,
	users UserRepository,
	docs DocumentProvider,
	authz Authorizer,
	cache PermissionCache,
	audit Auditor,
	clk clock.Clock,
	ids clock.IDGenerator,
	opts Options,
) *Manager {
	if opts.MaxBulkRecipients <= 0 {
		opts.MaxBulkRecipients = DefaultMaxBulkRecipients
	}

	return &Manager{
		log:    log,
		shares: shares,
		grants: grants,
		users:  users,
		docs:   docs,
		authz:  authz,
		cache:  cache,
		audit:  audit,
		clock:  clk,
		ids:    ids,
		opts:   opts,
	}
}

func (m *Manager) CreateShare(
	ctx context.Context,
	grantor *models.User,
	documentID string,
	recipientID string,
	level models.PermissionLevel,
	expiresAt *time.Time,
) (*models.Share, error) {
	op := pkg + "CreateShare"

	log := m.log.With(slog.String("op", op))

	log.Debug("attempting to share document",
		slog.String("doc_id", documentID),
		slog.String("grantor_id", grantor.SubjectID()),
		slog.String("recipient_id", recipientID))

	now := m.clock.Now()

	if err := validateShareInput(level, expiresAt, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := m.document(ctx, log, documentID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !m.authz.CanShare(ctx, grantor, doc) {
		log.Warn("user may not share document", slog.String("doc_id", doc.ID), slog.String("user_id", grantor.SubjectID()))
		m.audit.Record(ctx, auditservice.Failed(auditservice.Event(models.ActionShare, doc.ID, grantor), models.ErrForbidden))
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	if err := checkRecipient(doc, grantor, recipientID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := m.users.ExistingIDs(ctx, []string{recipientID})
	if err != nil {
		log.Error("failed to look up recipient", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnknownRecipient)
	}

	// Any prior share, expired or not, must be removed explicitly first.
	_, err = m.shares.ShareFor(ctx, doc.ID, recipientID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, models.ErrShareExists)
	case !errors.Is(err, models.ErrShareNotFound):
		log.Error("failed to check existing share", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	share := m.newShare(doc.ID, grantor.ID, recipientID, level, expiresAt, now)

	if err := m.shares.CreateShare(ctx, share); err != nil {
		if errors.Is(err, models.ErrUNIQUEConstraintFailed) {
			log.Warn("share created concurrently", slog.String("doc_id", doc.ID), slog.String("recipient_id", recipientID))
			return nil, fmt.Errorf("%s: %w", op, models.ErrShareExists)
		}
		log.Error("failed to save share", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	m.invalidateSubject(ctx, log, recipientID, doc.ID)

	event := auditservice.Event(models.ActionShare, doc.ID, grantor)
	event.Extra = map[string]any{
		"shared_with":      recipientID,
		"permission_level": string(level),
	}
	m.audit.Record(ctx, event)

	log.Info("document shared", slog.String("share_id", share.ID), slog.String("doc_id", doc.ID))

	return share, nil
}

// BulkCreateShares shares one document with many recipients. Recipients that are
// the owner, the grantor, or already hold a share are skipped. Creation is best
// effort per recipient.
func (m *Manager) BulkCreateShares(
	ctx context.Context,
	grantor *models.User,
	documentID string,
	recipientIDs []string,
	level models.PermissionLevel,
	expiresAt *time.Time,
) (*models.BulkShareResult, error) {
	op := pkg + "BulkCreateShares"

	log := m.log.With(slog.String("op", op))

	recipients := dedupe(recipientIDs)
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%s: no recipients: %w", op, models.ErrInvalidParams)
	}
	if len(recipients) > m.opts.MaxBulkRecipients {
		return nil, fmt.Errorf("%s: %w: at most %d", op, models.ErrTooManyRecipients, m.opts.MaxBulkRecipients)
	}

	now := m.clock.Now()

	if err := validateShareInput(level, expiresAt, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := m.document(ctx, log, documentID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !m.authz.CanShare(ctx, grantor, doc) {
		log.Warn("user may not share document", slog.String("doc_id", doc.ID), slog.String("user_id", grantor.SubjectID()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	if err := m.requireExisting(ctx, log, recipients); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	already, err := m.shares.RecipientsWithShares(ctx, doc.ID, recipients)
	if err != nil {
		log.Error("failed to load existing shares", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	result := &models.BulkShareResult{Shares: make([]*models.Share, 0, len(recipients))}

	for _, recipientID := range recipients {
		if recipientID == doc.OwnerID || recipientID == grantor.ID || slices.Contains(already, recipientID) {
			continue
		}

		share := m.newShare(doc.ID, grantor.ID, recipientID, level, expiresAt, now)

		if err := m.shares.CreateShare(ctx, share); err != nil {
			if !errors.Is(err, models.ErrUNIQUEConstraintFailed) {
				log.Error("failed to save share", slog.String("recipient_id", recipientID), slog.String("error", err.Error()))
			}
			continue
		}

		m.invalidateSubject(ctx, log, recipientID, doc.ID)
		result.Shares = append(result.Shares, share)
	}

	result.CreatedCount = len(result.Shares)

	event := auditservice.Event(models.ActionShare, doc.ID, grantor)
	event.Extra = map[string]any{
		"shared_count":     result.CreatedCount,
		"permission_level": string(level),
		"bulk":             true,
	}
	m.audit.Record(ctx, event)

	log.Info("document shared in bulk",
		slog.String("doc_id", doc.ID),
		slog.Int("requested", len(recipients)),
		slog.Int("created", result.CreatedCount))

	return result, nil
}

// UpdateShare changes the level and/or expiry of a share. A level change stamps
// PermissionChangedAt.
func (m *Manager) UpdateShare(ctx context.Context, actor *models.User, shareID string, upd models.ShareUpdate) (*models.Share, error) {
	op := pkg + "UpdateShare"

	log := m.log.With(slog.String("op", op))

	if upd.Level != nil && !upd.Level.IsValid() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidPermissionLevel)
	}

	now := m.clock.Now()

	if upd.SetExpiry && upd.ExpiresAt != nil && !upd.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%s: expiry must be in the future: %w", op, models.ErrInvalidParams)
	}

	share, doc, err := m.managedShare(ctx, log, actor, shareID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.Level != nil && *upd.Level != share.Level {
		share.Level = *upd.Level
		share.PermissionChangedAt = now
	}
	if upd.SetExpiry {
		share.ExpiresAt = upd.ExpiresAt
	}
	share.ModifiedAt = now

	if err := m.shares.UpdateShare(ctx, share); err != nil {
		if errors.Is(err, models.ErrShareNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrShareNotFound)
		}
		log.Error("failed to update share", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	m.invalidateSubject(ctx, log, share.RecipientID, share.DocumentID)

	event := auditservice.Event(models.ActionShare, doc.ID, actor)
	event.Extra = map[string]any{
		"share_id":         share.ID,
		"permission_level": string(share.Level),
		"updated":          true,
	}
	m.audit.Record(ctx, event)

	log.Info("share updated", slog.String("share_id", share.ID))

	return share, nil
}

// RevokeShare hard-deletes a share. The audit event is written first since the
// recipient link is gone afterwards.
func (m *Manager) RevokeShare(ctx context.Context, actor *models.User, shareID string) error {
	op := pkg + "RevokeShare"

	log := m.log.With(slog.String("op", op))

	share, doc, err := m.managedShare(ctx, log, actor, shareID, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	event := auditservice.Event(models.ActionUnshare, doc.ID, actor)
	event.Extra = map[string]any{
		"unshared_from": share.RecipientID,
		"share_id":      share.ID,
	}
	m.audit.Record(ctx, event)

	if err := m.shares.DeleteShare(ctx, share.ID); err != nil {
		if errors.Is(err, models.ErrShareNotFound) {
			return fmt.Errorf("%s: %w", op, models.ErrShareNotFound)
		}
		log.Error("failed to delete share", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	m.invalidateSubject(ctx, log, share.RecipientID, share.DocumentID)

	log.Info("share revoked", slog.String("share_id", share.ID))

	return nil
}

// CopyPermissions replicates the direct grants and, optionally, the active
// shares of source onto target. Copied shares are stamped with the actor as grantor.
func (m *Manager) CopyPermissions(ctx context.Context, actor *models.User, sourceID string, targetID string, includeShares bool) (*models.CopyResult, error) {
	op := pkg + "CopyPermissions"

	log := m.log.With(slog.String("op", op))

	if sourceID == targetID {
		return nil, fmt.Errorf("%s: source and target are the same document: %w", op, models.ErrInvalidParams)
	}

	source, err := m.document(ctx, log, sourceID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	target, err := m.document(ctx, log, targetID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !m.authz.CanShare(ctx, actor, source) || !m.authz.CanShare(ctx, actor, target) {
		log.Warn("user may not copy permissions",
			slog.String("source_id", source.ID),
			slog.String("target_id", target.ID),
			slog.String("user_id", actor.SubjectID()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	now := m.clock.Now()
	result := &models.CopyResult{}

	grants, err := m.grants.GrantsForDocument(ctx, source.ID)
	if err != nil {
		log.Error("failed to load source grants", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if len(grants) > 0 {
		copies := make([]*models.Grant, 0, len(grants))
		for _, g := range grants {
			copies = append(copies, &models.Grant{
				ID:         m.ids.New(),
				SubjectID:  g.SubjectID,
				Permission: g.Permission,
				DocumentID: target.ID,
				CreatedAt:  now,
			})
		}

		result.GrantsCopied, err = m.grants.AddGrants(ctx, copies)
		if err != nil {
			log.Error("failed to copy grants", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
		}
	}

	if includeShares {
		result.SharesCopied, err = m.copyShares(ctx, log, actor, source, target, now)
		if err != nil {
			m.invalidateDocument(ctx, log, target.ID)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	m.invalidateDocument(ctx, log, target.ID)

	event := auditservice.Event(models.ActionShare, target.ID, actor)
	event.Extra = map[string]any{
		"copied_from":   source.ID,
		"grants_copied": result.GrantsCopied,
		"shares_copied": result.SharesCopied,
	}
	m.audit.Record(ctx, event)

	log.Info("permissions copied",
		slog.String("source_id", source.ID),
		slog.String("target_id", target.ID),
		slog.Int("grants", result.GrantsCopied),
		slog.Int("shares", result.SharesCopied))

	return result, nil
}

func (m *Manager) copyShares(
	ctx context.Context,
	log *slog.Logger,
	actor *models.User,
	source *models.Document,
	target *models.Document,
	now time.Time,
) (int, error) {
	shares, err := m.shares.SharesForDocument(ctx, source.ID)
	if err != nil {
		log.Error("failed to load source shares", slog.String("error", err.Error()))
		return 0, models.ErrInternal
	}

	// the copy is granted by the actor, so neither the target's owner nor the
	// actor may end up as a recipient
	active := make([]*models.Share, 0, len(shares))
	recipients := make([]string, 0, len(shares))
	for _, s := range shares {
		if s.IsActive(now) && s.RecipientID != target.OwnerID && s.RecipientID != actor.ID {
			active = append(active, s)
			recipients = append(recipients, s.RecipientID)
		}
	}
	if len(active) == 0 {
		return 0, nil
	}

	already, err := m.shares.RecipientsWithShares(ctx, target.ID, recipients)
	if err != nil {
		log.Error("failed to load target shares", slog.String("error", err.Error()))
		return 0, models.ErrInternal
	}

	copied := 0
	for _, s := range active {
		if slices.Contains(already, s.RecipientID) {
			continue
		}

		share := m.newShare(target.ID, actor.ID, s.RecipientID, s.Level, s.ExpiresAt, now)
		if err := m.shares.CreateShare(ctx, share); err != nil {
			if !errors.Is(err, models.ErrUNIQUEConstraintFailed) {
				log.Error("failed to copy share", slog.String("recipient_id", s.RecipientID), slog.String("error", err.Error()))
			}
			continue
		}
		copied++
	}

	return copied, nil
}

// AssignGrants gives every subject every permission on the document.
// Restricted to superusers and the administrative group.
func (m *Manager) AssignGrants(
	ctx context.Context,
	actor *models.User,
	documentID string,
	subjectIDs []string,
	perms []models.Permission,
) (int, error) {
	op := pkg + "AssignGrants"

	log := m.log.With(slog.String("op", op))

	subjects, err := m.grantInput(subjectIDs, perms)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.requireAdmin(ctx, log, actor); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := m.document(ctx, log, documentID, false)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.requireExisting(ctx, log, subjects); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	now := m.clock.Now()
	grants := make([]*models.Grant, 0, len(subjects)*len(perms))
	for _, subjectID := range subjects {
		for _, perm := range perms {
			grants = append(grants, &models.Grant{
				ID:         m.ids.New(),
				SubjectID:  subjectID,
				Permission: perm,
				DocumentID: doc.ID,
				CreatedAt:  now,
			})
		}
	}

	created, err := m.grants.AddGrants(ctx, grants)
	if err != nil {
		log.Error("failed to save grants", slog.String("error", err.Error()))
		return 0, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	for _, subjectID := range subjects {
		m.invalidateSubject(ctx, log, subjectID, doc.ID)
	}

	event := auditservice.Event(models.ActionShare, doc.ID, actor)
	event.Extra = map[string]any{
		"granted_to":  subjects,
		"permissions": permissionNames(perms),
		"created":     created,
	}
	m.audit.Record(ctx, event)

	log.Info("grants assigned", slog.String("doc_id", doc.ID), slog.Int("created", created))

	return created, nil
}

// RemoveGrants drops the listed permissions of the listed subjects on the document.
func (m *Manager) RemoveGrants(
	ctx context.Context,
	actor *models.User,
	documentID string,
	subjectIDs []string,
	perms []models.Permission,
) (int, error) {
	op := pkg + "RemoveGrants"

	log := m.log.With(slog.String("op", op))

	subjects, err := m.grantInput(subjectIDs, perms)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.requireAdmin(ctx, log, actor); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := m.document(ctx, log, documentID, true)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	removed, err := m.grants.RemoveGrants(ctx, doc.ID, subjects, perms)
	if err != nil {
		log.Error("failed to remove grants", slog.String("error", err.Error()))
		return 0, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	for _, subjectID := range subjects {
		m.invalidateSubject(ctx, log, subjectID, doc.ID)
	}

	event := auditservice.Event(models.ActionUnshare, doc.ID, actor)
	event.Extra = map[string]any{
		"revoked_from": subjects,
		"permissions":  permissionNames(perms),
		"removed":      removed,
	}
	m.audit.Record(ctx, event)

	log.Info("grants removed", slog.String("doc_id", doc.ID), slog.Int("removed", removed))

	return removed, nil
}

// ApplyTemplate assigns the permission set of a named template (owner, editor,
// viewer, reviewer) to the subjects.
func (m *Manager) ApplyTemplate(ctx context.Context, actor *models.User, documentID string, subjectIDs []string, template string) (int, error) {
	op := pkg + "ApplyTemplate"

	perms, ok := models.Template(template)
	if !ok {
		return 0, fmt.Errorf("%s: %w: %q", op, models.ErrUnknownTemplate, template)
	}

	created, err := m.AssignGrants(ctx, actor, documentID, subjectIDs, perms)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// ListShares returns every share of the document, expired ones included.
func (m *Manager) ListShares(ctx context.Context, actor *models.User, documentID string) ([]*models.Share, error) {
	op := pkg + "ListShares"

	log := m.log.With(slog.String("op", op))

	doc, err := m.document(ctx, log, documentID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !m.authz.CanShare(ctx, actor, doc) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	shares, err := m.shares.SharesForDocument(ctx, doc.ID)
	if err != nil {
		log.Error("failed to load shares", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return shares, nil
}

func (m *Manager) ListGrants(ctx context.Context, actor *models.User, documentID string) ([]*models.Grant, error) {
	op := pkg + "ListGrants"

	log := m.log.With(slog.String("op", op))

	doc, err := m.document(ctx, log, documentID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !m.authz.CanShare(ctx, actor, doc) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	grants, err := m.grants.GrantsForDocument(ctx, doc.ID)
	if err != nil {
		log.Error("failed to load grants", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return grants, nil
}
