package documentservice

import (
	"context"
	"crypto/sha256"
	"docshare/internal/clock"
	"docshare/internal/models"
	accessservice "docshare/internal/services/access"
	auditservice "docshare/internal/services/audit"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"
)

const (
	pkg = "documentService/"

	PublicPageSize   = 20
	DefaultListLimit = 50
	MaxListLimit     = 200

	hashConstraint = "documents_hash_key"
)

type Options struct {
	// ConcealForbidden reports denied reads as not found so that callers cannot
	// probe for documents they may not see.
	ConcealForbidden bool
}

type DocumentService struct {
	log         *slog.Logger
	docRepo     DocumentRepository
	shareRepo   ShareRepository
	userRepo    UserRepository
	fileStorage FileStorage
	authz       Authorizer
	cache       PermissionCache
	audit       Auditor
	clock       clock.Clock
	ids         clock.IDGenerator
	opts        Options
}

func New(
	log *slog.Logger,
	docRepo DocumentRepository,
	shareRepo ShareRepository,
	userRepo UserRepository,
	fileStorage FileStorage,
	authz Authorizer,
	cache PermissionCache,
	audit Auditor,
	clk clock.Clock,
	ids clock.IDGenerator,
	opts Options,
) *DocumentService {
	return &DocumentService{
		log:         log,
		docRepo:     docRepo,
		shareRepo:   shareRepo,
		userRepo:    userRepo,
		fileStorage: fileStorage,
		authz:       authz,
		cache:       cache,
		audit:       audit,
		clock:       clk,
		ids:         ids,
		opts:        opts,
	}
}

// UploadDocument stores content under a fresh key and records the document owned
// by requester. Content is read twice: once to hash it and once to store it.
func (ds *DocumentService) UploadDocument(ctx context.Context, requester *models.User, doc *models.Document, content io.ReadSeeker) (*models.Document, error) {
	op := pkg + "UploadDocument"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to upload document", slog.String("file_name", doc.FileName), slog.String("user_id", requester.SubjectID()))

	if !ds.authz.CanCreate(ctx, requester) {
		log.Warn("user may not upload documents", slog.String("user_id", requester.SubjectID()))
		ds.uploadFailed(ctx, requester, models.ErrForbidden)
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	doc.FileName = cleanFileName(doc.FileName)
	if doc.FileName == "" {
		return nil, fmt.Errorf("%s: empty file name: %w", op, models.ErrInvalidParams)
	}
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		doc.Title = doc.FileName
	}
	if doc.ContentType == "" {
		doc.ContentType = contentTypeOf(doc.FileName)
	}

	hash, size, err := digest(content)
	if err != nil {
		log.Error("failed to read content", slog.String("error", err.Error()))
		ds.uploadFailed(ctx, requester, err)
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if err := ds.ensureUniqueContent(ctx, log, hash); err != nil {
		ds.uploadFailed(ctx, requester, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := ds.clock.Now()

	doc.ID = ds.ids.New()
	doc.OwnerID = requester.ID
	doc.CreatedBy = requester.ID
	doc.Hash = hash
	doc.Size = size
	doc.Status = models.StatusActive
	doc.DownloadCount = 0
	doc.LastAccessed = nil
	doc.CreatedAt = now
	doc.ModifiedAt = now
	doc.StorageKey = storageKey(doc)

	if err := ds.fileStorage.Put(ctx, doc.StorageKey, content, size, doc.ContentType); err != nil {
		log.Error("failed to save file", slog.String("error", err.Error()))
		ds.uploadFailed(ctx, requester, err)
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if err := ds.docRepo.CreateDocument(ctx, doc); err != nil {
		if delErr := ds.fileStorage.Delete(context.WithoutCancel(ctx), doc.StorageKey); delErr != nil {
			log.Error("failed to clean up stored file", slog.String("key", doc.StorageKey), slog.String("error", delErr.Error()))
		}

		var uniqueErr *models.UniqueConstraintError
		if errors.As(err, &uniqueErr) && uniqueErr.Constraint == hashConstraint {
			log.Warn("identical content uploaded concurrently", slog.String("hash", hash))
			ds.uploadFailed(ctx, requester, models.ErrDuplicateContent)
			return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateContent)
		}

		log.Error("failed to save document metadata", slog.String("error", err.Error()))
		ds.uploadFailed(ctx, requester, err)
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	uploadsTotal.WithLabelValues("success").Inc()
	uploadedBytes.Add(float64(size))

	event := auditservice.Event(models.ActionUpload, doc.ID, requester)
	event.Extra = map[string]any{
		"file_name": doc.FileName,
		"size":      doc.Size,
	}
	ds.audit.Record(ctx, event)

	log.Debug("document uploaded successfully", slog.String("doc_id", doc.ID), slog.String("owner_id", doc.OwnerID))

	return doc, nil
}

func (ds *DocumentService) uploadFailed(ctx context.Context, requester *models.User, err error) {
	result := "error"
	switch {
	case errors.Is(err, models.ErrForbidden):
		result = "forbidden"
	case errors.Is(err, models.ErrDuplicateContent):
		result = "duplicate"
	}
	uploadsTotal.WithLabelValues(result).Inc()

	ds.audit.Record(ctx, auditservice.Failed(auditservice.Event(models.ActionUpload, "", requester), err))
}

func (ds *DocumentService) ensureUniqueContent(ctx context.Context, log *slog.Logger, hash string) error {
	existing, err := ds.docRepo.DocumentByHash(ctx, hash)
	switch {
	case err == nil:
		log.Warn("duplicate content rejected", slog.String("existing_id", existing.ID))
		return models.ErrDuplicateContent
	case errors.Is(err, models.ErrDocumentNotFound):
		return nil
	default:
		log.Error("failed to check content hash", slog.String("error", err.Error()))
		return models.ErrInternal
	}
}

// DocumentByID returns document metadata when requester may view it.
func (ds *DocumentService) DocumentByID(ctx context.Context, requester *models.User, docID string) (*models.Document, error) {
	op := pkg + "DocumentByID"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to get document by id", slog.String("doc_id", docID), slog.String("user_id", requester.SubjectID()))

	doc, _, err := ds.authorized(ctx, log, requester, docID, models.ActionView)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ds.audit.Record(ctx, auditservice.Event(models.ActionView, doc.ID, requester))

	return doc, nil
}

// HeadDocument is DocumentByID without the audit record, for existence and metadata checks.
func (ds *DocumentService) HeadDocument(ctx context.Context, requester *models.User, docID string) (*models.Document, error) {
	op := pkg + "HeadDocument"

	log := ds.log.With(slog.String("op", op))

	doc, _, err := ds.authorized(ctx, log, requester, docID, models.ActionHead)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return doc, nil
}

// Download opens the document content. The caller closes the reader.
func (ds *DocumentService) Download(ctx context.Context, requester *models.User, docID string) (*models.Document, io.ReadCloser, error) {
	op := pkg + "Download"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to download document", slog.String("doc_id", docID), slog.String("user_id", requester.SubjectID()))

	doc, decision, err := ds.authorized(ctx, log, requester, docID, models.ActionDownload)
	if err != nil {
		downloadsTotal.WithLabelValues("denied").Inc()
		if doc != nil {
			ds.audit.Record(ctx, auditservice.Failed(auditservice.Event(models.ActionDownload, doc.ID, requester), err))
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	file, err := ds.fileStorage.Get(ctx, doc.StorageKey)
	if err != nil {
		log.Error("failed to load file from storage", slog.String("doc_id", doc.ID), slog.String("error", err.Error()))
		downloadsTotal.WithLabelValues("error").Inc()
		ds.audit.Record(ctx, auditservice.Failed(auditservice.Event(models.ActionDownload, doc.ID, requester), err))
		return nil, nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	now := ds.clock.Now()

	if err := ds.docRepo.IncrementDownloadCount(ctx, doc.ID, now); err != nil {
		log.Error("failed to count download", slog.String("error", err.Error()))
	}

	if decision.Rule == accessservice.RuleActiveShare {
		ds.countShareAccess(ctx, log, doc.ID, requester.ID, now)
	}

	downloadsTotal.WithLabelValues("success").Inc()

	event := auditservice.Event(models.ActionDownload, doc.ID, requester)
	event.Extra = map[string]any{"via": string(decision.Rule)}
	ds.audit.Record(ctx, event)

	log.Debug("document download started", slog.String("doc_id", doc.ID))

	return doc, file, nil
}

func (ds *DocumentService) countShareAccess(ctx context.Context, log *slog.Logger, docID string, recipientID string, now time.Time) {
	share, err := ds.shareRepo.ShareFor(ctx, docID, recipientID)
	if err != nil {
		log.Warn("failed to load share for access count", slog.String("error", err.Error()))
		return
	}

	if err := ds.shareRepo.IncrementAccessCount(ctx, share.ID, now); err != nil {
		log.Error("failed to count share access", slog.String("share_id", share.ID), slog.String("error", err.Error()))
	}
}

// UpdateDocument edits metadata. Title and description need edit rights;
// visibility and status are reserved to the owner and administrators.
func (ds *DocumentService) UpdateDocument(ctx context.Context, requester *models.User, docID string, upd models.DocumentUpdate) (*models.Document, error) {
	op := pkg + "UpdateDocument"

	log := ds.log.With(slog.String("op", op))

	if err := validateUpdate(upd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, _, err := ds.authorized(ctx, log, requester, docID, models.ActionEdit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if upd.TouchesRestricted() {
		ok, err := ds.ownerOrAdmin(ctx, requester, doc)
		if err != nil {
			log.Error("failed to resolve admin status", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
		}
		if !ok {
			log.Warn("restricted fields need owner rights", slog.String("doc_id", doc.ID), slog.String("user_id", requester.SubjectID()))
			return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
		}
	}

	updated, err := ds.docRepo.UpdateDocument(ctx, doc.ID, upd, ds.clock.Now())
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		log.Error("failed to update document", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	event := auditservice.Event(models.ActionEdit, doc.ID, requester)
	event.Extra = map[string]any{"fields": updatedFields(upd)}
	ds.audit.Record(ctx, event)

	return updated, nil
}

// DeleteDocument soft-deletes: the row and content stay until purged.
func (ds *DocumentService) DeleteDocument(ctx context.Context, requester *models.User, docID string) error {
	op := pkg + "DeleteDocument"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to delete document", slog.String("doc_id", docID), slog.String("user_id", requester.SubjectID()))

	doc, _, err := ds.authorized(ctx, log, requester, docID, models.ActionDelete)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ds.docRepo.UpdateStatus(ctx, doc.ID, models.StatusDeleted, ds.clock.Now()); err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		log.Error("failed to mark document deleted", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	ds.invalidate(ctx, log, doc.ID)

	ds.audit.Record(ctx, auditservice.Event(models.ActionDelete, doc.ID, requester))

	log.Debug("document deleted", slog.String("doc_id", doc.ID))

	return nil
}

// RestoreDocument brings a soft-deleted document back, unless another live
// document now holds the same content or the stored content is gone.
func (ds *DocumentService) RestoreDocument(ctx context.Context, requester *models.User, docID string) (*models.Document, error) {
	op := pkg + "RestoreDocument"

	log := ds.log.With(slog.String("op", op))

	doc, err := ds.load(ctx, log, docID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	decision := ds.authz.Decide(ctx, requester, doc, models.ActionRestore)
	if !decision.Allowed {
		return nil, fmt.Errorf("%s: %w", op, ds.denied(ctx, decision, requester, doc, models.ActionRestore))
	}

	if !doc.IsDeleted() {
		return nil, fmt.Errorf("%s: document is not deleted: %w", op, models.ErrInvalidParams)
	}

	if err := ds.ensureUniqueContent(ctx, log, doc.Hash); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	present, err := ds.fileStorage.Exists(ctx, doc.StorageKey)
	if err != nil {
		log.Error("failed to check stored content", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrStoreUnavailable)
	}
	if !present {
		log.Warn("stored content is gone", slog.String("doc_id", doc.ID), slog.String("key", doc.StorageKey))
		return nil, fmt.Errorf("%s: %w", op, models.ErrBlobNotFound)
	}

	now := ds.clock.Now()

	if err := ds.docRepo.UpdateStatus(ctx, doc.ID, models.StatusActive, now); err != nil {
		var uniqueErr *models.UniqueConstraintError
		if errors.As(err, &uniqueErr) && uniqueErr.Constraint == hashConstraint {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDuplicateContent)
		}
		log.Error("failed to restore document", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	ds.invalidate(ctx, log, doc.ID)

	ds.audit.Record(ctx, auditservice.Event(models.ActionRestore, doc.ID, requester))

	doc.Status = models.StatusActive
	doc.ModifiedAt = now

	return doc, nil
}

// PurgeDocument hard-deletes the row, its grants, shares and access logs, and
// the stored content. Superusers only.
func (ds *DocumentService) PurgeDocument(ctx context.Context, requester *models.User, docID string) error {
	op := pkg + "PurgeDocument"

	log := ds.log.With(slog.String("op", op))

	if !requester.IsAuthenticated() || !requester.IsSuperuser {
		log.Warn("purge needs a superuser", slog.String("user_id", requester.SubjectID()))
		return fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	doc, err := ds.load(ctx, log, docID, true)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ds.docRepo.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		log.Error("failed to delete document row", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	ds.invalidate(ctx, log, doc.ID)

	if err := ds.fileStorage.Delete(ctx, doc.StorageKey); err != nil && !errors.Is(err, models.ErrBlobNotFound) {
		log.Error("failed to delete stored file", slog.String("key", doc.StorageKey), slog.String("error", err.Error()))
	}

	// The row's own access logs are gone with it, so the event is not linked to the document.
	event := auditservice.Event(models.ActionDelete, "", requester)
	event.Extra = map[string]any{
		"document_id": doc.ID,
		"purged":      true,
	}
	ds.audit.Record(ctx, event)

	log.Info("document purged", slog.String("doc_id", doc.ID))

	return nil
}

// TransferOwnership reassigns the owner. Administrators only.
func (ds *DocumentService) TransferOwnership(ctx context.Context, requester *models.User, docID string, newOwnerID string) (*models.Document, error) {
	op := pkg + "TransferOwnership"

	log := ds.log.With(slog.String("op", op))

	ok, err := ds.authz.IsAdmin(ctx, requester)
	if err != nil {
		log.Error("failed to resolve admin status", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	doc, err := ds.load(ctx, log, docID, false)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := ds.userRepo.ExistingIDs(ctx, []string{newOwnerID})
	if err != nil {
		log.Error("failed to look up new owner", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
	}

	now := ds.clock.Now()

	droppedShares, err := ds.docRepo.TransferOwner(ctx, doc.ID, newOwnerID, now)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		log.Error("failed to transfer ownership", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	ds.invalidate(ctx, log, doc.ID)

	event := auditservice.Event(models.ActionEdit, doc.ID, requester)
	event.Extra = map[string]any{
		"previous_owner": doc.OwnerID,
		"new_owner":      newOwnerID,
		"dropped_shares": droppedShares,
	}
	ds.audit.Record(ctx, event)

	doc.OwnerID = newOwnerID
	doc.ModifiedAt = now

	return doc, nil
}

// ListDocuments lists the non-deleted documents requester may view.
// Administrators see every document.
func (ds *DocumentService) ListDocuments(ctx context.Context, requester *models.User, filter models.DocumentFilter) ([]*models.Document, error) {
	op := pkg + "ListDocuments"

	log := ds.log.With(slog.String("op", op))

	log.Debug("attempting to list documents",
		slog.String("requester_id", requester.SubjectID()),
		slog.String("filter_key", filter.Key),
		slog.String("filter_value", filter.Value),
		slog.Int("limit", filter.Limit))

	if !filter.IsValid() {
		log.Warn("invalid filter format")
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidParams)
	}

	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultListLimit
	case filter.Limit > MaxListLimit:
		filter.Limit = MaxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	all, err := ds.authz.IsAdmin(ctx, requester)
	if err != nil {
		log.Warn("failed to resolve admin status, listing as regular user", slog.String("error", err.Error()))
		all = false
	}

	docs, err := ds.docRepo.AccessibleDocuments(ctx, requester.SubjectID(), ds.clock.Now(), all, filter)
	if err != nil {
		if errors.Is(err, models.ErrInvalidParams) {
			log.Warn("filter rejected by store", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidParams)
		}
		log.Error("failed to list documents", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("documents listed successfully", slog.Int("count", len(docs)))

	return docs, nil
}

// MyDocuments returns what requester owns and what is actively shared with them.
func (ds *DocumentService) MyDocuments(ctx context.Context, requester *models.User) (*models.UserDocuments, error) {
	op := pkg + "MyDocuments"

	log := ds.log.With(slog.String("op", op))

	if !requester.IsAuthenticated() {
		return nil, fmt.Errorf("%s: %w", op, models.ErrForbidden)
	}

	owned, err := ds.docRepo.OwnedDocuments(ctx, requester.ID)
	if err != nil {
		log.Error("failed to load owned documents", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	shared, err := ds.shareRepo.SharedWith(ctx, requester.ID, ds.clock.Now())
	if err != nil {
		log.Error("failed to load shared documents", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	res := &models.UserDocuments{
		Owned:  owned,
		Shared: shared,
		Stats: models.Stats{
			TotalOwned:  len(owned),
			TotalShared: len(shared),
		},
	}
	for _, doc := range owned {
		res.Stats.TotalSize += doc.Size
	}

	return res, nil
}

// PublicDocuments pages through active public documents. Pages start at 1.
func (ds *DocumentService) PublicDocuments(ctx context.Context, page int) ([]*models.Document, error) {
	op := pkg + "PublicDocuments"

	if page < 1 {
		page = 1
	}

	docs, err := ds.docRepo.PublicDocuments(ctx, PublicPageSize, (page-1)*PublicPageSize)
	if err != nil {
		ds.log.Error("failed to list public documents", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return docs, nil
}

func (ds *DocumentService) Permissions(ctx context.Context, requester *models.User, docID string) (models.PermissionSummary, error) {
	op := pkg + "Permissions"

	log := ds.log.With(slog.String("op", op))

	doc, _, err := ds.authorized(ctx, log, requester, docID, models.ActionView)
	if err != nil {
		return models.PermissionSummary{}, fmt.Errorf("%s: %w", op, err)
	}

	return ds.authz.Permissions(ctx, requester, doc), nil
}

func (ds *DocumentService) AccessLogs(ctx context.Context, requester *models.User, docID string, limit int) ([]*models.AccessEvent, error) {
	op := pkg + "AccessLogs"

	log := ds.log.With(slog.String("op", op))

	doc, err := ds.load(ctx, log, docID, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events, err := ds.audit.DocumentLogs(ctx, requester, doc, limit)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) && ds.opts.ConcealForbidden {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

// authorized loads a live document and checks action on it. On denial the
// loaded document is still returned so that callers can audit the attempt.
func (ds *DocumentService) authorized(
	ctx context.Context,
	log *slog.Logger,
	requester *models.User,
	docID string,
	action models.Action,
) (*models.Document, accessservice.Decision, error) {
	doc, err := ds.load(ctx, log, docID, false)
	if err != nil {
		return nil, accessservice.Decision{}, err
	}

	decision := ds.authz.Decide(ctx, requester, doc, action)
	if !decision.Allowed {
		log.Warn("access denied",
			slog.String("doc_id", doc.ID),
			slog.String("user_id", requester.SubjectID()),
			slog.String("action", string(action)),
			slog.String("reason", decision.Reason))
		return doc, decision, ds.denied(ctx, decision, requester, doc, action)
	}

	return doc, decision, nil
}

// denied picks the error for a refused decision. Store faults surface as such.
// With concealment on, a subject who may not even view the document gets not found.
func (ds *DocumentService) denied(
	ctx context.Context,
	decision accessservice.Decision,
	requester *models.User,
	doc *models.Document,
	action models.Action,
) error {
	if decision.Err != nil {
		return models.ErrStoreUnavailable
	}
	if ds.opts.ConcealForbidden {
		if action.ReadOnly() || !ds.authz.Decide(ctx, requester, doc, models.ActionView).Allowed {
			return models.ErrDocumentNotFound
		}
	}
	return models.ErrForbidden
}

func (ds *DocumentService) load(ctx context.Context, log *slog.Logger, docID string, allowDeleted bool) (*models.Document, error) {
	doc, err := ds.docRepo.DocumentByID(ctx, docID)
	if err != nil {
		if errors.Is(err, models.ErrDocumentNotFound) {
			log.Warn("document not found", slog.String("doc_id", docID))
			return nil, models.ErrDocumentNotFound
		}
		log.Error("failed to get document by id", slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	if doc.IsDeleted() && !allowDeleted {
		return nil, models.ErrDocumentNotFound
	}

	return doc, nil
}

func (ds *DocumentService) ownerOrAdmin(ctx context.Context, requester *models.User, doc *models.Document) (bool, error) {
	if doc.IsOwnedBy(requester.SubjectID()) {
		return true, nil
	}
	return ds.authz.IsAdmin(ctx, requester)
}

func (ds *DocumentService) invalidate(ctx context.Context, log *slog.Logger, docID string) {
	if err := ds.cache.InvalidateDocument(ctx, docID); err != nil {
		log.Error("failed to invalidate permission cache", slog.String("doc_id", docID), slog.String("error", err.Error()))
	}
}

func validateUpdate(upd models.DocumentUpdate) error {
	if upd.IsEmpty() {
		return fmt.Errorf("nothing to update: %w", models.ErrInvalidParams)
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return fmt.Errorf("empty title: %w", models.ErrInvalidParams)
	}
	if upd.Status != nil {
		// deletion has its own entry point
		if !upd.Status.IsValid() || *upd.Status == models.StatusDeleted {
			return models.ErrInvalidStatus
		}
	}
	return nil
}

func updatedFields(upd models.DocumentUpdate) []string {
	fields := make([]string, 0, 4)
	if upd.Title != nil {
		fields = append(fields, "title")
	}
	if upd.Description != nil {
		fields = append(fields, "description")
	}
	if upd.IsPublic != nil {
		fields = append(fields, "is_public")
	}
	if upd.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

func digest(content io.ReadSeeker) (string, int64, error) {
	h := sha256.New()

	size, err := io.Copy(h, content)
	if err != nil {
		return "", 0, err
	}

	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// storageKey lays content out as documents/YYYY/MM/DD/{owner}/{id}_{file name}.
func storageKey(doc *models.Document) string {
	return path.Join(
		"documents",
		doc.CreatedAt.Format("2006/01/02"),
		doc.OwnerID,
		doc.ID+"_"+doc.FileName,
	)
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}

func contentTypeOf(fileName string) string {
	if ct := mime.TypeByExtension(path.Ext(fileName)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
