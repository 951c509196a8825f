package documentservice

import (
	"context"
	"docshare/internal/models"
	accessservice "docshare/internal/services/access"
	"io"
	"time"
)

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	DocumentByID(ctx context.Context, id string) (*models.Document, error)
	DocumentByHash(ctx context.Context, hash string) (*models.Document, error)
	UpdateDocument(ctx context.Context, id string, upd models.DocumentUpdate, now time.Time) (*models.Document, error)
	UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, now time.Time) error
	TransferOwner(ctx context.Context, id string, ownerID string, now time.Time) (int, error)
	Delete(ctx context.Context, id string) error
	IncrementDownloadCount(ctx context.Context, id string, at time.Time) error
	AccessibleDocuments(ctx context.Context, subjectID string, now time.Time, all bool, filter models.DocumentFilter) ([]*models.Document, error)
	OwnedDocuments(ctx context.Context, ownerID string) ([]*models.Document, error)
	PublicDocuments(ctx context.Context, limit int, offset int) ([]*models.Document, error)
}

type ShareRepository interface {
	ShareFor(ctx context.Context, documentID string, recipientID string) (*models.Share, error)
	IncrementAccessCount(ctx context.Context, id string, at time.Time) error
	SharedWith(ctx context.Context, recipientID string, now time.Time) ([]*models.Shared, error)
}

type UserRepository interface {
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type FileStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type Authorizer interface {
	Decide(ctx context.Context, subject *models.User, doc *models.Document, action models.Action) accessservice.Decision
	CanCreate(ctx context.Context, subject *models.User) bool
	IsAdmin(ctx context.Context, subject *models.User) (bool, error)
	Permissions(ctx context.Context, subject *models.User, doc *models.Document) models.PermissionSummary
}

type PermissionCache interface {
	InvalidateDocument(ctx context.Context, documentID string) error
}

type Auditor interface {
	Record(ctx context.Context, event *models.AccessEvent)
	DocumentLogs(ctx context.Context, requester *models.User, doc *models.Document, limit int) ([]*models.AccessEvent, error)
}
