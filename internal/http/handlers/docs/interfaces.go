package docs

import (
	"context"
	"docshare/internal/models"
	"io"
)

const pkg = "docsHandler/"

type DocumentUploader interface {
	UploadDocument(ctx context.Context, requester *models.User, doc *models.Document, content io.ReadSeeker) (*models.Document, error)
}

type DocumentProvider interface {
	ListDocuments(ctx context.Context, requester *models.User, filter models.DocumentFilter) ([]*models.Document, error)
	DocumentByID(ctx context.Context, requester *models.User, docID string) (*models.Document, error)
	HeadDocument(ctx context.Context, requester *models.User, docID string) (*models.Document, error)
	MyDocuments(ctx context.Context, requester *models.User) (*models.UserDocuments, error)
	PublicDocuments(ctx context.Context, page int) ([]*models.Document, error)
}

type DocumentDownloader interface {
	Download(ctx context.Context, requester *models.User, docID string) (*models.Document, io.ReadCloser, error)
}

type DocumentEditor interface {
	UpdateDocument(ctx context.Context, requester *models.User, docID string, upd models.DocumentUpdate) (*models.Document, error)
	RestoreDocument(ctx context.Context, requester *models.User, docID string) (*models.Document, error)
	TransferOwnership(ctx context.Context, requester *models.User, docID string, newOwnerID string) (*models.Document, error)
}

type DocumentDeleter interface {
	DeleteDocument(ctx context.Context, requester *models.User, docID string) error
	PurgeDocument(ctx context.Context, requester *models.User, docID string) error
}

type AccessInspector interface {
	Permissions(ctx context.Context, requester *models.User, docID string) (models.PermissionSummary, error)
	AccessLogs(ctx context.Context, requester *models.User, docID string, limit int) ([]*models.AccessEvent, error)
}
