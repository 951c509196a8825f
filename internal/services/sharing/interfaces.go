package sharingservice

import (
	"context"
	"docshare/internal/models"
)

type ShareRepository interface {
	CreateShare(ctx context.Context, share *models.Share) error
	ShareByID(ctx context.Context, id string) (*models.Share, error)
	ShareFor(ctx context.Context, documentID string, recipientID string) (*models.Share, error)
	SharesForDocument(ctx context.Context, documentID string) ([]*models.Share, error)
	RecipientsWithShares(ctx context.Context, documentID string, recipientIDs []string) ([]string, error)
	UpdateShare(ctx context.Context, share *models.Share) error
	DeleteShare(ctx context.Context, id string) error
}

type GrantRepository interface {
	AddGrants(ctx context.Context, grants []*models.Grant) (int, error)
	RemoveGrants(ctx context.Context, documentID string, subjectIDs []string, perms []models.Permission) (int, error)
	GrantsForDocument(ctx context.Context, documentID string) ([]*models.Grant, error)
}

type UserRepository interface {
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type DocumentProvider interface {
	DocumentByID(ctx context.Context, id string) (*models.Document, error)
}

type Authorizer interface {
	CanShare(ctx context.Context, subject *models.User, doc *models.Document) bool
	IsAdmin(ctx context.Context, subject *models.User) (bool, error)
}

type PermissionCache interface {
	InvalidateDocument(ctx context.Context, documentID string) error
	InvalidateSubject(ctx context.Context, subjectID string, documentID string) error
}

type Auditor interface {
	Record(ctx context.Context, event *models.AccessEvent)
}
