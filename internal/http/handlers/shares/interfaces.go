package shares

import (
	"context"
	"docshare/internal/models"
	"time"
)

const pkg = "sharesHandler/"

type ShareManager interface {
	CreateShare(ctx context.Context, grantor *models.User, documentID string, recipientID string, level models.PermissionLevel, expiresAt *time.Time) (*models.Share, error)
	BulkCreateShares(ctx context.Context, grantor *models.User, documentID string, recipientIDs []string, level models.PermissionLevel, expiresAt *time.Time) (*models.BulkShareResult, error)
	UpdateShare(ctx context.Context, actor *models.User, shareID string, upd models.ShareUpdate) (*models.Share, error)
	RevokeShare(ctx context.Context, actor *models.User, shareID string) error
	ListShares(ctx context.Context, actor *models.User, documentID string) ([]*models.Share, error)
	CopyPermissions(ctx context.Context, actor *models.User, sourceID string, targetID string, includeShares bool) (*models.CopyResult, error)
}
