package accessservice

import (
	"context"
	"docshare/internal/models"
	"time"
)

type GrantChecker interface {
	HasGrant(ctx context.Context, subjectID string, perm models.Permission, documentID string) (bool, error)
}

type ShareProvider interface {
	ShareFor(ctx context.Context, documentID string, recipientID string) (*models.Share, error)
}

type GroupProvider interface {
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}

type PermissionCache interface {
	Get(ctx context.Context, subjectID string, perm models.Permission, documentID string) (bool, bool, error)
	Put(ctx context.Context, subjectID string, perm models.Permission, documentID string, value bool, ttl time.Duration) error
}
