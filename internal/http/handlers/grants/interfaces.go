package grants

import (
	"context"
	"docshare/internal/models"
)

const pkg = "grantsHandler/"

type GrantManager interface {
	AssignGrants(ctx context.Context, actor *models.User, documentID string, subjectIDs []string, perms []models.Permission) (int, error)
	RemoveGrants(ctx context.Context, actor *models.User, documentID string, subjectIDs []string, perms []models.Permission) (int, error)
	ApplyTemplate(ctx context.Context, actor *models.User, documentID string, subjectIDs []string, template string) (int, error)
	ListGrants(ctx context.Context, actor *models.User, documentID string) ([]*models.Grant, error)
}
