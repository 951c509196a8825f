package userservice

import (
	"context"
	"docshare/internal/models"
)

type UserAdder interface {
	AddUser(ctx context.Context, user models.User) error
	AddToGroups(ctx context.Context, userID string, groups []string) error
}

type UserProvider interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}
