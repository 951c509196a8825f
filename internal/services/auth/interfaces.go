package authservice

import (
	"context"
	"docshare/internal/models"
)

type UserAdder interface {
	AddUser(ctx context.Context, user models.User) error
}

type UserProvider interface {
	UserByLogin(ctx context.Context, login string) (*models.User, error)
	GroupsOf(ctx context.Context, userID string) ([]string, error)
}

type SessionStorer interface {
	SaveSession(ctx context.Context, token string, user *models.User) error
	DeleteSession(ctx context.Context, token string) error
	UserByToken(ctx context.Context, token string) (*models.User, error)
}
