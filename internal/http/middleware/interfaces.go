package middleware

import (
	"context"
	"docshare/internal/models"
)

const pkg = "middleware/"

type SessionResolver interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
}
