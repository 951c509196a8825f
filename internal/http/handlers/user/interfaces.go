package user

import (
	"context"
	"docshare/internal/models"
	authservice "docshare/internal/services/auth"
)

const pkg = "userHandler/"

type UserAdder interface {
	Register(ctx context.Context, reg authservice.Registration) (*models.User, error)
}
