package userservice

import (
	"context"
	"docshare/internal/models"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

const pkg = "userService/"

const loginConstraint = "users_login_key"

type UserService struct {
	log    *slog.Logger
	writer UserAdder
	reader UserProvider
}

func New(log *slog.Logger, writer UserAdder, reader UserProvider) *UserService {
	return &UserService{
		log:    log,
		writer: writer,
		reader: reader,
	}
}

// AddUser stores the user and its group memberships. Group names are trimmed
// and deduplicated before they are written.
func (u *UserService) AddUser(ctx context.Context, user models.User) error {
	op := pkg + "AddUser"

	log := u.log.With(slog.String("op", op), slog.String("login", user.Login))

	if err := u.writer.AddUser(ctx, user); err != nil {
		var uce *models.UniqueConstraintError
		if errors.As(err, &uce) && (uce.Constraint == loginConstraint || uce.Constraint == "") {
			log.Warn("login taken", slog.String("constraint", uce.Constraint))
			return fmt.Errorf("%s: %w", op, models.ErrUserExists)
		}
		log.Error("insert user", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	groups := normalizeGroups(user.Groups)
	if len(groups) == 0 {
		log.Debug("user added", slog.String("user_id", user.ID))
		return nil
	}

	if err := u.writer.AddToGroups(ctx, user.ID, groups); err != nil {
		log.Error("insert memberships", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("user added", slog.String("user_id", user.ID), slog.Int("groups", len(groups)))

	return nil
}

func (u *UserService) UserByID(ctx context.Context, id string) (*models.User, error) {
	return lookup(ctx, u.log, pkg+"UserByID", id, u.reader.UserByID)
}

func (u *UserService) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	return lookup(ctx, u.log, pkg+"UserByLogin", login, u.reader.UserByLogin)
}

// GroupsOf returns the group names userID belongs to. Unknown users have none.
func (u *UserService) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	op := pkg + "GroupsOf"

	groups, err := u.reader.GroupsOf(ctx, userID)
	if err != nil {
		u.log.Error("load groups", slog.String("op", op), slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrStoreUnavailable)
	}

	return groups, nil
}

// lookup keeps ErrUserNotFound visible to callers and hides every other
// store failure behind ErrInternal.
func lookup(
	ctx context.Context,
	log *slog.Logger,
	op string,
	key string,
	fetch func(context.Context, string) (*models.User, error),
) (*models.User, error) {
	user, err := fetch(ctx, key)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, models.ErrUserNotFound):
		log.Debug("user not found", slog.String("op", op), slog.String("key", key))
		return nil, models.ErrUserNotFound
	default:
		log.Error("load user", slog.String("op", op), slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}
}

func normalizeGroups(groups []string) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
