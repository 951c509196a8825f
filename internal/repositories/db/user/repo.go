package userrepo

import (
	"context"
	"database/sql"
	"docshare/internal/entities"
	"docshare/internal/models"
	dbrepo "docshare/internal/repositories/db"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "userRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) AddUser(ctx context.Context, user models.User) error {
	op := pkg + "AddUser"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users(id, login, pass_hash, is_superuser) VALUES($1, $2, $3, $4)`,
		user.ID, user.Login, user.PassHash, user.IsSuperuser)
	if err != nil {
		return fmt.Errorf("%s: %w", op, dbrepo.UniqueViolation(err))
	}

	return nil
}

func (r *repository) AddToGroups(ctx context.Context, userID string, groups []string) error {
	op := pkg + "AddToGroups"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_groups(user_id, group_name)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`,
		userID, pq.Array(groups))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) UserByID(ctx context.Context, id string) (*models.User, error) {
	op := pkg + "UserByID"

	return r.getUser(ctx, op,
		`SELECT
			u.id AS id,
			u.login AS login,
			u.pass_hash AS pass_hash,
			u.is_superuser AS is_superuser
		FROM users u
		WHERE u.id = $1`, id)
}

func (r *repository) UserByLogin(ctx context.Context, login string) (*models.User, error) {
	op := pkg + "UserByLogin"

	return r.getUser(ctx, op,
		`SELECT
			u.id AS id,
			u.login AS login,
			u.pass_hash AS pass_hash,
			u.is_superuser AS is_superuser
		FROM users u
		WHERE u.login = $1`, login)
}

func (r *repository) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	op := pkg + "GroupsOf"

	groups := make([]string, 0)

	err := r.db.SelectContext(ctx, &groups,
		`SELECT g.group_name FROM user_groups g WHERE g.user_id = $1 ORDER BY g.group_name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return groups, nil
}

// ExistingIDs returns the subset of ids that belong to known users. Postgres
// rejects the whole array when one id is not a uuid, so then none are reported.
func (r *repository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	op := pkg + "ExistingIDs"

	found := make([]string, 0, len(ids))

	err := r.db.SelectContext(ctx, &found,
		`SELECT u.id FROM users u WHERE u.id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		if dbrepo.MalformedInput(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return found, nil
}

func (r *repository) getUser(ctx context.Context, op string, query string, arg string) (*models.User, error) {
	rawUser := entities.User{}

	err := r.db.GetContext(ctx, &rawUser, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbrepo.MalformedInput(err) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.User{
		ID:          rawUser.ID,
		Login:       rawUser.Login,
		PassHash:    rawUser.PassHash,
		IsSuperuser: rawUser.IsSuperuser,
	}, nil
}
