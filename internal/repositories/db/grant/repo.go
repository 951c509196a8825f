package grantrepo

import (
	"context"
	"database/sql"
	"docshare/internal/entities"
	"docshare/internal/models"
	dbrepo "docshare/internal/repositories/db"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "grantRepo/"

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) HasGrant(ctx context.Context, subjectID string, perm models.Permission, documentID string) (bool, error) {
	op := pkg + "HasGrant"

	var exists bool

	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM grants g
			WHERE g.subject_id = $1 AND g.permission = $2 AND g.document_id = $3
		)`,
		subjectID, string(perm), documentID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// AddGrants inserts grants in one transaction, skipping ones that already exist.
// It returns the number of rows actually created.
func (r *repository) AddGrants(ctx context.Context, grants []*models.Grant) (int, error) {
	op := pkg + "AddGrants"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	created := 0

	for _, g := range grants {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO grants (id, subject_id, permission, document_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (subject_id, permission, document_id) DO NOTHING`,
			g.ID, g.SubjectID, string(g.Permission), g.DocumentID, g.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		created += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *repository) RemoveGrants(ctx context.Context, documentID string, subjectIDs []string, perms []models.Permission) (int, error) {
	op := pkg + "RemoveGrants"

	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM grants
		WHERE document_id = $1 AND subject_id = ANY($2) AND permission = ANY($3)`,
		documentID, pq.Array(subjectIDs), pq.Array(names))
	if err != nil {
		// a subject id that is not a uuid cannot hold a grant
		if dbrepo.MalformedInput(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(n), nil
}

func (r *repository) GrantsForDocument(ctx context.Context, documentID string) ([]*models.Grant, error) {
	op := pkg + "GrantsForDocument"

	rawGrants := make([]entities.Grant, 0)

	err := r.db.SelectContext(ctx, &rawGrants,
		`SELECT
			g.id AS id,
			g.subject_id AS subject_id,
			g.permission AS permission,
			g.document_id AS document_id,
			g.created_at AS created_at
		FROM grants g
		WHERE g.document_id = $1
		ORDER BY g.created_at`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	grants := make([]*models.Grant, 0, len(rawGrants))
	for _, g := range rawGrants {
		grants = append(grants, g.ToModel())
	}

	return grants, nil
}
