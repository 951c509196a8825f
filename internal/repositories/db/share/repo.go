package sharerepo

import (
	"context"
	"database/sql"
	"docshare/internal/entities"
	"docshare/internal/models"
	dbrepo "docshare/internal/repositories/db"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "shareRepo/"

const shareColumns = `
	s.id AS id,
	s.document_id AS document_id,
	s.recipient_id AS recipient_id,
	s.permission_level AS permission_level,
	s.shared_by AS shared_by,
	s.expires_at AS expires_at,
	s.access_count AS access_count,
	s.last_accessed AS last_accessed,
	s.permission_changed_at AS permission_changed_at,
	s.created_at AS created_at,
	s.modified_at AS modified_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

// CreateShare inserts the share. A second share for the same (document, recipient)
// fails on the shares_document_recipient_key constraint.
func (r *repository) CreateShare(ctx context.Context, share *models.Share) error {
	op := pkg + "CreateShare"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shares (id, document_id, recipient_id, permission_level, shared_by, expires_at,
			permission_changed_at, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		share.ID, share.DocumentID, share.RecipientID, string(share.Level), entities.NullString(share.GrantorID),
		entities.NullTime(share.ExpiresAt), share.PermissionChangedAt, share.CreatedAt, share.ModifiedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, dbrepo.UniqueViolation(err))
	}

	return nil
}

func (r *repository) ShareByID(ctx context.Context, id string) (*models.Share, error) {
	op := pkg + "ShareByID"

	return r.getShare(ctx, op,
		`SELECT`+shareColumns+`
		FROM shares s
		WHERE s.id = $1`,
		id)
}

// ShareFor returns the share for the pair whether or not it has expired.
func (r *repository) ShareFor(ctx context.Context, documentID string, recipientID string) (*models.Share, error) {
	op := pkg + "ShareFor"

	return r.getShare(ctx, op,
		`SELECT`+shareColumns+`
		FROM shares s
		WHERE s.document_id = $1 AND s.recipient_id = $2`,
		documentID, recipientID)
}

func (r *repository) SharesForDocument(ctx context.Context, documentID string) ([]*models.Share, error) {
	op := pkg + "SharesForDocument"

	rawShares := make([]entities.Share, 0)

	err := r.db.SelectContext(ctx, &rawShares,
		`SELECT`+shareColumns+`
		FROM shares s
		WHERE s.document_id = $1
		ORDER BY s.created_at DESC`,
		documentID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shares := make([]*models.Share, 0, len(rawShares))
	for _, s := range rawShares {
		shares = append(shares, s.ToModel())
	}

	return shares, nil
}

// RecipientsWithShares returns which of recipientIDs already hold a share on the document.
func (r *repository) RecipientsWithShares(ctx context.Context, documentID string, recipientIDs []string) ([]string, error) {
	op := pkg + "RecipientsWithShares"

	ids := make([]string, 0)

	err := r.db.SelectContext(ctx, &ids,
		`SELECT s.recipient_id FROM shares s
		WHERE s.document_id = $1 AND s.recipient_id = ANY($2)`,
		documentID, pq.Array(recipientIDs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return ids, nil
}

func (r *repository) UpdateShare(ctx context.Context, share *models.Share) error {
	op := pkg + "UpdateShare"

	res, err := r.db.ExecContext(ctx,
		`UPDATE shares SET
			permission_level = $2,
			expires_at = $3,
			permission_changed_at = $4,
			modified_at = $5
		WHERE id = $1`,
		share.ID, string(share.Level), entities.NullTime(share.ExpiresAt), share.PermissionChangedAt, share.ModifiedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affectedOne(op, res)
}

func (r *repository) DeleteShare(ctx context.Context, id string) error {
	op := pkg + "DeleteShare"

	res, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affectedOne(op, res)
}

func (r *repository) IncrementAccessCount(ctx context.Context, id string, at time.Time) error {
	op := pkg + "IncrementAccessCount"

	res, err := r.db.ExecContext(ctx,
		`UPDATE shares SET
			access_count = access_count + 1,
			last_accessed = GREATEST(COALESCE(last_accessed, $2), $2)
		WHERE id = $1`,
		id, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affectedOne(op, res)
}

// SharedWith lists non-deleted documents carrying an active share for the recipient.
func (r *repository) SharedWith(ctx context.Context, recipientID string, now time.Time) ([]*models.Shared, error) {
	op := pkg + "SharedWith"

	rawRows := make([]entities.SharedDocument, 0)

	err := r.db.SelectContext(ctx, &rawRows,
		`SELECT
			d.id AS id,
			d.owner_id AS owner_id,
			d.title AS title,
			d.description AS description,
			d.file_name AS file_name,
			d.storage_key AS storage_key,
			d.size AS size,
			d.content_type AS content_type,
			d.hash AS hash,
			d.is_public AS is_public,
			d.status AS status,
			d.download_count AS download_count,
			d.last_accessed AS last_accessed,
			d.created_by AS created_by,
			d.created_at AS created_at,
			d.modified_at AS modified_at,
			s.id AS share_id,
			s.permission_level AS share_level,
			s.shared_by AS share_shared_by,
			s.expires_at AS share_expires_at,
			s.access_count AS share_access_count,
			s.created_at AS share_created_at
		FROM shares s
		INNER JOIN documents d ON d.id = s.document_id
		WHERE s.recipient_id = $1
			AND d.status <> 'deleted'
			AND (s.expires_at IS NULL OR s.expires_at > $2)
		ORDER BY s.created_at DESC`,
		recipientID, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shared := make([]*models.Shared, 0, len(rawRows))
	for _, row := range rawRows {
		item := row.ToModel()
		item.Share.RecipientID = recipientID
		shared = append(shared, item)
	}

	return shared, nil
}

func (r *repository) getShare(ctx context.Context, op string, query string, args ...any) (*models.Share, error) {
	rawShare := entities.Share{}

	if err := r.db.GetContext(ctx, &rawShare, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbrepo.MalformedInput(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrShareNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rawShare.ToModel(), nil
}

func affectedOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrShareNotFound)
	}
	return nil
}
