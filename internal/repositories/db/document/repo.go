package documentrepo

import (
	"context"
	"database/sql"
	"docshare/internal/entities"
	"docshare/internal/models"
	dbrepo "docshare/internal/repositories/db"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const pkg = "documentRepo/"

const documentColumns = `
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
	d.modified_at AS modified_at`

// likeEscaper makes user input match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	op := pkg + "CreateDocument"

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, owner_id, title, description, file_name, storage_key, size,
			content_type, hash, is_public, status, created_by, created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		doc.ID, entities.NullString(doc.OwnerID), doc.Title, doc.Description, doc.FileName, doc.StorageKey, doc.Size,
		doc.ContentType, doc.Hash, doc.IsPublic, string(doc.Status), entities.NullString(doc.CreatedBy), doc.CreatedAt, doc.ModifiedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, dbrepo.UniqueViolation(err))
	}

	return nil
}

func (r *repository) DocumentByID(ctx context.Context, id string) (*models.Document, error) {
	op := pkg + "DocumentByID"

	rawDoc := entities.Document{}

	err := r.db.GetContext(ctx, &rawDoc,
		`SELECT`+documentColumns+`
		FROM documents d
		WHERE d.id = $1`,
		id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbrepo.MalformedInput(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rawDoc.ToModel(), nil
}

// DocumentByHash returns the non-deleted document holding the given content hash.
func (r *repository) DocumentByHash(ctx context.Context, hash string) (*models.Document, error) {
	op := pkg + "DocumentByHash"

	rawDoc := entities.Document{}

	err := r.db.GetContext(ctx, &rawDoc,
		`SELECT`+documentColumns+`
		FROM documents d
		WHERE d.hash = $1 AND d.status <> 'deleted'`,
		hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rawDoc.ToModel(), nil
}

func (r *repository) UpdateDocument(ctx context.Context, id string, upd models.DocumentUpdate, now time.Time) (*models.Document, error) {
	op := pkg + "UpdateDocument"

	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}

	rawDoc := entities.Document{}

	err := r.db.GetContext(ctx, &rawDoc,
		`UPDATE documents d SET
			title = COALESCE($2, d.title),
			description = COALESCE($3, d.description),
			is_public = COALESCE($4, d.is_public),
			status = COALESCE($5, d.status),
			modified_at = $6
		WHERE d.id = $1
		RETURNING`+documentColumns,
		id, upd.Title, upd.Description, upd.IsPublic, status, now)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, dbrepo.UniqueViolation(err))
	}

	return rawDoc.ToModel(), nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status models.DocumentStatus, now time.Time) error {
	op := pkg + "UpdateStatus"

	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = $2, modified_at = $3 WHERE id = $1`,
		id, string(status), now)
	if err != nil {
		return fmt.Errorf("%s: %w", op, dbrepo.UniqueViolation(err))
	}

	return affectedOne(op, res)
}

// TransferOwner reassigns the document and, in the same transaction, drops the
// new owner's share on it. It returns how many shares were dropped.
func (r *repository) TransferOwner(ctx context.Context, id string, ownerID string, now time.Time) (int, error) {
	op := pkg + "TransferOwner"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET owner_id = $2, modified_at = $3 WHERE id = $1`,
		id, ownerID, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := affectedOne(op, res); err != nil {
		return 0, err
	}

	res, err = tx.ExecContext(ctx,
		`DELETE FROM shares WHERE document_id = $1 AND recipient_id = $2`,
		id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	dropped, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(dropped), nil
}

// Delete removes the row; grants, shares and access logs go with it by cascade.
func (r *repository) Delete(ctx context.Context, id string) error {
	op := pkg + "Delete"

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affectedOne(op, res)
}

func (r *repository) IncrementDownloadCount(ctx context.Context, id string, at time.Time) error {
	op := pkg + "IncrementDownloadCount"

	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			download_count = download_count + 1,
			last_accessed = GREATEST(COALESCE(last_accessed, $2), $2)
		WHERE id = $1`,
		id, at)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return affectedOne(op, res)
}

// AccessibleDocuments lists non-deleted documents the subject may view: owned, public,
// actively shared or granted view_doc. With all set every document is listed.
// An empty subjectID lists public documents only.
func (r *repository) AccessibleDocuments(ctx context.Context, subjectID string, now time.Time, all bool, filter models.DocumentFilter) ([]*models.Document, error) {
	op := pkg + "AccessibleDocuments"

	var (
		conds = []string{"d.status <> 'deleted'"}
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case all:
	case subjectID == "":
		conds = append(conds, "d.is_public = TRUE")
	default:
		subj := arg(subjectID)
		at := arg(now)
		conds = append(conds, `(
			d.owner_id = `+subj+`
			OR d.is_public = TRUE
			OR EXISTS (SELECT 1 FROM shares s WHERE s.document_id = d.id AND s.recipient_id = `+subj+`
				AND (s.expires_at IS NULL OR s.expires_at > `+at+`))
			OR EXISTS (SELECT 1 FROM grants g WHERE g.document_id = d.id AND g.subject_id = `+subj+`
				AND g.permission = 'view_doc')
		)`)
	}

	switch filter.Key {
	case "title":
		conds = append(conds, "d.title ILIKE "+arg("%"+likeEscaper.Replace(filter.Value)+"%")+` ESCAPE '\'`)
	case "content_type":
		conds = append(conds, "d.content_type = "+arg(filter.Value))
	case "extension":
		ext := likeEscaper.Replace(strings.TrimPrefix(filter.Value, "."))
		conds = append(conds, "d.file_name ILIKE "+arg("%."+ext)+` ESCAPE '\'`)
	case "owner":
		conds = append(conds, "d.owner_id = "+arg(filter.Value))
	case "status":
		conds = append(conds, "d.status = "+arg(filter.Value))
	}

	query := `SELECT` + documentColumns + `
		FROM documents d
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY d.created_at DESC`

	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	docs, err := r.selectDocuments(ctx, query, args...)
	if err != nil {
		if dbrepo.MalformedInput(err) {
			return nil, fmt.Errorf("%s: filter %s=%q: %w", op, filter.Key, filter.Value, models.ErrInvalidParams)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return docs, nil
}

func (r *repository) OwnedDocuments(ctx context.Context, ownerID string) ([]*models.Document, error) {
	op := pkg + "OwnedDocuments"

	docs, err := r.selectDocuments(ctx,
		`SELECT`+documentColumns+`
		FROM documents d
		WHERE d.owner_id = $1 AND d.status <> 'deleted'
		ORDER BY d.created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return docs, nil
}

func (r *repository) PublicDocuments(ctx context.Context, limit int, offset int) ([]*models.Document, error) {
	op := pkg + "PublicDocuments"

	docs, err := r.selectDocuments(ctx,
		`SELECT`+documentColumns+`
		FROM documents d
		WHERE d.is_public = TRUE AND d.status = 'active'
		ORDER BY d.created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return docs, nil
}

func (r *repository) selectDocuments(ctx context.Context, query string, args ...any) ([]*models.Document, error) {
	rawDocs := make([]entities.Document, 0)

	if err := r.db.SelectContext(ctx, &rawDocs, query, args...); err != nil {
		return nil, err
	}

	docs := make([]*models.Document, 0, len(rawDocs))
	for _, rawDoc := range rawDocs {
		docs = append(docs, rawDoc.ToModel())
	}

	return docs, nil
}

func affectedOne(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrDocumentNotFound)
	}
	return nil
}
