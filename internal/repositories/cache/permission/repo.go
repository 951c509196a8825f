package cachepermissionrepo

import (
	"context"
	"docshare/internal/models"
	cacherepo "docshare/internal/repositories/cache"
	"fmt"
	"strings"
	"time"
)

const pkg = "cachePermissionRepo/"

const keyPrefix = "perm:"

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

type repository struct {
	cache cacherepo.Cache
}

func New(cache cacherepo.Cache) *repository {
	return &repository{cache: cache}
}

func Key(subjectID string, perm models.Permission, documentID string) string {
	return keyPrefix + subjectID + ":" + string(perm) + ":" + documentID
}

// Get returns the cached verdict; found is false on a miss.
func (r *repository) Get(ctx context.Context, subjectID string, perm models.Permission, documentID string) (bool, bool, error) {
	op := pkg + "Get"

	raw, err := r.cache.Get(ctx, Key(subjectID, perm, documentID)).Result()
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", op, err)
	}

	switch raw {
	case "1":
		return true, true, nil
	case "0":
		return false, true, nil
	}

	return false, false, nil
}

func (r *repository) Put(ctx context.Context, subjectID string, perm models.Permission, documentID string, value bool, ttl time.Duration) error {
	op := pkg + "Put"

	if ttl <= 0 {
		return nil
	}

	raw := "0"
	if value {
		raw = "1"
	}

	if err := r.cache.Set(ctx, Key(subjectID, perm, documentID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InvalidateDocument drops every verdict cached for documentID.
func (r *repository) InvalidateDocument(ctx context.Context, documentID string) error {
	op := pkg + "InvalidateDocument"

	if err := r.deleteMatching(ctx, keyPrefix+"*:*:"+globEscaper.Replace(documentID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InvalidateSubject drops every verdict cached for subjectID on documentID.
func (r *repository) InvalidateSubject(ctx context.Context, subjectID string, documentID string) error {
	op := pkg + "InvalidateSubject"

	pattern := keyPrefix + globEscaper.Replace(subjectID) + ":*:" + globEscaper.Replace(documentID)
	if err := r.deleteMatching(ctx, pattern); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) deleteMatching(ctx context.Context, pattern string) error {
	keys, err := r.cache.Scan(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	return r.cache.Del(ctx, keys...).Err()
}
