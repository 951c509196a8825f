package memorycache

import (
	"context"
	"docshare/internal/clock"
	"docshare/internal/models"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type key struct {
	subject    string
	permission models.Permission
	document   string
}

type entry struct {
	value     bool
	expiresAt time.Time
}

// Cache keeps permission verdicts in process. Entries expire by the injected
// clock so expiry is observable in tests; the LRU ttl only bounds memory.
type Cache struct {
	lru   *expirable.LRU[key, entry]
	clock clock.Clock
}

func New(size int, maxTTL time.Duration, clk clock.Clock) *Cache {
	return &Cache{
		lru:   expirable.NewLRU[key, entry](size, nil, maxTTL),
		clock: clk,
	}
}

func (c *Cache) Get(_ context.Context, subjectID string, perm models.Permission, documentID string) (bool, bool, error) {
	k := key{subject: subjectID, permission: perm, document: documentID}

	e, ok := c.lru.Get(k)
	if !ok {
		return false, false, nil
	}

	if !c.clock.Now().Before(e.expiresAt) {
		c.lru.Remove(k)
		return false, false, nil
	}

	return e.value, true, nil
}

func (c *Cache) Put(_ context.Context, subjectID string, perm models.Permission, documentID string, value bool, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	c.lru.Add(key{subject: subjectID, permission: perm, document: documentID}, entry{
		value:     value,
		expiresAt: c.clock.Now().Add(ttl),
	})

	return nil
}

func (c *Cache) InvalidateDocument(_ context.Context, documentID string) error {
	for _, k := range c.lru.Keys() {
		if k.document == documentID {
			c.lru.Remove(k)
		}
	}
	return nil
}

func (c *Cache) InvalidateSubject(_ context.Context, subjectID string, documentID string) error {
	for _, k := range c.lru.Keys() {
		if k.subject == subjectID && k.document == documentID {
			c.lru.Remove(k)
		}
	}
	return nil
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

// Nop never stores anything; every lookup is a miss.
type Nop struct{}

func NewNop() Nop { return Nop{} }

func (Nop) Get(context.Context, string, models.Permission, string) (bool, bool, error) {
	return false, false, nil
}

func (Nop) Put(context.Context, string, models.Permission, string, bool, time.Duration) error {
	return nil
}

func (Nop) InvalidateDocument(context.Context, string) error { return nil }

func (Nop) InvalidateSubject(context.Context, string, string) error { return nil }
