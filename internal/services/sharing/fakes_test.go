package sharingservice

import (
	"cmp"
	"context"
	"docshare/internal/models"
	"slices"
	"sync"
	"time"
)

// store is an in-memory stand-in for the postgres repositories, including the
// unique (document, recipient) constraint on shares.
type store struct {
	mu     sync.Mutex
	docs   map[string]*models.Document
	users  map[string]bool
	shares map[string]*models.Share
	grants []*models.Grant
	events []*models.AccessEvent

	createShareErr error
}

func newStore() *store {
	return &store{
		docs:   make(map[string]*models.Document),
		users:  make(map[string]bool),
		shares: make(map[string]*models.Share),
	}
}

func (s *store) addDoc(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

func (s *store) addUsers(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.users[id] = true
	}
}

func (s *store) DocumentByID(_ context.Context, id string) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *store) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for _, id := range ids {
		if s.users[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *store) CreateShare(_ context.Context, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createShareErr != nil {
		return s.createShareErr
	}
	for _, existing := range s.shares {
		if existing.DocumentID == share.DocumentID && existing.RecipientID == share.RecipientID {
			return &models.UniqueConstraintError{Constraint: "shares_document_recipient_key", Err: models.ErrUNIQUEConstraintFailed}
		}
	}
	cp := *share
	s.shares[share.ID] = &cp
	return nil
}

func (s *store) ShareByID(_ context.Context, id string) (*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.shares[id]
	if !ok {
		return nil, models.ErrShareNotFound
	}
	cp := *share
	return &cp, nil
}

func (s *store) ShareFor(_ context.Context, documentID string, recipientID string) (*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, share := range s.shares {
		if share.DocumentID == documentID && share.RecipientID == recipientID {
			cp := *share
			return &cp, nil
		}
	}
	return nil, models.ErrShareNotFound
}

func (s *store) SharesForDocument(_ context.Context, documentID string) ([]*models.Share, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Share, 0)
	for _, share := range s.shares {
		if share.DocumentID == documentID {
			cp := *share
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *models.Share) int { return cmp.Compare(a.RecipientID, b.RecipientID) })
	return out, nil
}

func (s *store) RecipientsWithShares(_ context.Context, documentID string, recipientIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for _, share := range s.shares {
		if share.DocumentID == documentID && slices.Contains(recipientIDs, share.RecipientID) {
			out = append(out, share.RecipientID)
		}
	}
	return out, nil
}

func (s *store) UpdateShare(_ context.Context, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shares[share.ID]; !ok {
		return models.ErrShareNotFound
	}
	cp := *share
	s.shares[share.ID] = &cp
	return nil
}

func (s *store) DeleteShare(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shares[id]; !ok {
		return models.ErrShareNotFound
	}
	delete(s.shares, id)
	return nil
}

func (s *store) shareCount(documentID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, share := range s.shares {
		if share.DocumentID == documentID {
			n++
		}
	}
	return n
}

func (s *store) HasGrant(_ context.Context, subjectID string, perm models.Permission, documentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.SubjectID == subjectID && g.Permission == perm && g.DocumentID == documentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *store) AddGrants(_ context.Context, grants []*models.Grant) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := 0
	for _, g := range grants {
		if slices.ContainsFunc(s.grants, func(e *models.Grant) bool {
			return e.SubjectID == g.SubjectID && e.Permission == g.Permission && e.DocumentID == g.DocumentID
		}) {
			continue
		}
		cp := *g
		s.grants = append(s.grants, &cp)
		created++
	}
	return created, nil
}

func (s *store) RemoveGrants(_ context.Context, documentID string, subjectIDs []string, perms []models.Permission) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.grants)
	s.grants = slices.DeleteFunc(s.grants, func(g *models.Grant) bool {
		return g.DocumentID == documentID && slices.Contains(subjectIDs, g.SubjectID) && slices.Contains(perms, g.Permission)
	})
	return before - len(s.grants), nil
}

func (s *store) GrantsForDocument(_ context.Context, documentID string) ([]*models.Grant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Grant, 0)
	for _, g := range s.grants {
		if g.DocumentID == documentID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *store) GroupsOf(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *store) Record(_ context.Context, event *models.AccessEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *store) lastEvent() *models.AccessEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

func timeAt(t time.Time) *time.Time {
	return &t
}
