package matchmaking

import (
	"context"
	"sync"
	"time"

	"github.com/chess-vn/chessd/internal/domains/entities"
)

// InvitationStore keeps pending invitations by code. Take must be atomic: of two concurrent callers
// at most one receives the invitation.
type InvitationStore interface {
	Add(ctx context.Context, inv entities.Invitation) error
	Get(ctx context.Context, code string) (entities.Invitation, error)
	Take(ctx context.Context, code string) (entities.Invitation, error)
	Delete(ctx context.Context, code string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type memoryStore struct {
	mu          sync.Mutex
	invitations map[string]entities.Invitation
}

func NewMemoryStore() InvitationStore {
	return &memoryStore{invitations: make(map[string]entities.Invitation)}
}

func (s *memoryStore) Add(ctx context.Context, inv entities.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invitations[inv.Code]; exists {
		return errCodeInUse
	}
	s.invitations[inv.Code] = inv
	return nil
}

func (s *memoryStore) Get(ctx context.Context, code string) (entities.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[code]
	if !ok {
		return entities.Invitation{}, ErrInvitationNotFound
	}
	return inv, nil
}

func (s *memoryStore) Take(ctx context.Context, code string) (entities.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[code]
	if !ok {
		return entities.Invitation{}, ErrInvitationNotFound
	}
	delete(s.invitations, code)
	return inv, nil
}

func (s *memoryStore) Delete(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.invitations, code)
	return nil
}

func (s *memoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for code, inv := range s.invitations {
		if inv.Expired(now) {
			delete(s.invitations, code)
			removed++
		}
	}
	return removed, nil
}
