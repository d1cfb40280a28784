package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mayasama5/upe-program-sub001/internal/auth"
)

// MemoryStore is an in-process UserStore with the same uniqueness
// semantics as the postgres adapter. Used in tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*User // keyed by id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

func clone(u *User) *User {
	out := *u
	out.Skills = append([]string(nil), u.Skills...)
	return &out
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; ok {
		return ErrEmailTaken
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrEmailTaken
		}
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Skills == nil {
		u.Skills = []string{}
	}
	s.users[u.ID] = clone(u)
	return nil
}

func (s *MemoryStore) UpdateRole(ctx context.Context, id string, role auth.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}
