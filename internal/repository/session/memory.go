// Package session - хранилища сессии: в памяти процесса и в Redis.
package session

import (
	"context"
	"sync"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
)

type memoryStore struct {
	mu      sync.Mutex
	session *domain.Session
}

// NewMemoryStore - хранилище без Redis, живёт до перезапуска процесса
func NewMemoryStore() repository.SessionStore {
	return &memoryStore{}
}

func (s *memoryStore) Load(ctx context.Context) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	cp := *s.session
	return &cp, nil
}

func (s *memoryStore) Save(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session == nil {
		s.session = nil
		return nil
	}
	cp := *session
	s.session = &cp
	return nil
}

func (s *memoryStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
