// Package state - состояние клиента без сети: сессия, UI и координация
// выбора между модулями. Все изменения атомарны относительно чтений.
package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/event"
)

const persistTimeout = 3 * time.Second

// SessionState хранит не более одной текущей сессии и сохраняет её при каждом изменении.
// Это единственный источник bearer-токена для HTTP-клиента.
type SessionState struct {
	mu      sync.RWMutex
	session *domain.Session

	store  repository.SessionStore
	bus    *event.Bus
	logger *zap.Logger
}

// NewSessionState создает состояние сессии
func NewSessionState(store repository.SessionStore, bus *event.Bus, logger *zap.Logger) *SessionState {
	return &SessionState{
		store:  store,
		bus:    bus,
		logger: logger,
	}
}

// Restore поднимает сохранённую сессию при старте
func (s *SessionState) Restore(ctx context.Context) error {
	session, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to restore session", zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if session != nil {
		s.logger.Info("Session restored", zap.String("username", session.Username))
	}
	return nil
}

// Set заменяет текущую сессию и сохраняет её.
// Ошибка сохранения возвращается, но сессия в памяти уже установлена.
func (s *SessionState) Set(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return s.Clear(ctx, "empty session")
	}
	cp := *session

	s.mu.Lock()
	s.session = &cp
	s.mu.Unlock()

	if err := s.store.Save(ctx, &cp); err != nil {
		s.logger.Error("Failed to persist session", zap.Error(err))
		return err
	}
	return nil
}

// Clear сбрасывает сессию, удаляет сохранённую и публикует SessionCleared
func (s *SessionState) Clear(ctx context.Context, reason string) error {
	s.mu.Lock()
	had := s.session != nil
	s.session = nil
	s.mu.Unlock()

	err := s.store.Delete(ctx)
	if err != nil {
		s.logger.Error("Failed to delete persisted session", zap.Error(err))
	}

	s.logger.Info("Session cleared",
		zap.String("reason", reason),
		zap.Bool("had_session", had))
	s.bus.Publish(event.SessionCleared{Reason: reason})
	return err
}

// ClearSession вызывается HTTP-клиентом при коде недействительной сессии
func (s *SessionState) ClearSession(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	_ = s.Clear(ctx, reason)
}

// Current возвращает копию текущей сессии или nil
func (s *SessionState) Current() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

func (s *SessionState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *SessionState) IsAuthenticated() bool {
	return s.Token() != ""
}
