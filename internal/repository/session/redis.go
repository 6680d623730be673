package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
)

const keyPrefix = "foodmap:session:"

type redisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore хранит сессию профиля JSON-строкой под ключом foodmap:session:<profile>
func NewRedisStore(client *redis.Client, profile string, logger *zap.Logger) repository.SessionStore {
	return &redisStore{
		client: client,
		key:    Key(profile),
		logger: logger,
	}
}

// Key возвращает ключ Redis для профиля
func Key(profile string) string {
	if profile == "" {
		profile = "default"
	}
	return keyPrefix + profile
}

func (s *redisStore) Load(ctx context.Context) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to load session", zap.String("key", s.key), zap.Error(err))
		return nil, fmt.Errorf("session load error: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(val, &session); err != nil {
		s.logger.Warn("Stored session is corrupted, ignoring",
			zap.String("key", s.key),
			zap.Error(err))
		return nil, nil
	}
	if session.Token == "" {
		return nil, nil
	}

	s.logger.Debug("Session loaded", zap.String("key", s.key))
	return &session, nil
}

func (s *redisStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return s.Delete(ctx)
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session marshal error: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		s.logger.Error("Failed to save session", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("session save error: %w", err)
	}

	s.logger.Debug("Session saved", zap.String("key", s.key))
	return nil
}

func (s *redisStore) Delete(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.logger.Error("Failed to delete session", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("session delete error: %w", err)
	}

	s.logger.Debug("Session deleted", zap.String("key", s.key))
	return nil
}
