package repository

import (
	"context"

	"github.com/foodmap-client/internal/domain"
)

// SessionStore определяет хранилище сессии между перезапусками
type SessionStore interface {
	// Load возвращает сохранённую сессию или nil, если её нет
	Load(ctx context.Context) (*domain.Session, error)

	// Save сохраняет сессию
	Save(ctx context.Context, session *domain.Session) error

	// Delete удаляет сохранённую сессию
	Delete(ctx context.Context) error
}
