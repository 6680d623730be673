package repository

import (
	"context"

	"github.com/foodmap-client/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// PublishToStream публикует сообщение в стрим
	PublishToStream(ctx context.Context, stream string, data interface{}) error

	// ReadAfter читает до count сообщений после afterID ("0" - с начала)
	ReadAfter(ctx context.Context, stream, afterID string, count int64) ([]domain.StreamMessage, error)
}
