// Package notify хранит временные уведомления для пользователя.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
)

const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelSuccess = "success"
	LevelInfo    = "info"

	// maxKept - предел хранимых уведомлений
	maxKept = 50
)

// Notifier - получатель пользовательских уведомлений
type Notifier interface {
	Notify(level, message string)
}

// Center хранит уведомления до истечения TTL
type Center struct {
	mu     sync.Mutex
	items  []domain.Notification
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewCenter создает новый Center
func NewCenter(ttl time.Duration, logger *zap.Logger) *Center {
	return &Center{
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock подменяет часы (для тестов)
func (c *Center) WithClock(now func() time.Time) *Center {
	c.now = now
	return c
}

func (c *Center) Notify(level, message string) {
	now := c.now()

	c.mu.Lock()
	c.items = append(c.pruneLocked(now), domain.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	})
	if len(c.items) > maxKept {
		c.items = c.items[len(c.items)-maxKept:]
	}
	c.mu.Unlock()

	c.logger.Info("User notification",
		zap.String("level", level),
		zap.String("message", message))
}

// Recent возвращает неистёкшие уведомления, старые первыми
func (c *Center) Recent() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = c.pruneLocked(c.now())
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Center) pruneLocked(now time.Time) []domain.Notification {
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}
