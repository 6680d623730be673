// Package cache - кеш ответов в памяти с TTL и подключение к Redis.
package cache

import (
	"sync"
	"time"

	"github.com/foodmap-client/internal/metrics"
)

// Entry - кеш одного значения с меткой времени записи.
// Значение валидно, пока с момента записи прошло меньше TTL.
// Пустой список - тоже валидное значение.
type Entry[T any] struct {
	resource string
	ttl      time.Duration
	now      func() time.Time
	metrics  metrics.Recorder

	mu       sync.RWMutex
	value    T
	storedAt time.Time
	valid    bool
}

// NewEntry создает кеш; resource используется как метка метрик
func NewEntry[T any](resource string, ttl time.Duration, recorder metrics.Recorder) *Entry[T] {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Entry[T]{
		resource: resource,
		ttl:      ttl,
		now:      time.Now,
		metrics:  recorder,
	}
}

// WithClock подменяет часы (для тестов)
func (e *Entry[T]) WithClock(now func() time.Time) *Entry[T] {
	e.now = now
	return e
}

// Get возвращает значение, если оно записано и не истекло
func (e *Entry[T]) Get() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	hit := e.valid && e.now().Sub(e.storedAt) < e.ttl
	e.metrics.RecordCacheLookup(e.resource, hit)
	if !hit {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set заменяет значение и метку времени
func (e *Entry[T]) Set(value T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.value = value
	e.storedAt = e.now()
	e.valid = true
}

func (e *Entry[T]) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	e.value = zero
	e.storedAt = time.Time{}
	e.valid = false
}

// StoredAt - время последней записи (нулевое, если кеш пуст)
func (e *Entry[T]) StoredAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.storedAt
}

func (e *Entry[T]) TTL() time.Duration {
	return e.ttl
}
