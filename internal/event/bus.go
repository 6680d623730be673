package event

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Handler - обработчик события
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus - синхронная шина: Publish вызывает обработчики в порядке подписки
// и возвращается после последнего из них.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Kind][]subscription
	all    []subscription
	nextID uint64
	logger *zap.Logger
}

// NewBus создает новую шину
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[Kind][]subscription),
		logger: logger,
	}
}

// Subscribe подписывает обработчик на вид события; возвращает отписку
func (b *Bus) Subscribe(kind Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[kind] = append(b.subs[kind], subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs[kind] = removeSub(b.subs[kind], id)
	}
}

// SubscribeAll подписывает обработчик на все события
func (b *Bus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = removeSub(b.all, id)
	}
}

// On - типизированная подписка: обработчик получает конкретный тип события
func On[E Event](b *Bus, h func(E)) func() {
	var zero E
	return b.Subscribe(zero.Kind(), func(e Event) {
		if typed, ok := e.(E); ok {
			h(typed)
		}
	})
}

// Publish доставляет событие подписчикам.
// Паника обработчика логируется и не мешает остальным.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Kind()])+len(b.all))
	for _, s := range b.subs[e.Kind()] {
		handlers = append(handlers, s.handler)
	}
	for _, s := range b.all {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	b.logger.Debug("Event published",
		zap.String("kind", string(e.Kind())),
		zap.Int("subscribers", len(handlers)))

	for _, h := range handlers {
		b.dispatch(e, h)
	}
}

func (b *Bus) dispatch(e Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				zap.String("kind", string(e.Kind())),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	h(e)
}

func removeSub(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
