// Package events зеркалирует события шины в Redis stream.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/event"
	"github.com/foodmap-client/internal/worker"
)

const (
	queueSize      = 256
	publishTimeout = 2 * time.Second
)

// MirrorWorker копирует каждое событие шины в stream:foodmap:events.
// Публикация идёт из своей горутины, шина не ждёт Redis.
type MirrorWorker struct {
	*worker.BaseWorker
	bus        *event.Bus
	streamRepo repository.StreamRepository
	stream     string
	profile    string
	queue      chan domain.StreamEvent
	now        func() time.Time
}

// NewMirrorWorker создает воркер; подписка на шину происходит в Start
func NewMirrorWorker(bus *event.Bus, streamRepo repository.StreamRepository, profile string, logger *zap.Logger) *MirrorWorker {
	return &MirrorWorker{
		BaseWorker: worker.NewBaseWorker("event-mirror", logger),
		bus:        bus,
		streamRepo: streamRepo,
		stream:     domain.StreamFoodmapEvents,
		profile:    profile,
		queue:      make(chan domain.StreamEvent, queueSize),
		now:        time.Now,
	}
}

// Start подписывается на все события и публикует их до остановки
func (w *MirrorWorker) Start(ctx context.Context) error {
	unsubscribe := w.bus.SubscribeAll(w.enqueue)
	defer unsubscribe()

	w.Logger().Info("Event mirror started", zap.String("stream", w.stream))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.StopChan():
			w.drain()
			return nil
		case ev := <-w.queue:
			w.publish(ctx, ev)
		}
	}
}

func (w *MirrorWorker) enqueue(e event.Event) {
	ev := domain.StreamEvent{
		Kind:       string(e.Kind()),
		Payload:    e,
		Profile:    w.profile,
		OccurredAt: w.now().UTC(),
	}

	select {
	case w.queue <- ev:
	default:
		w.Logger().Warn("Event mirror queue is full, dropping event",
			zap.String("kind", ev.Kind))
	}
}

func (w *MirrorWorker) publish(ctx context.Context, ev domain.StreamEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := w.streamRepo.PublishToStream(pubCtx, w.stream, ev); err != nil {
		w.Logger().Warn("Failed to mirror event",
			zap.String("kind", ev.Kind),
			zap.Error(err))
	}
}

// drain публикует то, что осталось в очереди к моменту остановки
func (w *MirrorWorker) drain() {
	for {
		select {
		case ev := <-w.queue:
			w.publish(context.Background(), ev)
		default:
			return
		}
	}
}
