package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/worker"
)

const (
	maxBatchSize    = 50
	emptyQueueSleep = 500 * time.Millisecond
	errorSleep      = time.Second
)

// TailedEvent - событие, прочитанное из стрима
type TailedEvent struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Profile    string          `json:"profile"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Sink получает прочитанные события по порядку
type Sink func(TailedEvent)

// TailWorker читает stream:foodmap:events начиная с позиции after.
// Если profile не пуст, события других профилей пропускаются.
type TailWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	stream     string
	profile    string
	lastID     string
	sink       Sink
}

// NewTailWorker создает воркер; after="0" читает стрим с начала
func NewTailWorker(streamRepo repository.StreamRepository, profile, after string, sink Sink, logger *zap.Logger) *TailWorker {
	if after == "" {
		after = "0"
	}
	return &TailWorker{
		BaseWorker: worker.NewBaseWorker("event-tail", logger),
		streamRepo: streamRepo,
		stream:     domain.StreamFoodmapEvents,
		profile:    profile,
		lastID:     after,
		sink:       sink,
	}
}

// LastID - идентификатор последнего прочитанного сообщения
func (w *TailWorker) LastID() string {
	return w.lastID
}

// Start читает батчи до остановки
func (w *TailWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting event tail",
		zap.String("stream", w.stream),
		zap.String("after", w.lastID),
		zap.String("profile", w.profile))

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped", zap.String("last_id", w.lastID))
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		processed, err := w.processBatch(ctx)
		pause := time.Duration(0)
		switch {
		case err != nil:
			logger.Error("Failed to read batch", zap.Error(err))
			pause = errorSleep
		case processed == 0:
			pause = emptyQueueSleep
		}
		if pause > 0 {
			w.sleep(ctx, pause)
		}
	}
}

// processBatch читает следующий батч и возвращает число прочитанных сообщений
func (w *TailWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ReadAfter(ctx, w.stream, w.lastID, maxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to read stream: %w", err)
	}

	for _, msg := range messages {
		w.lastID = msg.ID

		var ev TailedEvent
		if err := json.Unmarshal([]byte(msg.Data), &ev); err != nil {
			w.Logger().Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		if w.profile != "" && ev.Profile != w.profile {
			continue
		}
		ev.ID = msg.ID
		w.sink(ev)
	}
	return len(messages), nil
}

// sleep ждёт d или остановки
func (w *TailWorker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-w.StopChan():
	case <-ctx.Done():
	}
}
