package events_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/worker/events"
)

type collected struct {
	mu     sync.Mutex
	events []events.TailedEvent
}

func (c *collected) sink(ev events.TailedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collected) snapshot() []events.TailedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.TailedEvent{}, c.events...)
}

func TestTailWorker_ReadsInOrderAndFiltersProfile(t *testing.T) {
	repo := &MockStreamRepository{}
	repo.On("ReadAfter", mock.Anything, domain.StreamFoodmapEvents, "0", int64(50)).
		Return([]domain.StreamMessage{
			{ID: "1-0", Data: `{"kind":"shop_selected","profile":"default","payload":{"shop_id":"7"}}`},
			{ID: "2-0", Data: `not json`},
			{ID: "3-0", Data: `{"kind":"session_cleared","profile":"other"}`},
			{ID: "4-0", Data: `{"kind":"category_data_changed","profile":"default"}`},
		}, nil).Once()
	repo.On("ReadAfter", mock.Anything, domain.StreamFoodmapEvents, "4-0", int64(50)).
		Return([]domain.StreamMessage{}, nil)

	var got collected
	w := events.NewTailWorker(repo, "default", "", got.sink, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, func() bool { return len(got.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
	require.NoError(t, w.Stop())
	require.NoError(t, <-done)

	evs := got.snapshot()
	assert.Equal(t, "1-0", evs[0].ID)
	assert.Equal(t, "shop_selected", evs[0].Kind)
	assert.JSONEq(t, `{"shop_id":"7"}`, string(evs[0].Payload))
	assert.Equal(t, "4-0", evs[1].ID)
	assert.Equal(t, "4-0", w.LastID())
}

func TestTailWorker_RetriesAfterReadError(t *testing.T) {
	repo := &MockStreamRepository{}
	called := make(chan struct{}, 8)
	repo.On("ReadAfter", mock.Anything, domain.StreamFoodmapEvents, "5-0", int64(50)).
		Run(func(mock.Arguments) {
			select {
			case called <- struct{}{}:
			default:
			}
		}).
		Return(nil, errors.New("redis down"))

	w := events.NewTailWorker(repo, "", "5-0", func(events.TailedEvent) {}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("ReadAfter was not called")
	}
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, "5-0", w.LastID())
}
