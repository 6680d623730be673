package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/notify"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
)

const (
	defaultEventsCount = 100
	maxEventsCount     = 1000
)

// HealthChecker - зависимость, состояние которой попадает в /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// BackendInfo - текущий адрес бэкенда
type BackendInfo interface {
	BaseURL() string
}

// MapKeyInfo - текущий ключ карты
type MapKeyInfo interface {
	Key() string
}

// SystemHandler - health, конфигурация, уведомления и журнал событий
type SystemHandler struct {
	backend   BackendInfo
	mapKey    MapKeyInfo
	notices   *notify.Center
	events    repository.StreamRepository
	redis     HealthChecker
	profile   string
	startedAt time.Time
	logger    *zap.Logger
}

// NewSystemHandler - создание нового SystemHandler.
// events и redis равны nil, если Redis выключен.
func NewSystemHandler(
	backend BackendInfo,
	mapKey MapKeyInfo,
	notices *notify.Center,
	events repository.StreamRepository,
	redis HealthChecker,
	profile string,
	logger *zap.Logger,
) *SystemHandler {
	return &SystemHandler{
		backend:   backend,
		mapKey:    mapKey,
		notices:   notices,
		events:    events,
		redis:     redis,
		profile:   profile,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// Health - состояние процесса и Redis
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	redisStatus := "disabled"
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.redis.Health(ctx); err != nil {
			h.logger.Warn("Redis health check failed", zap.Error(err))
			status = "degraded"
			redisStatus = "unavailable"
		} else {
			redisStatus = "ok"
		}
	}

	return c.JSON(fiber.Map{
		"status": status,
		"redis":  redisStatus,
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
		"time":   time.Now(),
	})
}

// Config - адрес бэкенда и наличие ключа карты; сам ключ не отдаётся
func (h *SystemHandler) Config(c *fiber.Ctx) error {
	return utils.SendSuccess(c, fiber.Map{
		"backendUrl": h.backend.BaseURL(),
		"mapKeySet":  h.mapKey.Key() != "",
		"profile":    h.profile,
	}, nil)
}

// Notifications - уведомления, которые ещё не истекли
func (h *SystemHandler) Notifications(c *fiber.Ctx) error {
	recent := h.notices.Recent()
	return utils.SendSuccess(c, recent, &utils.Meta{Total: len(recent)})
}

type streamEventResponse struct {
	ID    string          `json:"id"`
	Event json.RawMessage `json:"event"`
}

// Events - события шины, зеркалированные в Redis stream; ?after=<id>&count=<n>
func (h *SystemHandler) Events(c *fiber.Ctx) error {
	if h.events == nil {
		return utils.SendError(c, errors.New(
			errors.KindConfig,
			"EVENTS_DISABLED",
			"Event stream requires Redis",
			fiber.StatusServiceUnavailable,
		))
	}

	count := int64(defaultEventsCount)
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return utils.SendError(c, errors.Validation("count must be a positive integer"))
		}
		if n > maxEventsCount {
			n = maxEventsCount
		}
		count = n
	}

	messages, err := h.events.ReadAfter(c.UserContext(), domain.StreamFoodmapEvents, c.Query("after", "0"), count)
	if err != nil {
		return utils.SendError(c, errors.Transport("Failed to read event stream", err))
	}

	out := make([]streamEventResponse, 0, len(messages))
	for _, m := range messages {
		raw := json.RawMessage(m.Data)
		if !json.Valid(raw) {
			h.logger.Warn("Skipping malformed stream entry", zap.String("id", m.ID))
			continue
		}
		out = append(out, streamEventResponse{ID: m.ID, Event: raw})
	}

	return utils.SendSuccess(c, out, &utils.Meta{Total: len(out)})
}
