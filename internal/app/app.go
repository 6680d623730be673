// Package app собирает клиент целиком: шина, хранилища, состояния,
// HTTP-клиент бэкенда, use case'ы, загрузчик карты, воркеры и локальный API.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/config"
	httpDelivery "github.com/foodmap-client/internal/delivery/http"
	"github.com/foodmap-client/internal/delivery/http/handler"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/event"
	"github.com/foodmap-client/internal/infrastructure/amap"
	"github.com/foodmap-client/internal/infrastructure/backend"
	"github.com/foodmap-client/internal/metrics"
	"github.com/foodmap-client/internal/notify"
	"github.com/foodmap-client/internal/repository/cache"
	redisRepo "github.com/foodmap-client/internal/repository/redis"
	"github.com/foodmap-client/internal/repository/session"
	"github.com/foodmap-client/internal/state"
	"github.com/foodmap-client/internal/usecase"
	"github.com/foodmap-client/internal/worker"
	"github.com/foodmap-client/internal/worker/events"
)

// App - все компоненты клиента, созданные один раз при старте
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	Registry *prometheus.Registry
	Bus      *event.Bus
	Notices  *notify.Center
	Redis    *cache.Redis

	Session           *state.SessionState
	UI                *state.UIState
	CategorySelection *state.CategorySelection
	ShopSelection     *state.ShopSelection

	Backend    *backend.Client
	Auth       *usecase.AuthUseCase
	Categories *usecase.CategoryUseCase
	Shops      *usecase.ShopUseCase
	MapLoader  *amap.Loader

	Workers *worker.Manager
	Server  *httpDelivery.Server
}

// New создает все компоненты. Если Redis включён, но недоступен, возвращается ошибка.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
	}

	// 1. Metrics
	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(a.Registry)

	// 2. Bus and notifications
	a.Bus = event.NewBus(logger)
	a.Notices = notify.NewCenter(cfg.Notification.TTL, logger)

	// 3. Storage
	var (
		sessionStore repository.SessionStore
		streamRepo   repository.StreamRepository
	)
	if cfg.Redis.Enabled {
		r, err := cache.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = r
		sessionStore = session.NewRedisStore(r.Client(), cfg.Session.Profile, logger)
		streamRepo = redisRepo.NewStreamRepository(r.Client(), logger)
	} else {
		sessionStore = session.NewMemoryStore()
	}

	// 4. State
	a.Session = state.NewSessionState(sessionStore, a.Bus, logger)
	a.UI = state.NewUIState(a.Bus)
	a.CategorySelection = state.NewCategorySelection(a.Bus)
	a.ShopSelection = state.NewShopSelection(a.Bus)

	// 5. Backend client and APIs
	a.Backend = backend.NewClient(
		cfg.Runtime.BackendURL,
		cfg.Backend.RequestTimeout,
		logger,
		backend.WithTokenSource(a.Session),
		backend.WithSessionClearer(a.Session),
		backend.WithNotifier(a.Notices),
		backend.WithMetrics(collector),
	)
	categoryAPI := backend.NewCategoryAPI(a.Backend)
	shopAPI := backend.NewShopAPI(a.Backend)
	userAPI := backend.NewUserAPI(a.Backend)

	// 6. Use cases
	a.Auth = usecase.NewAuthUseCase(userAPI, a.Session, logger)
	a.Categories = usecase.NewCategoryUseCase(categoryAPI, a.Bus, logger, cfg.Cache.CategoryTTL, collector)
	a.Shops = usecase.NewShopUseCase(shopAPI, a.Bus, logger, cfg.Cache.ShopTTL, collector)

	// 7. Map SDK
	a.MapLoader = amap.NewLoader(cfg.Map, cfg.Backend.RequestTimeout, logger, collector)
	a.MapLoader.SetKey(cfg.Runtime.MapKey)

	// 8. Workers
	a.Workers = worker.NewManager(logger)
	if streamRepo != nil {
		a.Workers.Register(events.NewMirrorWorker(a.Bus, streamRepo, cfg.Session.Profile, logger))
	}

	// 9. HTTP
	var health handler.HealthChecker
	if a.Redis != nil {
		health = a.Redis
	}
	a.Server = httpDelivery.NewServer(cfg, logger, a.Registry, httpDelivery.Handlers{
		Auth:     handler.NewAuthHandler(a.Auth, logger),
		Category: handler.NewCategoryHandler(a.Categories, logger),
		Shop:     handler.NewShopHandler(a.Shops, logger),
		UI: handler.NewUIHandler(
			a.UI, a.CategorySelection, a.ShopSelection, a.Shops, a.Categories, logger,
		),
		Map:    handler.NewMapHandler(a.MapLoader, logger),
		System: handler.NewSystemHandler(a.Backend, a.MapLoader, a.Notices, streamRepo, health, cfg.Session.Profile, logger),
	})

	logger.Info("Application initialized",
		zap.String("backend_url", a.Backend.BaseURL()),
		zap.Bool("map_key_set", a.MapLoader.Key() != ""),
		zap.Bool("redis", a.Redis != nil),
		zap.Int("workers", a.Workers.Len()),
	)
	return a, nil
}

// Restore поднимает сохранённую сессию
func (a *App) Restore(ctx context.Context) {
	if err := a.Session.Restore(ctx); err != nil {
		a.logger.Warn("Failed to restore session", zap.Error(err))
	}
}

// ApplyRuntime применяет перечитанный runtime-документ
func (a *App) ApplyRuntime(rc config.RuntimeConfig) {
	a.Backend.SetBaseURL(rc.BackendURL)
	a.MapLoader.SetKey(rc.MapKey)
}

// Start запускает воркеры. HTTP-сервер запускается отдельно через Server.Start.
func (a *App) Start(ctx context.Context) {
	a.Workers.Start(ctx)
}

// Shutdown останавливает компоненты в обратном порядке
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	keep(a.Server.Shutdown(ctx))
	keep(a.Workers.Stop(ctx))

	a.Shops.Close()
	a.ShopSelection.Close()
	a.CategorySelection.Close()
	a.UI.Close()

	if a.Redis != nil {
		keep(a.Redis.Close())
	}

	a.logger.Info("Application stopped")
	return firstErr
}
