package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/config"
	"github.com/foodmap-client/internal/delivery/http/handler"
	"github.com/foodmap-client/internal/delivery/http/middleware"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
)

// Handlers - все обработчики локального API
type Handlers struct {
	Auth     *handler.AuthHandler
	Category *handler.CategoryHandler
	Shop     *handler.ShopHandler
	UI       *handler.UIHandler
	Map      *handler.MapHandler
	System   *handler.SystemHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	gatherer prometheus.Gatherer
	h        Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, gatherer prometheus.Gatherer, h Handlers) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Food Map Client",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		gatherer: gatherer,
		h:        h,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - fiber-приложение, используется в тестах через app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	if s.gatherer != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := s.app.Group("/api/v1")

	// System
	api.Get("/health", s.h.System.Health)
	api.Get("/config", s.h.System.Config)
	api.Get("/notifications", s.h.System.Notifications)
	api.Get("/events", s.h.System.Events)

	// Auth
	auth := api.Group("/auth")
	auth.Post("/login", s.h.Auth.Login)
	auth.Post("/register", s.h.Auth.Register)
	auth.Post("/logout", s.h.Auth.Logout)
	auth.Get("/session", s.h.Auth.Session)
	auth.Get("/captcha", s.h.Auth.Captcha)

	// Categories
	categories := api.Group("/categories")
	categories.Get("/", s.h.Category.List)
	categories.Post("/", s.h.Category.Create)
	categories.Put("/:id", s.h.Category.Update)
	categories.Delete("/:id", s.h.Category.Delete)

	// Shops; статические пути раньше /:id
	shops := api.Group("/shops")
	shops.Get("/", s.h.Shop.List)
	shops.Get("/display", s.h.Shop.Display)
	shops.Post("/search", s.h.Shop.Search)
	shops.Delete("/search", s.h.Shop.ClearSearch)
	shops.Get("/:id", s.h.Shop.GetByID)
	shops.Post("/", s.h.Shop.Create)
	shops.Put("/:id", s.h.Shop.Update)
	shops.Delete("/:id", s.h.Shop.Delete)

	// UI state
	ui := api.Group("/ui")
	ui.Get("/", s.h.UI.Snapshot)
	ui.Post("/sidebar", s.h.UI.Sidebar)
	ui.Post("/map", s.h.UI.Map)
	ui.Post("/viewport", s.h.UI.Viewport)
	ui.Post("/forms/shop", s.h.UI.ShopForm)
	ui.Post("/forms/category", s.h.UI.CategoryForm)
	ui.Post("/temp-coordinates", s.h.UI.SetTempCoordinates)
	ui.Delete("/temp-coordinates", s.h.UI.ClearTempCoordinates)

	// Selection
	selection := api.Group("/selection")
	selection.Post("/shop", s.h.UI.SelectShop)
	selection.Delete("/shop", s.h.UI.ClearShopSelection)
	selection.Post("/categories", s.h.UI.SelectCategories)
	selection.Post("/categories/toggle", s.h.UI.ToggleCategory)
	selection.Delete("/categories", s.h.UI.ClearCategories)

	// Map SDK
	mapGroup := api.Group("/map")
	mapGroup.Post("/load", s.h.Map.Load)
	mapGroup.Get("/status", s.h.Map.Status)
	mapGroup.Get("/sdk.js", s.h.Map.Script)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки, не обработанные в хендлерах (404, паники, таймауты)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			if e.Code >= fiber.StatusInternalServerError {
				logger.Error("HTTP Error", zap.String("path", c.Path()), zap.Int("status", e.Code), zap.Error(err))
			}
			return c.Status(e.Code).JSON(utils.ErrorResponse{
				Error: errors.New(errors.KindValidation, "HTTP_ERROR", e.Message, e.Code),
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
