package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/infrastructure/amap"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
)

// MapHandler - загрузка SDK карты
type MapHandler struct {
	loader *amap.Loader
	logger *zap.Logger
}

// NewMapHandler - создание нового MapHandler
func NewMapHandler(loader *amap.Loader, logger *zap.Logger) *MapHandler {
	return &MapHandler{
		loader: loader,
		logger: logger,
	}
}

type mapLoadRequest struct {
	Key string `json:"key"`
}

// Load - загрузка SDK; без key используется ключ из runtime-документа
func (h *MapHandler) Load(c *fiber.Ctx) error {
	var req mapLoadRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	var err error
	if req.Key != "" {
		_, err = h.loader.Load(c.UserContext(), req.Key)
	} else {
		_, err = h.loader.LoadConfigured(c.UserContext())
	}
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, h.loader.Status(), nil)
}

// Status - состояние загрузчика
func (h *MapHandler) Status(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.loader.Status(), nil)
}

// Script - загруженный скрипт SDK
func (h *MapHandler) Script(c *fiber.Ctx) error {
	sdk := h.loader.SDK()
	if sdk == nil {
		return utils.SendError(c, errors.ErrNotFound.WithMessage("Map SDK is not loaded"))
	}

	c.Set(fiber.HeaderContentType, "application/javascript; charset=utf-8")
	return c.Send(sdk.Script())
}
