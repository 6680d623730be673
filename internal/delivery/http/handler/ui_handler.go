package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
	"github.com/foodmap-client/internal/state"
	"github.com/foodmap-client/internal/usecase"
)

// UIHandler - UI-состояние и выбор категорий/заведения
type UIHandler struct {
	ui         *state.UIState
	categories *state.CategorySelection
	shops      *state.ShopSelection
	shopUC     *usecase.ShopUseCase
	categoryUC *usecase.CategoryUseCase
	logger     *zap.Logger
}

// NewUIHandler - создание нового UIHandler
func NewUIHandler(
	ui *state.UIState,
	categories *state.CategorySelection,
	shops *state.ShopSelection,
	shopUC *usecase.ShopUseCase,
	categoryUC *usecase.CategoryUseCase,
	logger *zap.Logger,
) *UIHandler {
	return &UIHandler{
		ui:         ui,
		categories: categories,
		shops:      shops,
		shopUC:     shopUC,
		categoryUC: categoryUC,
		logger:     logger,
	}
}

type sidebarRequest struct {
	Collapsed *bool `json:"collapsed"`
}

type mapRequest struct {
	Center *[2]float64 `json:"center"`
	Zoom   int         `json:"zoom"`
}

type viewportRequest struct {
	Width int `json:"width"`
}

type formRequest struct {
	Visible bool      `json:"visible"`
	ID      domain.ID `json:"id,omitempty"`
}

type coordinatesRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type shopSelectionRequest struct {
	ID domain.ID `json:"id"`
}

type categorySelectionRequest struct {
	Names    []string `json:"names"`
	All      bool     `json:"all"`
	Expanded *bool    `json:"expanded"`
}

type categoryToggleRequest struct {
	Name string `json:"name"`
}

// Snapshot - UI-состояние вместе с выбором категорий и заведения
func (h *UIHandler) Snapshot(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.snapshot(), nil)
}

// Sidebar - свернуть/развернуть сайдбар; без collapsed переключает
func (h *UIHandler) Sidebar(c *fiber.Ctx) error {
	var req sidebarRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	if req.Collapsed == nil {
		h.ui.ToggleSidebar()
	} else {
		h.ui.SetSidebarCollapsed(*req.Collapsed)
	}
	return utils.SendSuccess(c, h.ui.Snapshot(), nil)
}

// Map - центр и масштаб карты
func (h *UIHandler) Map(c *fiber.Ctx) error {
	var req mapRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if req.Center != nil && !utils.ValidateCoordinates(req.Center[0], req.Center[1]) {
		return utils.SendError(c, errors.Validation("Map center is out of range"))
	}
	if req.Zoom < 0 {
		return utils.SendError(c, errors.Validation("Map zoom must not be negative"))
	}

	h.ui.SetMapState(req.Center, req.Zoom)
	return utils.SendSuccess(c, h.ui.Snapshot().Map, nil)
}

// Viewport - ширина окна клиента, по ней определяется мобильный режим
func (h *UIHandler) Viewport(c *fiber.Ctx) error {
	var req viewportRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if req.Width <= 0 {
		return utils.SendError(c, errors.Validation("Viewport width must be positive"))
	}

	h.ui.DetectMobile(req.Width)
	return utils.SendSuccess(c, h.ui.Snapshot(), nil)
}

// ShopForm - показать/скрыть форму заведения
func (h *UIHandler) ShopForm(c *fiber.Ctx) error {
	var req formRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	if req.Visible {
		h.ui.ShowShopForm(req.ID)
	} else {
		h.ui.HideShopForm()
	}
	return utils.SendSuccess(c, h.ui.Snapshot().ShopForm, nil)
}

// CategoryForm - показать/скрыть форму категории
func (h *UIHandler) CategoryForm(c *fiber.Ctx) error {
	var req formRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	if req.Visible {
		h.ui.ShowCategoryForm(req.ID)
	} else {
		h.ui.HideCategoryForm()
	}
	return utils.SendSuccess(c, h.ui.Snapshot().CategoryForm, nil)
}

// SetTempCoordinates - точка на карте для нового заведения
func (h *UIHandler) SetTempCoordinates(c *fiber.Ctx) error {
	var req coordinatesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if !utils.ValidateCoordinates(req.Lat, req.Lng) {
		return utils.SendError(c, errors.Validation("Coordinates are out of range"))
	}

	h.ui.SetTempCoordinates(domain.Coordinates{Lat: req.Lat, Lng: req.Lng})
	return utils.SendSuccess(c, h.ui.Snapshot().TempCoordinates, nil)
}

func (h *UIHandler) ClearTempCoordinates(c *fiber.Ctx) error {
	h.ui.ClearTempCoordinates()
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectShop - выбор заведения; заведение берётся из загруженного списка
func (h *UIHandler) SelectShop(c *fiber.Ctx) error {
	var req shopSelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if req.ID.IsZero() {
		return utils.SendError(c, errors.Validation("Shop id is required"))
	}

	h.shops.SelectShop(req.ID)
	return utils.SendSuccess(c, fiber.Map{
		"selection": h.shops.Snapshot(),
		"shop":      h.shopUC.Selected(),
	}, nil)
}

func (h *UIHandler) ClearShopSelection(c *fiber.Ctx) error {
	h.shops.ClearSelection()
	return c.SendStatus(fiber.StatusNoContent)
}

// SelectCategories - замена выбора категорий; all=true выбирает все известные
func (h *UIHandler) SelectCategories(c *fiber.Ctx) error {
	var req categorySelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	if req.All {
		h.categories.SelectAll(h.categoryUC.Names())
	} else {
		h.categories.Select(req.Names)
	}
	if req.Expanded != nil {
		h.categories.SetFilterExpanded(*req.Expanded)
	}
	return utils.SendSuccess(c, h.categories.Snapshot(), nil)
}

// ToggleCategory - добавить категорию в выбор или убрать её
func (h *UIHandler) ToggleCategory(c *fiber.Ctx) error {
	var req categoryToggleRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	if req.Name == "" {
		return utils.SendError(c, errors.Validation("Category name is required"))
	}

	h.categories.Toggle(req.Name)
	return utils.SendSuccess(c, h.categories.Snapshot(), nil)
}

func (h *UIHandler) ClearCategories(c *fiber.Ctx) error {
	h.categories.Clear()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UIHandler) snapshot() fiber.Map {
	return fiber.Map{
		"ui":                h.ui.Snapshot(),
		"categorySelection": h.categories.Snapshot(),
		"shopSelection":     h.shops.Snapshot(),
	}
}

// parseOptionalBody разбирает тело, если оно есть
func parseOptionalBody(c *fiber.Ctx, out interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return errors.ErrInvalidRequest.Wrap(err)
	}
	return nil
}
