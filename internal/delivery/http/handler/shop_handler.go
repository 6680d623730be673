package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
	"github.com/foodmap-client/internal/usecase"
	"github.com/foodmap-client/internal/usecase/dto"
)

// Параметры запроса списка, которые не являются фильтрами
var listControlParams = map[string]struct{}{
	"page":    {},
	"size":    {},
	"refresh": {},
}

// ShopHandler - обработчик для заведений
type ShopHandler struct {
	shopUC *usecase.ShopUseCase
	logger *zap.Logger
}

// NewShopHandler - создание нового ShopHandler
func NewShopHandler(shopUC *usecase.ShopUseCase, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shopUC: shopUC,
		logger: logger,
	}
}

// List - страница заведений.
// Любые параметры кроме page, size и refresh уходят на бэкенд как фильтры.
func (h *ShopHandler) List(c *fiber.Ctx) error {
	params := dto.ListParams{
		PageNum:  c.QueryInt("page"),
		PageSize: c.QueryInt("size"),
	}
	for k, v := range c.Queries() {
		if _, ok := listControlParams[k]; ok || v == "" {
			continue
		}
		if params.Filters == nil {
			params.Filters = make(map[string]interface{})
		}
		params.Filters[k] = v
	}
	params = params.WithDefaults()

	result := h.shopUC.List(c.UserContext(), params, c.QueryBool("refresh"))

	meta := h.meta(result.Total)
	meta.Page = params.PageNum
	meta.Limit = params.PageSize
	return utils.SendSuccess(c, result.Records, meta)
}

// Display - заведения для карты: результаты поиска или список с фильтром по категориям
func (h *ShopHandler) Display(c *fiber.Ctx) error {
	display := h.shopUC.DisplayShops()
	return utils.SendSuccess(c, display, h.meta(len(display.Shops)))
}

// GetByID - одно заведение по :id
func (h *ShopHandler) GetByID(c *fiber.Ctx) error {
	shop, err := h.shopUC.GetByID(c.UserContext(), domain.ID(c.Params("id")))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, shop, nil)
}

// Create - создание заведения
func (h *ShopHandler) Create(c *fiber.Ctx) error {
	var input dto.ShopInput
	if err := c.BodyParser(&input); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	input.ID = ""

	shop, err := h.shopUC.Create(c.UserContext(), input)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, shop)
}

// Update - изменение заведения по :id
func (h *ShopHandler) Update(c *fiber.Ctx) error {
	var input dto.ShopInput
	if err := c.BodyParser(&input); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	input.ID = domain.ID(c.Params("id"))

	shop, err := h.shopUC.Update(c.UserContext(), input)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, shop, nil)
}

// Delete - мягкое удаление заведения по :id
func (h *ShopHandler) Delete(c *fiber.Ctx) error {
	id := domain.ID(c.Params("id"))
	if err := h.shopUC.Delete(c.UserContext(), id); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, fiber.Map{"id": id, "deleted": true}, nil)
}

// Search - поиск по ключевому слову; пустое слово сбрасывает результаты
func (h *ShopHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	results := h.shopUC.Search(c.UserContext(), req.Keyword)
	return utils.SendSuccess(c, fiber.Map{
		"keyword": h.shopUC.Keyword(),
		"records": results,
	}, h.meta(len(results)))
}

// ClearSearch - сброс результатов поиска
func (h *ShopHandler) ClearSearch(c *fiber.Ctx) error {
	h.shopUC.ClearSearch()
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ShopHandler) meta(total int) *utils.Meta {
	status := h.shopUC.Status()
	return &utils.Meta{
		Total:   total,
		Loading: status.Loading,
		Error:   status.Error,
	}
}
