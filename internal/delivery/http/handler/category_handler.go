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

// CategoryHandler - обработчик для категорий заведений
type CategoryHandler struct {
	categoryUC *usecase.CategoryUseCase
	logger     *zap.Logger
}

// NewCategoryHandler - создание нового CategoryHandler
func NewCategoryHandler(categoryUC *usecase.CategoryUseCase, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryUC: categoryUC,
		logger:     logger,
	}
}

// List - список категорий; ?refresh=true обходит кеш.
// Ошибка чтения не меняет статус ответа, она попадает в meta.error.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	categories := h.categoryUC.List(c.UserContext(), c.QueryBool("refresh"))
	return utils.SendSuccess(c, categories, h.meta(len(categories)))
}

// Create - создание категории
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var input dto.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	input.ID = ""

	if err := h.categoryUC.Create(c.UserContext(), input); err != nil {
		return utils.SendError(c, err)
	}

	categories := h.categoryUC.Categories()
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse{
		Data: categories,
		Meta: h.meta(len(categories)),
	})
}

// Update - изменение категории по :id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	var input dto.CategoryInput
	if err := c.BodyParser(&input); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}
	input.ID = domain.ID(c.Params("id"))

	if err := h.categoryUC.Update(c.UserContext(), input); err != nil {
		return utils.SendError(c, err)
	}

	categories := h.categoryUC.Categories()
	return utils.SendSuccess(c, categories, h.meta(len(categories)))
}

// Delete - мягкое удаление категории по :id
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.categoryUC.Delete(c.UserContext(), domain.ID(c.Params("id"))); err != nil {
		return utils.SendError(c, err)
	}

	categories := h.categoryUC.Categories()
	return utils.SendSuccess(c, categories, h.meta(len(categories)))
}

func (h *CategoryHandler) meta(total int) *utils.Meta {
	status := h.categoryUC.Status()
	return &utils.Meta{
		Total:   total,
		Loading: status.Loading,
		Error:   status.Error,
	}
}
