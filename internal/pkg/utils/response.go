package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/foodmap-client/internal/pkg/errors"
)

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Error *errors.AppError `json:"error"`
}

type Meta struct {
	Total    int    `json:"total,omitempty"`
	Page     int    `json:"page,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Loading  bool   `json:"loading,omitempty"`
	Error    string `json:"error,omitempty"`
	CachedAt string `json:"cached_at,omitempty"`
}

func SendSuccess(c *fiber.Ctx, data interface{}, meta *Meta) error {
	return c.JSON(SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func SendCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Data: data})
}

func SendError(c *fiber.Ctx, err error) error {
	if appErr, ok := errors.As(err); ok {
		return c.Status(StatusFor(appErr)).JSON(ErrorResponse{
			Error: appErr,
		})
	}

	// Unknown error - return 500
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: errors.ErrInternalServer,
	})
}

// StatusFor - HTTP-статус по классу ошибки, если статус не задан явно
func StatusFor(appErr *errors.AppError) int {
	if appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	switch appErr.Kind {
	case errors.KindValidation:
		return fiber.StatusBadRequest
	case errors.KindConfig:
		return fiber.StatusServiceUnavailable
	case errors.KindApplication:
		if errors.IsSessionInvalidCode(appErr.Code) {
			return fiber.StatusUnauthorized
		}
		return fiber.StatusBadGateway
	default:
		return fiber.StatusBadGateway
	}
}
