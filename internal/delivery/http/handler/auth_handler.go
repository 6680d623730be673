package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
	"github.com/foodmap-client/internal/usecase"
	"github.com/foodmap-client/internal/usecase/dto"
)

// AuthHandler - вход, регистрация, выход, капча
type AuthHandler struct {
	authUC *usecase.AuthUseCase
	logger *zap.Logger
}

// NewAuthHandler - создание нового AuthHandler
func NewAuthHandler(authUC *usecase.AuthUseCase, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authUC: authUC,
		logger: logger,
	}
}

// Login - вход; в ответе сессия без токена
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	session, err := h.authUC.Login(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.NewSessionResponse(session), nil)
}

// Register - регистрация; сессия не устанавливается
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.Wrap(err))
	}

	env, err := h.authUC.Register(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendCreated(c, fiber.Map{
		"username": req.Username,
		"message":  env.Message,
	})
}

// Logout - выход; локальная сессия сбрасывается в любом случае
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authUC.Logout(c.UserContext()); err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, h.authUC.Session(), nil)
}

// Session - текущая сессия
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.authUC.Session(), nil)
}

// Captcha - картинка капчи
func (h *AuthHandler) Captcha(c *fiber.Ctx) error {
	img, err := h.authUC.Captcha(c.UserContext())
	if err != nil {
		return utils.SendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(img)
}
