package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/validator"
	"github.com/foodmap-client/internal/usecase/dto"
)

// SessionHolder - текущая сессия клиента
type SessionHolder interface {
	Set(ctx context.Context, session *domain.Session) error
	Clear(ctx context.Context, reason string) error
	Current() *domain.Session
}

// AuthUseCase - вход, регистрация, выход и капча
type AuthUseCase struct {
	users   repository.UserAPI
	session SessionHolder
	logger  *zap.Logger
}

// NewAuthUseCase создает AuthUseCase
func NewAuthUseCase(users repository.UserAPI, session SessionHolder, logger *zap.Logger) *AuthUseCase {
	return &AuthUseCase{
		users:   users,
		session: session,
		logger:  logger,
	}
}

// Login выполняет вход и устанавливает сессию из data ответа
func (uc *AuthUseCase) Login(ctx context.Context, req dto.LoginRequest) (*domain.Session, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	env, err := uc.users.Login(ctx, req)
	if err != nil {
		uc.logger.Warn("Login failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	session, err := domain.SessionFromData(env.Data)
	if err != nil {
		uc.logger.Error("Login response has no session", zap.Error(err))
		return nil, errors.Transport("Login response did not contain a session", err)
	}
	if session.Username == "" {
		session.Username = req.Username
	}

	if err := uc.session.Set(ctx, session); err != nil {
		// сессия уже в памяти, не сохранилась только копия в хранилище
		uc.logger.Warn("Session was not persisted", zap.Error(err))
	}

	uc.logger.Info("User logged in", zap.String("username", session.Username))
	return uc.session.Current(), nil
}

// Register регистрирует пользователя; сессия не устанавливается
func (uc *AuthUseCase) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Envelope, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	env, err := uc.users.Register(ctx, req)
	if err != nil {
		uc.logger.Warn("Registration failed", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("User registered", zap.String("username", req.Username))
	return env, nil
}

// Logout сообщает бэкенду о выходе и сбрасывает сессию даже при ошибке запроса
func (uc *AuthUseCase) Logout(ctx context.Context) error {
	_, err := uc.users.Logout(ctx)
	if err != nil {
		uc.logger.Warn("Logout request failed", zap.Error(err))
	}

	if clearErr := uc.session.Clear(ctx, "logout"); clearErr != nil {
		uc.logger.Warn("Failed to clear persisted session", zap.Error(clearErr))
	}
	return err
}

// Captcha возвращает картинку капчи
func (uc *AuthUseCase) Captcha(ctx context.Context) ([]byte, error) {
	img, err := uc.users.Captcha(ctx)
	if err != nil {
		uc.logger.Warn("Failed to fetch captcha", zap.Error(err))
		return nil, err
	}
	if len(img) == 0 {
		return nil, errors.Transport("Captcha image is empty", nil)
	}
	return img, nil
}

// Session - текущая сессия без токена
func (uc *AuthUseCase) Session() dto.SessionResponse {
	return dto.NewSessionResponse(uc.session.Current())
}
