package repository

import (
	"context"

	"github.com/foodmap-client/internal/domain"
)

// CategoryAPI - эндпоинты категорий бэкенда
type CategoryAPI interface {
	// GetAll возвращает все неудалённые категории
	GetAll(ctx context.Context) ([]domain.Category, error)

	// Upsert создаёт, обновляет или мягко удаляет категорию
	Upsert(ctx context.Context, req domain.CategoryUpsert) (*domain.Envelope, error)
}

// ShopAPI - эндпоинты заведений бэкенда
type ShopAPI interface {
	// Search возвращает страницу заведений; params - номер и размер страницы плюс фильтры
	Search(ctx context.Context, params map[string]interface{}) (*domain.ShopPage, error)

	// Upsert создаёт, обновляет или мягко удаляет заведение
	Upsert(ctx context.Context, req domain.ShopUpsert) (*domain.Envelope, error)
}

// UserAPI - эндпоинты пользователя бэкенда
type UserAPI interface {
	Login(ctx context.Context, body interface{}) (*domain.Envelope, error)
	Register(ctx context.Context, body interface{}) (*domain.Envelope, error)
	Logout(ctx context.Context) (*domain.Envelope, error)

	// Captcha возвращает PNG-картинку без конверта
	Captcha(ctx context.Context) ([]byte, error)
}
