package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/event"
	"github.com/foodmap-client/internal/metrics"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/validator"
	"github.com/foodmap-client/internal/repository/cache"
	"github.com/foodmap-client/internal/usecase/dto"
)

// CategoryUseCase - список категорий с кешем и запись через upsert-эндпоинт.
// Запись никогда не меняет список в памяти напрямую: после успеха список
// перечитывается с сервера.
type CategoryUseCase struct {
	api    repository.CategoryAPI
	cache  *cache.Entry[[]domain.Category]
	bus    *event.Bus
	logger *zap.Logger

	mu         sync.RWMutex
	categories []domain.Category
	loading    int
	lastErr    string
}

// NewCategoryUseCase создает CategoryUseCase
func NewCategoryUseCase(
	api repository.CategoryAPI,
	bus *event.Bus,
	logger *zap.Logger,
	cacheTTL time.Duration,
	recorder metrics.Recorder,
) *CategoryUseCase {
	return &CategoryUseCase{
		api:        api,
		cache:      cache.NewEntry[[]domain.Category]("categories", cacheTTL, recorder),
		bus:        bus,
		logger:     logger,
		categories: []domain.Category{},
	}
}

// Cache - кеш списка (для подмены часов в тестах)
func (uc *CategoryUseCase) Cache() *cache.Entry[[]domain.Category] {
	return uc.cache
}

// List возвращает категории из кеша или с сервера.
// Ошибка чтения не пробрасывается: возвращается пустой список, ошибка видна в Status.
func (uc *CategoryUseCase) List(ctx context.Context, force bool) []domain.Category {
	if !force {
		if cached, ok := uc.cache.Get(); ok {
			uc.replace(cached)
			return cloneCategories(cached)
		}
	}

	uc.begin()
	defer uc.end()

	categories, err := uc.api.GetAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to fetch categories", zap.Error(err))
		uc.fail(err)
		return []domain.Category{}
	}

	uc.replace(categories)
	uc.cache.Set(cloneCategories(categories))

	uc.logger.Debug("Categories fetched", zap.Int("count", len(categories)))
	return cloneCategories(categories)
}

// Create создаёт категорию. Имя, уже присутствующее в списке, отклоняется без запроса.
func (uc *CategoryUseCase) Create(ctx context.Context, input dto.CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := validator.Validate(input); err != nil {
		return err
	}
	if uc.ByName(input.Name) != nil {
		return errors.ErrDuplicateCategory.WithDetails(map[string]interface{}{"name": input.Name})
	}

	return uc.write(ctx, "create", domain.CategoryUpsert{
		Name:     input.Name,
		Icon:     input.Icon,
		Color:    input.Color,
		IsDelete: domain.NotDeleted,
	})
}

// Update обновляет существующую категорию
func (uc *CategoryUseCase) Update(ctx context.Context, input dto.CategoryInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.ID.IsZero() {
		return errors.Validation("Category id is required for update")
	}
	if err := validator.Validate(input); err != nil {
		return err
	}

	id := input.ID
	return uc.write(ctx, "update", domain.CategoryUpsert{
		ID:       &id,
		Name:     input.Name,
		Icon:     input.Icon,
		Color:    input.Color,
		IsDelete: domain.NotDeleted,
	})
}

// Delete мягко удаляет категорию
func (uc *CategoryUseCase) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return errors.Validation("Category id is required for delete")
	}

	return uc.write(ctx, "delete", domain.CategoryUpsert{
		ID:       &id,
		IsDelete: domain.Deleted,
	})
}

func (uc *CategoryUseCase) write(ctx context.Context, op string, req domain.CategoryUpsert) error {
	uc.begin()
	defer uc.end()

	if _, err := uc.api.Upsert(ctx, req); err != nil {
		uc.logger.Warn("Category write failed",
			zap.String("op", op),
			zap.Error(err))
		uc.fail(err)
		return err
	}

	uc.cache.Invalidate()
	uc.List(ctx, true)

	uc.logger.Info("Category written", zap.String("op", op))
	uc.bus.Publish(event.CategoryDataChanged{Reason: op})
	return nil
}

// ByName ищет категорию в списке в памяти
func (uc *CategoryUseCase) ByName(name string) *domain.Category {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for i := range uc.categories {
		if uc.categories[i].Name == name {
			c := uc.categories[i]
			return &c
		}
	}
	return nil
}

// ByID ищет категорию в списке в памяти
func (uc *CategoryUseCase) ByID(id domain.ID) *domain.Category {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for i := range uc.categories {
		if uc.categories[i].ID == id {
			c := uc.categories[i]
			return &c
		}
	}
	return nil
}

func (uc *CategoryUseCase) Names() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	names := make([]string, 0, len(uc.categories))
	for _, c := range uc.categories {
		names = append(names, c.Name)
	}
	return names
}

// Categories - текущий список в памяти без обращения к сети
func (uc *CategoryUseCase) Categories() []domain.Category {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return cloneCategories(uc.categories)
}

func (uc *CategoryUseCase) ClearCache() {
	uc.cache.Invalidate()
}

// Reset возвращает use case в начальное состояние
func (uc *CategoryUseCase) Reset() {
	uc.mu.Lock()
	uc.categories = []domain.Category{}
	uc.loading = 0
	uc.lastErr = ""
	uc.mu.Unlock()

	uc.ClearCache()
}

func (uc *CategoryUseCase) Status() dto.Status {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return dto.Status{Loading: uc.loading > 0, Error: uc.lastErr}
}

func (uc *CategoryUseCase) replace(categories []domain.Category) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.categories = cloneCategories(categories)
}

func (uc *CategoryUseCase) begin() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.loading++
	uc.lastErr = ""
}

func (uc *CategoryUseCase) end() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.loading > 0 {
		uc.loading--
	}
}

func (uc *CategoryUseCase) fail(err error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.lastErr = errorMessage(err)
}

func cloneCategories(in []domain.Category) []domain.Category {
	out := make([]domain.Category, len(in))
	copy(out, in)
	return out
}
