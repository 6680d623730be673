package backend

import (
	"context"
	"net/http"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
)

const (
	pathCategoryGetAll = "/category/get-all"
	pathCategoryUpsert = "/category/insert-or-update-or-delete"
)

type categoryAPI struct {
	client *Client
}

// NewCategoryAPI - обёртка над эндпоинтами категорий
func NewCategoryAPI(client *Client) repository.CategoryAPI {
	return &categoryAPI{client: client}
}

func (a *categoryAPI) GetAll(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	_, err := a.client.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        pathCategoryGetAll,
		Body:        map[string]interface{}{},
		RequireAuth: true,
	}, &categories)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func (a *categoryAPI) Upsert(ctx context.Context, input domain.CategoryUpsert) (*domain.Envelope, error) {
	return a.client.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        pathCategoryUpsert,
		Body:        input,
		RequireAuth: true,
	}, nil)
}
