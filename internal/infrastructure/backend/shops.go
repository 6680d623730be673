package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/pkg/errors"
)

const (
	pathShopSearch = "/poi-data/search"
	pathShopUpsert = "/poi-data/insert-or-update-or-delete"
)

type shopAPI struct {
	client *Client
}

// NewShopAPI - обёртка над эндпоинтами заведений (poi-data)
func NewShopAPI(client *Client) repository.ShopAPI {
	return &shopAPI{client: client}
}

// Search отправляет фильтры телом запроса. data бывает {records,total} или массивом.
func (a *shopAPI) Search(ctx context.Context, filters map[string]interface{}) (*domain.ShopPage, error) {
	if filters == nil {
		filters = map[string]interface{}{}
	}
	resp, err := a.client.Send(ctx, Request{
		Method:      http.MethodPost,
		Path:        pathShopSearch,
		Body:        filters,
		RequireAuth: true,
	})
	if err != nil {
		return nil, err
	}

	page, err := decodeShopPage(resp.Data)
	if err != nil {
		return nil, errors.Transport("Failed to decode shop list", err)
	}
	return page, nil
}

func (a *shopAPI) Upsert(ctx context.Context, input domain.ShopUpsert) (*domain.Envelope, error) {
	return a.client.Do(ctx, Request{
		Method:      http.MethodPost,
		Path:        pathShopUpsert,
		Body:        input,
		RequireAuth: true,
	}, nil)
}

func decodeShopPage(data json.RawMessage) (*domain.ShopPage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &domain.ShopPage{Records: []domain.Shop{}}, nil
	}

	if trimmed[0] == '[' {
		var shops []domain.Shop
		if err := json.Unmarshal(trimmed, &shops); err != nil {
			return nil, err
		}
		return &domain.ShopPage{Records: shops, Total: len(shops)}, nil
	}

	var page domain.ShopPage
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Records == nil {
		page.Records = []domain.Shop{}
	}
	return &page, nil
}
