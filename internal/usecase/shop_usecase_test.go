package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/event"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/state"
	"github.com/foodmap-client/internal/usecase"
	"github.com/foodmap-client/internal/usecase/dto"
)

func newShopUseCase(api *MockShopAPI) (*usecase.ShopUseCase, *event.Bus, *testClock) {
	clock := &testClock{t: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	bus := event.NewBus(zap.NewNop())
	uc := usecase.NewShopUseCase(api, bus, zap.NewNop(), 2*time.Minute, nil).WithClock(clock.Now)
	return uc, bus, clock
}

func samplePage() *domain.ShopPage {
	return &domain.ShopPage{
		Records: []domain.Shop{
			domain.Shop{ID: "1", Name: "A", Category: "川菜", Lat: 39.9, Lng: 116.4}.Normalize(),
			domain.Shop{ID: "2", Name: "B", Category: "火锅", Latitude: 30.6, Longitude: 104.1}.Normalize(),
			domain.Shop{ID: "3", Name: "C", Category: "川菜"}.Normalize(),
		},
		Total: 3,
	}
}

func isPlainListBody(params map[string]interface{}) bool {
	return len(params) == 2 && params["pageNum"] == 1 && params["pageSize"] == 100
}

func TestShopUseCase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("plain listing is cached", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.MatchedBy(isPlainListBody)).Return(samplePage(), nil).Once()
		uc, _, clock := newShopUseCase(api)

		first := uc.List(ctx, dto.ListParams{}, false)
		clock.Advance(time.Minute)
		second := uc.List(ctx, dto.ListParams{}, false)

		assert.Equal(t, 3, first.Total)
		assert.Equal(t, first, second)
		api.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("cache expires after ttl", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, _, clock := newShopUseCase(api)

		uc.List(ctx, dto.ListParams{}, false)
		clock.Advance(2 * time.Minute)
		uc.List(ctx, dto.ListParams{}, false)

		api.AssertNumberOfCalls(t, "Search", 2)
	})

	t.Run("filters bypass cache", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.MatchedBy(isPlainListBody)).Return(samplePage(), nil).Once()
		api.On("Search", mock.Anything, mock.MatchedBy(func(p map[string]interface{}) bool {
			return p["categoryId"] == "7" && p["pageNum"] == 1
		})).Return(&domain.ShopPage{Records: []domain.Shop{}, Total: 0}, nil).Twice()
		uc, _, _ := newShopUseCase(api)

		uc.List(ctx, dto.ListParams{}, false)
		filters := dto.ListParams{Filters: map[string]interface{}{"categoryId": "7"}}
		uc.List(ctx, filters, false)
		uc.List(ctx, filters, false)

		// фильтрованный ответ не попадает в кеш
		result := uc.List(ctx, dto.ListParams{}, false)
		assert.Equal(t, 3, result.Total)
		api.AssertNumberOfCalls(t, "Search", 3)
	})

	t.Run("failure resolves to empty page", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(nil, errors.Transport("timeout", nil))
		uc, _, _ := newShopUseCase(api)

		result := uc.List(ctx, dto.ListParams{}, false)
		assert.Empty(t, result.Records)
		assert.NotNil(t, result.Records)
		assert.Equal(t, 0, result.Total)
		assert.Equal(t, "timeout", uc.Status().Error)
	})

	t.Run("records are normalized", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(&domain.ShopPage{
			Records: []domain.Shop{{ID: "1", Latitude: 22.5, Longitude: 114.0}},
			Total:   1,
		}, nil)
		uc, _, _ := newShopUseCase(api)

		result := uc.List(ctx, dto.ListParams{}, false)
		require.Len(t, result.Records, 1)
		s := result.Records[0]
		assert.Equal(t, 22.5, s.Lat)
		assert.Equal(t, 114.0, s.Lng)
		assert.Equal(t, domain.DefaultShopName, s.Name)
		assert.Equal(t, domain.DefaultShopCategory, s.Category)
	})
}

func TestShopUseCase_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("blank keyword short-circuits", func(t *testing.T) {
		api := &MockShopAPI{}
		uc, _, _ := newShopUseCase(api)

		assert.Empty(t, uc.Search(ctx, ""))
		assert.Empty(t, uc.Search(ctx, "   "))
		assert.Empty(t, uc.Keyword())
		api.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("keyword always hits network", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.MatchedBy(func(p map[string]interface{}) bool {
			return p["keywords"] == "面" && p["pageNum"] == 1 && p["pageSize"] == 100
		})).Return(&domain.ShopPage{Records: []domain.Shop{{ID: "9", Name: "面馆"}}, Total: 1}, nil)
		uc, _, _ := newShopUseCase(api)

		first := uc.Search(ctx, "面")
		uc.Search(ctx, "面")

		require.Len(t, first, 1)
		assert.Equal(t, "面馆", first[0].Name)
		api.AssertNumberOfCalls(t, "Search", 2)
	})

	t.Run("display shops follow keyword and filter", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.MatchedBy(isPlainListBody)).Return(samplePage(), nil)
		api.On("Search", mock.Anything, mock.MatchedBy(func(p map[string]interface{}) bool {
			return p["keywords"] == "面"
		})).Return(&domain.ShopPage{Records: []domain.Shop{{ID: "9", Name: "面馆"}}}, nil)
		uc, _, _ := newShopUseCase(api)

		uc.List(ctx, dto.ListParams{}, false)
		assert.Len(t, uc.DisplayShops().Shops, 3)

		uc.SetFilteredCategories([]string{"川菜"})
		display := uc.DisplayShops()
		require.Len(t, display.Shops, 2)
		assert.Equal(t, []string{"川菜"}, display.Categories)

		uc.Search(ctx, "面")
		display = uc.DisplayShops()
		require.Len(t, display.Shops, 1)
		assert.Equal(t, "面馆", display.Shops[0].Name)

		uc.ClearSearch()
		assert.Len(t, uc.DisplayShops().Shops, 2)

		uc.ClearFilters()
		assert.Len(t, uc.FilteredShops(), 3)
	})

	t.Run("search failure clears results", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(nil, errors.Transport("down", nil))
		uc, _, _ := newShopUseCase(api)

		assert.Empty(t, uc.Search(ctx, "面"))
		assert.Empty(t, uc.DisplayShops().Shops)
		assert.Equal(t, "down", uc.Status().Error)
	})
}

func TestShopUseCase_CategoryFilterEvent(t *testing.T) {
	ctx := context.Background()
	api := &MockShopAPI{}
	api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
	uc, bus, _ := newShopUseCase(api)
	defer uc.Close()

	uc.List(ctx, dto.ListParams{}, false)
	bus.Publish(event.CategoryFilterChanged{Names: []string{"火锅"}})

	assert.Equal(t, []string{"火锅"}, uc.FilteredCategories())
	filtered := uc.FilteredShops()
	require.Len(t, filtered, 1)
	assert.Equal(t, domain.ID("2"), filtered[0].ID)

	bus.Publish(event.CategoryFilterChanged{Names: []string{}})
	assert.Len(t, uc.FilteredShops(), 3)
}

func TestShopUseCase_Create(t *testing.T) {
	ctx := context.Background()
	input := dto.ShopInput{Name: "新店", Address: "路1号", CategoryID: "1", Lng: 116.4, Lat: 39.9}

	t.Run("returns server record", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.MatchedBy(func(req domain.ShopUpsert) bool {
			return req.ID == nil && req.Name == "新店" && req.IsDelete == domain.NotDeleted &&
				*req.Longitude == 116.4 && *req.Latitude == 39.9 && req.CategoryID == "1"
		})).Return(&domain.Envelope{Code: "200", Data: json.RawMessage(`{"id":55,"name":"新店","lat":"39.9","lng":"116.4"}`)}, nil)
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, bus, _ := newShopUseCase(api)
		var reasons []string
		event.On(bus, func(e event.ShopDataChanged) { reasons = append(reasons, e.Reason) })

		shop, err := uc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, domain.ID("55"), shop.ID)
		assert.Equal(t, 39.9, shop.Latitude)
		assert.Equal(t, []string{"create"}, reasons)
		api.AssertNumberOfCalls(t, "Search", 1)
	})

	t.Run("falls back to local record", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, _, clock := newShopUseCase(api)

		shop, err := uc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, domain.ID("1714557600000"), shop.ID)
		assert.Equal(t, clock.t.Format(time.RFC3339), shop.CreatedTime)
		assert.Equal(t, 116.4, shop.Longitude)
		assert.Equal(t, "新店", shop.Name)
	})

	t.Run("invalid coordinates rejected", func(t *testing.T) {
		api := &MockShopAPI{}
		uc, _, _ := newShopUseCase(api)

		bad := input
		bad.Lat = 95
		_, err := uc.Create(ctx, bad)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindValidation))
		api.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		uc, _, _ := newShopUseCase(&MockShopAPI{})
		bad := input
		bad.Name = ""
		_, err := uc.Create(ctx, bad)
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("failure propagates", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.Anything).Return(nil, errors.Application("400", "bad"))
		uc, _, _ := newShopUseCase(api)

		_, err := uc.Create(ctx, input)
		require.Error(t, err)
		assert.True(t, errors.IsKind(err, errors.KindApplication))
		api.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})
}

func TestShopUseCase_UpdateDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("update without data returns submitted fields", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.MatchedBy(func(req domain.ShopUpsert) bool {
			return req.ID != nil && *req.ID == "2" && req.IsDelete == domain.NotDeleted
		})).Return(okEnvelope(), nil)
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, _, _ := newShopUseCase(api)

		shop, err := uc.Update(ctx, dto.ShopInput{ID: "2", Name: "B2", CategoryID: "2", Lng: 104, Lat: 30})
		require.NoError(t, err)
		assert.Equal(t, domain.ID("2"), shop.ID)
		assert.Equal(t, "B2", shop.Name)
		assert.NotEmpty(t, shop.UpdatedTime)
	})

	t.Run("update without id", func(t *testing.T) {
		uc, _, _ := newShopUseCase(&MockShopAPI{})
		_, err := uc.Update(ctx, dto.ShopInput{Name: "x", CategoryID: "1"})
		assert.True(t, errors.IsKind(err, errors.KindValidation))
	})

	t.Run("deleting selected shop clears selection", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.MatchedBy(func(req domain.ShopUpsert) bool {
			return req.ID != nil && *req.ID == "1" && req.IsDelete == domain.Deleted
		})).Return(okEnvelope(), nil)
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, _, _ := newShopUseCase(api)

		uc.Select(&domain.Shop{ID: "1", Name: "A"})
		require.NoError(t, uc.Delete(ctx, "1"))
		assert.Nil(t, uc.Selected())
	})

	t.Run("deleting another shop keeps selection", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, _, _ := newShopUseCase(api)

		uc.Select(&domain.Shop{ID: "1", Name: "A"})
		require.NoError(t, uc.Delete(ctx, "2"))
		require.NotNil(t, uc.Selected())
		assert.Equal(t, domain.ID("1"), uc.Selected().ID)
	})

	t.Run("write forces re-list past cache", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Upsert", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, _, _ := newShopUseCase(api)

		uc.List(ctx, dto.ListParams{}, false)
		require.NoError(t, uc.Delete(ctx, "3"))
		api.AssertNumberOfCalls(t, "Search", 2)
	})

	t.Run("list after write returns re-listed records", func(t *testing.T) {
		changed := &domain.ShopPage{
			Records: []domain.Shop{samplePage().Records[0], samplePage().Records[1]},
			Total:   2,
		}
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil).Once()
		api.On("Upsert", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		api.On("Search", mock.Anything, mock.Anything).Return(changed, nil).Once()
		uc, _, clock := newShopUseCase(api)

		before := uc.List(ctx, dto.ListParams{}, false)
		require.Equal(t, 3, before.Total)
		require.NoError(t, uc.Delete(ctx, "3"))

		clock.Advance(time.Minute)
		after := uc.List(ctx, dto.ListParams{}, false)

		api.AssertNumberOfCalls(t, "Search", 2)
		assert.Equal(t, 2, after.Total)
		require.Len(t, after.Records, 2)
		assert.Equal(t, []domain.ID{"1", "2"}, []domain.ID{after.Records[0].ID, after.Records[1].ID})
		assert.Len(t, uc.Shops(), 2)
	})
}

func TestShopUseCase_SelectionFollowsEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id replaces previous selection", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, bus, _ := newShopUseCase(api)
		defer uc.Close()

		uc.List(ctx, dto.ListParams{}, false)
		bus.Publish(event.ShopSelected{ShopID: "1"})
		require.NotNil(t, uc.Selected())

		bus.Publish(event.ShopSelected{ShopID: "99"})
		assert.Nil(t, uc.Selected())
	})

	t.Run("shop from search results is selectable", func(t *testing.T) {
		found := &domain.ShopPage{
			Records: []domain.Shop{{ID: "42", Name: "Search Hit", Lat: 31.2, Lng: 121.5}},
			Total:   1,
		}
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.MatchedBy(isPlainListBody)).Return(samplePage(), nil)
		api.On("Search", mock.Anything, mock.MatchedBy(func(params map[string]interface{}) bool {
			return params["keywords"] == "hit"
		})).Return(found, nil)
		uc, bus, _ := newShopUseCase(api)
		defer uc.Close()

		uc.List(ctx, dto.ListParams{}, false)
		uc.Search(ctx, "hit")
		bus.Publish(event.ShopSelected{ShopID: "42"})

		require.NotNil(t, uc.Selected())
		assert.Equal(t, "Search Hit", uc.Selected().Name)
		assert.Equal(t, 31.2, uc.Selected().Latitude)
	})

	t.Run("deleting selected shop clears coordination state", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		api.On("Upsert", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		uc, bus, _ := newShopUseCase(api)
		sel := state.NewShopSelection(bus)
		defer uc.Close()
		defer sel.Close()

		uc.List(ctx, dto.ListParams{}, false)
		sel.SelectShop("1")
		require.NotNil(t, uc.Selected())

		require.NoError(t, uc.Delete(ctx, "1"))
		assert.Nil(t, uc.Selected())
		assert.True(t, sel.SelectedShopID().IsZero())
		assert.Empty(t, sel.Snapshot().SelectedShopID)
	})

	t.Run("deleting shop selected outside the list clears it too", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		api.On("Upsert", mock.Anything, mock.Anything).Return(okEnvelope(), nil)
		uc, bus, _ := newShopUseCase(api)
		sel := state.NewShopSelection(bus)
		defer uc.Close()
		defer sel.Close()

		sel.SelectShop("99")
		require.NoError(t, uc.Delete(ctx, "99"))
		assert.True(t, sel.SelectedShopID().IsZero())
	})

	t.Run("clearing coordination selection clears use case", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
		uc, bus, _ := newShopUseCase(api)
		sel := state.NewShopSelection(bus)
		defer uc.Close()
		defer sel.Close()

		uc.List(ctx, dto.ListParams{}, false)
		sel.SelectShop("2")
		require.NotNil(t, uc.Selected())

		sel.ClearSelection()
		assert.Nil(t, uc.Selected())
	})
}

func TestShopUseCase_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, map[string]interface{}{"id": "2"}).
			Return(&domain.ShopPage{Records: []domain.Shop{{ID: "2", Name: "B", Lat: 30.6, Lng: 104.1}}, Total: 1}, nil)
		uc, _, _ := newShopUseCase(api)

		shop, err := uc.GetByID(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, domain.ID("2"), shop.ID)
		assert.Equal(t, 30.6, shop.Latitude)
	})

	t.Run("not found", func(t *testing.T) {
		api := &MockShopAPI{}
		api.On("Search", mock.Anything, mock.Anything).Return(&domain.ShopPage{Records: []domain.Shop{}}, nil)
		uc, _, _ := newShopUseCase(api)

		_, err := uc.GetByID(ctx, "404")
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestShopUseCase_SelectionAndReset(t *testing.T) {
	ctx := context.Background()
	api := &MockShopAPI{}
	api.On("Search", mock.Anything, mock.Anything).Return(samplePage(), nil)
	uc, bus, _ := newShopUseCase(api)
	defer uc.Close()

	uc.List(ctx, dto.ListParams{}, false)
	bus.Publish(event.ShopSelected{ShopID: "2"})
	require.NotNil(t, uc.Selected())
	assert.Equal(t, "B", uc.Selected().Name)

	uc.ClearSelection()
	assert.Nil(t, uc.Selected())

	uc.SetFilteredCategories([]string{"川菜"})
	uc.Reset()
	assert.Empty(t, uc.Shops())
	assert.Empty(t, uc.FilteredCategories())
	assert.Equal(t, dto.Status{}, uc.Status())

	uc.List(ctx, dto.ListParams{}, false)
	api.AssertNumberOfCalls(t, "Search", 2)
}
