package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/event"
	"github.com/foodmap-client/internal/metrics"
	"github.com/foodmap-client/internal/pkg/errors"
	"github.com/foodmap-client/internal/pkg/utils"
	"github.com/foodmap-client/internal/pkg/validator"
	"github.com/foodmap-client/internal/repository/cache"
	"github.com/foodmap-client/internal/usecase/dto"
)

// ShopUseCase - список заведений, поиск, выбор и фильтр по категориям.
// Каждая запись, попадающая в состояние, нормализована (lat/lng и latitude/longitude).
type ShopUseCase struct {
	api    repository.ShopAPI
	cache  *cache.Entry[domain.ShopPage]
	bus    *event.Bus
	logger *zap.Logger
	now    func() time.Time

	mu            sync.RWMutex
	shops         []domain.Shop
	selectedID    domain.ID
	selected      *domain.Shop
	filtered      []string
	keyword       string
	searchResults []domain.Shop
	loading       int
	lastErr       string

	unsubscribes []func()
}

// NewShopUseCase создает ShopUseCase и подписывает его на фильтр категорий и выбор заведения
func NewShopUseCase(
	api repository.ShopAPI,
	bus *event.Bus,
	logger *zap.Logger,
	cacheTTL time.Duration,
	recorder metrics.Recorder,
) *ShopUseCase {
	uc := &ShopUseCase{
		api:           api,
		cache:         cache.NewEntry[domain.ShopPage]("shops", cacheTTL, recorder),
		bus:           bus,
		logger:        logger,
		now:           time.Now,
		shops:         []domain.Shop{},
		filtered:      []string{},
		searchResults: []domain.Shop{},
	}
	uc.unsubscribes = []func(){
		event.On(bus, func(e event.CategoryFilterChanged) { uc.SetFilteredCategories(e.Names) }),
		event.On(bus, uc.onShopSelected),
	}
	return uc
}

// Close отписывает use case от шины
func (uc *ShopUseCase) Close() {
	for _, unsubscribe := range uc.unsubscribes {
		unsubscribe()
	}
}

// WithClock подменяет часы для id и времени создания локальных записей
func (uc *ShopUseCase) WithClock(now func() time.Time) *ShopUseCase {
	uc.now = now
	uc.cache.WithClock(now)
	return uc
}

// List возвращает страницу заведений. Кеш используется только без фильтров.
// Ошибка чтения не пробрасывается: возвращается пустая страница, ошибка видна в Status.
func (uc *ShopUseCase) List(ctx context.Context, params dto.ListParams, force bool) dto.ShopListResponse {
	params = params.WithDefaults()
	plain := len(params.Filters) == 0

	if !force && plain {
		if cached, ok := uc.cache.Get(); ok {
			uc.replaceShops(cached.Records)
			return dto.ShopListResponse{Records: cloneShops(cached.Records), Total: cached.Total}
		}
	}

	uc.begin()
	defer uc.end()

	page, err := uc.api.Search(ctx, params.Body())
	if err != nil {
		uc.logger.Error("Failed to fetch shops",
			zap.Int("page", params.PageNum),
			zap.Int("filters", len(params.Filters)),
			zap.Error(err))
		uc.fail(err)
		return dto.ShopListResponse{Records: []domain.Shop{}, Total: 0}
	}

	records := domain.NormalizeShops(page.Records)
	uc.replaceShops(records)

	if plain {
		uc.cache.Set(domain.ShopPage{Records: cloneShops(records), Total: page.Total})
	}

	return dto.ShopListResponse{Records: cloneShops(records), Total: page.Total}
}

// Search ищет по ключевому слову, всегда через сеть.
// Пустое слово очищает результаты без запроса.
func (uc *ShopUseCase) Search(ctx context.Context, keyword string) []domain.Shop {
	if strings.TrimSpace(keyword) == "" {
		uc.ClearSearch()
		return []domain.Shop{}
	}

	uc.mu.Lock()
	uc.keyword = keyword
	uc.mu.Unlock()

	page, err := uc.api.Search(ctx, map[string]interface{}{
		"pageNum":  dto.DefaultPageNum,
		"pageSize": dto.DefaultPageSize,
		"keywords": keyword,
	})
	if err != nil {
		uc.logger.Warn("Shop search failed",
			zap.String("keyword", keyword),
			zap.Error(err))
		uc.fail(err)
		uc.setSearchResults(nil)
		return []domain.Shop{}
	}

	results := domain.NormalizeShops(page.Records)
	uc.setSearchResults(results)
	return cloneShops(results)
}

func (uc *ShopUseCase) ClearSearch() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.keyword = ""
	uc.searchResults = []domain.Shop{}
}

// Create создаёт заведение и возвращает запись сервера или локальную запись,
// если сервер не вернул data.
func (uc *ShopUseCase) Create(ctx context.Context, input dto.ShopInput) (*domain.Shop, error) {
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	env, err := uc.write(ctx, "create", upsertFromInput(input, nil))
	if err != nil {
		return nil, err
	}

	if shop, ok := shopFromData(env); ok {
		return shop, nil
	}

	now := uc.now()
	shop := shopFromInput(input)
	shop.ID = domain.ID(strconv.FormatInt(now.UnixMilli(), 10))
	shop.CreatedTime = now.UTC().Format(time.RFC3339)
	shop = shop.Normalize()
	return &shop, nil
}

// Update обновляет заведение; без data от сервера возвращает отправленные поля
func (uc *ShopUseCase) Update(ctx context.Context, input dto.ShopInput) (*domain.Shop, error) {
	if input.ID.IsZero() {
		return nil, errors.Validation("Shop id is required for update")
	}
	if err := uc.validate(input); err != nil {
		return nil, err
	}

	id := input.ID
	env, err := uc.write(ctx, "update", upsertFromInput(input, &id))
	if err != nil {
		return nil, err
	}

	if shop, ok := shopFromData(env); ok {
		return shop, nil
	}

	shop := shopFromInput(input)
	shop.UpdatedTime = uc.now().UTC().Format(time.RFC3339)
	shop = shop.Normalize()
	return &shop, nil
}

// Delete мягко удаляет заведение; если оно было выбрано, выбор снимается
func (uc *ShopUseCase) Delete(ctx context.Context, id domain.ID) error {
	if id.IsZero() {
		return errors.Validation("Shop id is required for delete")
	}

	if _, err := uc.write(ctx, "delete", domain.ShopUpsert{ID: &id, IsDelete: domain.Deleted}); err != nil {
		return err
	}

	uc.mu.Lock()
	wasSelected := uc.selectedID == id || (uc.selected != nil && uc.selected.ID == id)
	if wasSelected {
		uc.selectedID = ""
		uc.selected = nil
	}
	uc.mu.Unlock()

	if wasSelected {
		uc.bus.Publish(event.ShopSelected{})
	}
	return nil
}

func (uc *ShopUseCase) write(ctx context.Context, op string, req domain.ShopUpsert) (*domain.Envelope, error) {
	uc.begin()
	defer uc.end()

	env, err := uc.api.Upsert(ctx, req)
	if err != nil {
		uc.logger.Warn("Shop write failed",
			zap.String("op", op),
			zap.Error(err))
		uc.fail(err)
		return nil, err
	}

	uc.cache.Invalidate()
	uc.List(ctx, dto.ListParams{}, true)

	uc.logger.Info("Shop written", zap.String("op", op))
	uc.bus.Publish(event.ShopDataChanged{Reason: op})
	return env, nil
}

// GetByID запрашивает одно заведение по id через сеть
func (uc *ShopUseCase) GetByID(ctx context.Context, id domain.ID) (*domain.Shop, error) {
	if id.IsZero() {
		return nil, errors.Validation("Shop id is required")
	}

	page, err := uc.api.Search(ctx, map[string]interface{}{"id": id.String()})
	if err != nil {
		return nil, err
	}
	if len(page.Records) == 0 {
		return nil, errors.ErrNotFound.WithDetails(map[string]interface{}{"id": id.String()})
	}

	shop := page.Records[0].Normalize()
	return &shop, nil
}

// Select выбирает заведение; nil снимает выбор
func (uc *ShopUseCase) Select(shop *domain.Shop) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if shop == nil {
		uc.selectedID = ""
		uc.selected = nil
		return
	}
	s := shop.Normalize()
	uc.selectedID = s.ID
	uc.selected = &s
}

func (uc *ShopUseCase) ClearSelection() {
	uc.Select(nil)
}

func (uc *ShopUseCase) Selected() *domain.Shop {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.selected == nil {
		return nil
	}
	s := *uc.selected
	return &s
}

// SetFilteredCategories задаёт фильтр по именам категорий; пустой - без фильтра
func (uc *ShopUseCase) SetFilteredCategories(names []string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.filtered = append([]string{}, names...)
}

func (uc *ShopUseCase) ClearFilters() {
	uc.SetFilteredCategories(nil)
}

func (uc *ShopUseCase) FilteredCategories() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return append([]string{}, uc.filtered...)
}

// Shops - текущий список в памяти
func (uc *ShopUseCase) Shops() []domain.Shop {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return cloneShops(uc.shops)
}

// FilteredShops - список, отфильтрованный по категориям
func (uc *ShopUseCase) FilteredShops() []domain.Shop {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.filteredLocked()
}

// DisplayShops - результаты поиска при активном слове, иначе отфильтрованный список
func (uc *ShopUseCase) DisplayShops() dto.DisplayResponse {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	resp := dto.DisplayResponse{
		Keyword:    uc.keyword,
		Categories: append([]string{}, uc.filtered...),
	}
	if strings.TrimSpace(uc.keyword) != "" {
		resp.Shops = cloneShops(uc.searchResults)
	} else {
		resp.Shops = uc.filteredLocked()
	}
	return resp
}

func (uc *ShopUseCase) Keyword() string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.keyword
}

func (uc *ShopUseCase) ClearCache() {
	uc.cache.Invalidate()
}

// Reset возвращает use case в начальное состояние
func (uc *ShopUseCase) Reset() {
	uc.mu.Lock()
	uc.shops = []domain.Shop{}
	uc.selectedID = ""
	uc.selected = nil
	uc.filtered = []string{}
	uc.keyword = ""
	uc.searchResults = []domain.Shop{}
	uc.loading = 0
	uc.lastErr = ""
	uc.mu.Unlock()

	uc.ClearCache()
}

func (uc *ShopUseCase) Status() dto.Status {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return dto.Status{Loading: uc.loading > 0, Error: uc.lastErr}
}

// onShopSelected ищет выбранное заведение в списке и в результатах поиска.
// Если записи нет ни там, ни там, Selected() возвращает nil, но id запоминается.
func (uc *ShopUseCase) onShopSelected(e event.ShopSelected) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.selectedID = e.ShopID
	uc.selected = nil
	if e.ShopID.IsZero() {
		return
	}
	if s, ok := findShop(uc.shops, e.ShopID); ok {
		uc.selected = &s
		return
	}
	if s, ok := findShop(uc.searchResults, e.ShopID); ok {
		uc.selected = &s
	}
}

func findShop(shops []domain.Shop, id domain.ID) (domain.Shop, bool) {
	for i := range shops {
		if shops[i].ID == id {
			return shops[i], true
		}
	}
	return domain.Shop{}, false
}

func (uc *ShopUseCase) filteredLocked() []domain.Shop {
	if len(uc.filtered) == 0 {
		return cloneShops(uc.shops)
	}

	allowed := make(map[string]struct{}, len(uc.filtered))
	for _, name := range uc.filtered {
		allowed[name] = struct{}{}
	}

	result := make([]domain.Shop, 0, len(uc.shops))
	for _, s := range uc.shops {
		if _, ok := allowed[s.Category]; ok {
			result = append(result, s)
		}
	}
	return result
}

func (uc *ShopUseCase) validate(input dto.ShopInput) error {
	if err := validator.Validate(input); err != nil {
		return err
	}
	if !utils.ValidateCoordinates(input.Lat, input.Lng) {
		return errors.Validation("Coordinates are out of range")
	}
	return nil
}

func (uc *ShopUseCase) replaceShops(shops []domain.Shop) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.shops = cloneShops(shops)
}

func (uc *ShopUseCase) setSearchResults(results []domain.Shop) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.searchResults = cloneShops(results)
}

func (uc *ShopUseCase) begin() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.loading++
	uc.lastErr = ""
}

func (uc *ShopUseCase) end() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.loading > 0 {
		uc.loading--
	}
}

func (uc *ShopUseCase) fail(err error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.lastErr = errorMessage(err)
}

func upsertFromInput(input dto.ShopInput, id *domain.ID) domain.ShopUpsert {
	lng, lat := input.Lng, input.Lat
	return domain.ShopUpsert{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Address:     input.Address,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Longitude:   &lng,
		Latitude:    &lat,
		IsDelete:    domain.NotDeleted,
	}
}

func shopFromInput(input dto.ShopInput) domain.Shop {
	return domain.Shop{
		ID:          input.ID,
		Name:        strings.TrimSpace(input.Name),
		Address:     input.Address,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Lng:         input.Lng,
		Lat:         input.Lat,
	}
}

// shopFromData разбирает data ответа upsert, если там объект заведения
func shopFromData(env *domain.Envelope) (*domain.Shop, bool) {
	if env == nil || !env.HasData() {
		return nil, false
	}
	data := strings.TrimSpace(string(env.Data))
	if !strings.HasPrefix(data, "{") || data == "{}" {
		return nil, false
	}

	var shop domain.Shop
	if err := json.Unmarshal(env.Data, &shop); err != nil {
		return nil, false
	}
	return &shop, true
}

func cloneShops(in []domain.Shop) []domain.Shop {
	out := make([]domain.Shop, len(in))
	copy(out, in)
	return out
}
