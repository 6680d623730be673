package state

import (
	"sync"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/event"
)

// CategorySelectionSnapshot - снимок выбора категорий
type CategorySelectionSnapshot struct {
	Selected       []string `json:"selectedCategories"`
	FilterExpanded bool     `json:"categoryFilterExpanded"`
	UpdateTrigger  int      `json:"categoryUpdateTrigger"`
}

// CategorySelection - выбранные в фильтре категории.
// Каждое изменение выбора публикует CategoryFilterChanged.
type CategorySelection struct {
	mu       sync.RWMutex
	selected []string
	expanded bool
	trigger  int

	bus         *event.Bus
	unsubscribe func()
}

func NewCategorySelection(bus *event.Bus) *CategorySelection {
	c := &CategorySelection{
		selected: []string{},
		expanded: true,
		bus:      bus,
	}
	c.unsubscribe = event.On(bus, func(event.CategoryDataChanged) { c.NotifyUpdate() })
	return c
}

func (c *CategorySelection) Close() {
	c.unsubscribe()
}

// Select заменяет выбор целиком
func (c *CategorySelection) Select(names []string) {
	c.mu.Lock()
	c.selected = append([]string{}, names...)
	snapshot := append([]string{}, c.selected...)
	c.mu.Unlock()

	c.bus.Publish(event.CategoryFilterChanged{Names: snapshot})
}

// Toggle добавляет категорию в выбор или убирает её
func (c *CategorySelection) Toggle(name string) {
	c.mu.Lock()
	idx := -1
	for i, n := range c.selected {
		if n == name {
			idx = i
			break
		}
	}
	if idx >= 0 {
		c.selected = append(c.selected[:idx:idx], c.selected[idx+1:]...)
	} else {
		c.selected = append(c.selected, name)
	}
	snapshot := append([]string{}, c.selected...)
	c.mu.Unlock()

	c.bus.Publish(event.CategoryFilterChanged{Names: snapshot})
}

func (c *CategorySelection) Clear() {
	c.Select(nil)
}

// SelectAll выбирает все переданные категории
func (c *CategorySelection) SelectAll(allNames []string) {
	c.Select(allNames)
}

func (c *CategorySelection) SetFilterExpanded(expanded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded = expanded
}

// NotifyUpdate увеличивает счётчик обновлений категорий
func (c *CategorySelection) NotifyUpdate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trigger++
}

func (c *CategorySelection) Selected() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, c.selected...)
}

func (c *CategorySelection) Snapshot() CategorySelectionSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CategorySelectionSnapshot{
		Selected:       append([]string{}, c.selected...),
		FilterExpanded: c.expanded,
		UpdateTrigger:  c.trigger,
	}
}

// ShopSelectionSnapshot - снимок выбора заведения
type ShopSelectionSnapshot struct {
	SelectedShopID        domain.ID `json:"selectedShopId,omitempty"`
	ShopListRefresh       int       `json:"shopListRefreshTrigger"`
	CurrentCategoryFilter []string  `json:"currentCategoryFilter"`
	MapSyncTrigger        int       `json:"mapSyncTrigger"`
}

// ShopSelection - выбранное заведение и счётчики синхронизации списка и карты
type ShopSelection struct {
	mu            sync.RWMutex
	selectedID    domain.ID
	refresh       int
	currentFilter []string
	mapSync       int

	bus          *event.Bus
	unsubscribes []func()
}

func NewShopSelection(bus *event.Bus) *ShopSelection {
	s := &ShopSelection{
		currentFilter: []string{},
		bus:           bus,
	}
	s.unsubscribes = []func(){
		event.On(bus, s.onCategoryFilterChanged),
		event.On(bus, func(event.ShopDataChanged) { s.RequestRefresh() }),
		event.On(bus, s.onShopSelected),
	}
	return s
}

func (s *ShopSelection) Close() {
	for _, unsubscribe := range s.unsubscribes {
		unsubscribe()
	}
}

// SelectShop запоминает выбор, публикует ShopSelected и сдвигает счётчик синхронизации карты
func (s *ShopSelection) SelectShop(id domain.ID) {
	s.mu.Lock()
	s.selectedID = id
	s.mapSync++
	s.mu.Unlock()

	s.bus.Publish(event.ShopSelected{ShopID: id})
}

// ClearSelection снимает выбор и публикует пустой ShopSelected
func (s *ShopSelection) ClearSelection() {
	s.mu.Lock()
	had := !s.selectedID.IsZero()
	s.selectedID = ""
	s.mu.Unlock()

	if had {
		s.bus.Publish(event.ShopSelected{})
	}
}

// RequestRefresh просит компоненты перечитать список заведений
func (s *ShopSelection) RequestRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh++
}

func (s *ShopSelection) SelectedShopID() domain.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

func (s *ShopSelection) Snapshot() ShopSelectionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ShopSelectionSnapshot{
		SelectedShopID:        s.selectedID,
		ShopListRefresh:       s.refresh,
		CurrentCategoryFilter: append([]string{}, s.currentFilter...),
		MapSyncTrigger:        s.mapSync,
	}
}

func (s *ShopSelection) onCategoryFilterChanged(e event.CategoryFilterChanged) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentFilter = append([]string{}, e.Names...)
}

// onShopSelected держит id в согласии с выбором, снятым другим модулем (например, после удаления)
func (s *ShopSelection) onShopSelected(e event.ShopSelected) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = e.ShopID
}
