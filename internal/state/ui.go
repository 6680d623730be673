package state

import (
	"sync"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/event"
)

const (
	// MobileMaxWidth - ширина окна, до которой включительно клиент считается мобильным
	MobileMaxWidth = 768

	DefaultMapZoom = 12
)

// DefaultMapCenter - центр карты по умолчанию (Пекин, площадь Тяньаньмэнь)
var DefaultMapCenter = [2]float64{39.9042, 116.4074}

// FormState - видимость модальной формы и редактируемая сущность
type FormState struct {
	Visible   bool      `json:"visible"`
	EditingID domain.ID `json:"editingId,omitempty"`
}

// IsEditing - форма открыта для существующей записи
func (f FormState) IsEditing() bool {
	return !f.EditingID.IsZero()
}

// UISnapshot - согласованный снимок UI-состояния
type UISnapshot struct {
	SidebarCollapsed bool                `json:"sidebarCollapsed"`
	ShopForm         FormState           `json:"shopForm"`
	CategoryForm     FormState           `json:"categoryForm"`
	Map              domain.MapState     `json:"map"`
	Loading          bool                `json:"loading"`
	IsMobile         bool                `json:"isMobile"`
	TempCoordinates  *domain.Coordinates `json:"tempCoordinates,omitempty"`
}

// UIState - чистый контейнер UI-состояния
type UIState struct {
	mu sync.RWMutex
	s  UISnapshot

	unsubscribe func()
}

// NewUIState создает состояние и подписывает его на выбор заведения
func NewUIState(bus *event.Bus) *UIState {
	ui := &UIState{
		s: UISnapshot{
			Map: domain.MapState{Center: DefaultMapCenter, Zoom: DefaultMapZoom},
		},
	}
	if bus != nil {
		ui.unsubscribe = event.On(bus, ui.onShopSelected)
	}
	return ui
}

// Close отписывает состояние от шины
func (u *UIState) Close() {
	if u.unsubscribe != nil {
		u.unsubscribe()
	}
}

func (u *UIState) Snapshot() UISnapshot {
	u.mu.RLock()
	defer u.mu.RUnlock()
	s := u.s
	if s.TempCoordinates != nil {
		c := *s.TempCoordinates
		s.TempCoordinates = &c
	}
	return s
}

func (u *UIState) ToggleSidebar() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.SidebarCollapsed = !u.s.SidebarCollapsed
}

func (u *UIState) SetSidebarCollapsed(collapsed bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.SidebarCollapsed = collapsed
}

// ShowShopForm открывает форму заведения; пустой id - создание
func (u *UIState) ShowShopForm(id domain.ID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.ShopForm = FormState{Visible: true, EditingID: id}
}

func (u *UIState) HideShopForm() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.ShopForm = FormState{}
}

// ShowCategoryForm открывает форму категории; пустой id - создание
func (u *UIState) ShowCategoryForm(id domain.ID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.CategoryForm = FormState{Visible: true, EditingID: id}
}

func (u *UIState) HideCategoryForm() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.CategoryForm = FormState{}
}

// SetMapState меняет центр и/или масштаб; nil-центр и нулевой масштаб игнорируются
func (u *UIState) SetMapState(center *[2]float64, zoom int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if center != nil {
		u.s.Map.Center = *center
	}
	if zoom != 0 {
		u.s.Map.Zoom = zoom
	}
}

func (u *UIState) SetLoading(loading bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.Loading = loading
}

// DetectMobile выставляет мобильный режим по ширине окна.
// В мобильном режиме сайдбар сворачивается.
func (u *UIState) DetectMobile(width int) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.IsMobile = width <= MobileMaxWidth
	if u.s.IsMobile {
		u.s.SidebarCollapsed = true
	}
	return u.s.IsMobile
}

// SetTempCoordinates запоминает точку для нового заведения
func (u *UIState) SetTempCoordinates(c domain.Coordinates) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.TempCoordinates = &c
}

func (u *UIState) ClearTempCoordinates() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.s.TempCoordinates = nil
}

func (u *UIState) onShopSelected(e event.ShopSelected) {
	if e.ShopID.IsZero() {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.s.IsMobile {
		u.s.SidebarCollapsed = true
	}
}
