// Package event - шина событий между модулями состояния.
// Модуль не вызывает методы другого модуля напрямую: он публикует событие,
// а заинтересованные модули подписываются на нужный вид.
package event

import "github.com/foodmap-client/internal/domain"

// Kind - вид события
type Kind string

const (
	KindShopSelected          Kind = "shop_selected"
	KindCategoryFilterChanged Kind = "category_filter_changed"
	KindShopDataChanged       Kind = "shop_data_changed"
	KindCategoryDataChanged   Kind = "category_data_changed"
	KindSessionCleared        Kind = "session_cleared"
)

// Event - событие шины
type Event interface {
	Kind() Kind
}

// ShopSelected - пользователь выбрал заведение (пустой ID - выбор снят)
type ShopSelected struct {
	ShopID domain.ID `json:"shop_id"`
}

func (ShopSelected) Kind() Kind { return KindShopSelected }

// CategoryFilterChanged - изменился набор категорий фильтра (пустой - без фильтра)
type CategoryFilterChanged struct {
	Names []string `json:"names"`
}

func (CategoryFilterChanged) Kind() Kind { return KindCategoryFilterChanged }

// ShopDataChanged - список заведений перечитан после записи
type ShopDataChanged struct {
	Reason string `json:"reason"`
}

func (ShopDataChanged) Kind() Kind { return KindShopDataChanged }

// CategoryDataChanged - список категорий перечитан после записи
type CategoryDataChanged struct {
	Reason string `json:"reason"`
}

func (CategoryDataChanged) Kind() Kind { return KindCategoryDataChanged }

// SessionCleared - сессия сброшена (logout или код недействительной сессии)
type SessionCleared struct {
	Reason string `json:"reason"`
}

func (SessionCleared) Kind() Kind { return KindSessionCleared }
