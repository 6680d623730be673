package domain

import (
	"encoding/json"
	"fmt"

	"github.com/foodmap-client/internal/pkg/utils"
)

const (
	// DefaultShopName подставляется вместо пустого имени
	DefaultShopName = "未命名店铺"
	// DefaultShopCategory подставляется вместо пустой категории
	DefaultShopCategory = "其他"
)

// Shop - заведение (POI) на карте.
// Координаты продублированы под двумя именами полей для совместимости клиентов.
type Shop struct {
	ID          ID         `json:"id,omitempty"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	CategoryID  ID         `json:"categoryId,omitempty"`
	Lng         float64    `json:"lng"`
	Lat         float64    `json:"lat"`
	Longitude   float64    `json:"longitude"`
	Latitude    float64    `json:"latitude"`
	Creator     string     `json:"creator,omitempty"`
	Photo       string     `json:"photo,omitempty"`
	IsDelete    DeleteFlag `json:"isDelete,omitempty"`
	CreatedTime string     `json:"createdTime,omitempty"`
	UpdatedTime string     `json:"updatedTime,omitempty"`
}

// rawShop - запись в том виде, в каком её присылает бэкенд
type rawShop struct {
	ID          ID          `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	CategoryID  ID          `json:"categoryId"`
	Lng         interface{} `json:"lng"`
	Lat         interface{} `json:"lat"`
	Longitude   interface{} `json:"longitude"`
	Latitude    interface{} `json:"latitude"`
	Creator     string      `json:"creator"`
	Photo       string      `json:"photo"`
	IsDelete    DeleteFlag  `json:"isDelete"`
	CreatedTime string      `json:"createdTime"`
	UpdatedTime string      `json:"updatedTime"`
}

// UnmarshalJSON принимает координаты числом или строкой под любым из имён
// и сразу нормализует запись.
func (s *Shop) UnmarshalJSON(data []byte) error {
	var raw rawShop
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode shop: %w", err)
	}

	*s = Shop{
		ID:          raw.ID,
		Name:        raw.Name,
		Address:     raw.Address,
		Description: raw.Description,
		Category:    raw.Category,
		CategoryID:  raw.CategoryID,
		Lng:         firstNonZero(raw.Lng, raw.Longitude),
		Lat:         firstNonZero(raw.Lat, raw.Latitude),
		Creator:     raw.Creator,
		Photo:       raw.Photo,
		IsDelete:    raw.IsDelete,
		CreatedTime: raw.CreatedTime,
		UpdatedTime: raw.UpdatedTime,
	}
	*s = s.Normalize()
	return nil
}

// Normalize заполняет обе пары координат и значения по умолчанию.
// Повторное применение даёт тот же результат.
func (s Shop) Normalize() Shop {
	lng := s.Lng
	if lng == 0 {
		lng = s.Longitude
	}
	lat := s.Lat
	if lat == 0 {
		lat = s.Latitude
	}
	lng = utils.ParseCoordinate(lng)
	lat = utils.ParseCoordinate(lat)

	s.Lng, s.Longitude = lng, lng
	s.Lat, s.Latitude = lat, lat

	if s.Name == "" {
		s.Name = DefaultShopName
	}
	if s.Category == "" {
		s.Category = DefaultShopCategory
	}
	return s
}

// NormalizeShops нормализует срез записей; nil даёт пустой срез
func NormalizeShops(shops []Shop) []Shop {
	out := make([]Shop, 0, len(shops))
	for _, shop := range shops {
		out = append(out, shop.Normalize())
	}
	return out
}

func firstNonZero(values ...interface{}) float64 {
	for _, v := range values {
		if f := utils.ParseCoordinate(v); f != 0 {
			return f
		}
	}
	return 0
}

// ShopPage - страница результатов поиска заведений
type ShopPage struct {
	Records []Shop `json:"records"`
	Total   int    `json:"total"`
}

// ShopUpsert - тело запроса insert-or-update-or-delete для заведений
type ShopUpsert struct {
	ID          *ID        `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Address     string     `json:"address,omitempty"`
	Description string     `json:"description"`
	CategoryID  ID         `json:"categoryId,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	IsDelete    DeleteFlag `json:"isDelete"`
}
