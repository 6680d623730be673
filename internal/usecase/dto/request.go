package dto

import "github.com/foodmap-client/internal/domain"

const (
	DefaultPageNum  = 1
	DefaultPageSize = 100
)

// LoginRequest - вход по логину, паролю и коду капчи
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
	Code     string `json:"code,omitempty" validate:"omitempty,max=16"`
}

// RegisterRequest - регистрация нового пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Nickname string `json:"nickname,omitempty" validate:"omitempty,max=64"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Code     string `json:"code,omitempty" validate:"omitempty,max=16"`
}

// CategoryInput - данные формы категории; пустой ID - создание
type CategoryInput struct {
	ID    domain.ID `json:"id,omitempty"`
	Name  string    `json:"name" validate:"required,max=50"`
	Icon  string    `json:"icon,omitempty" validate:"omitempty,max=255"`
	Color string    `json:"color,omitempty" validate:"omitempty,max=32"`
}

// ShopInput - данные формы заведения; пустой ID - создание
type ShopInput struct {
	ID          domain.ID `json:"id,omitempty"`
	Name        string    `json:"name" validate:"required,max=100"`
	Address     string    `json:"address" validate:"max=255"`
	Description string    `json:"description" validate:"max=2000"`
	CategoryID  domain.ID `json:"categoryId" validate:"required"`
	Lng         float64   `json:"lng" validate:"min=-180,max=180"`
	Lat         float64   `json:"lat" validate:"min=-90,max=90"`
}

// ListParams - страница и произвольные фильтры списка заведений.
// Кеш используется только без фильтров.
type ListParams struct {
	PageNum  int                    `json:"pageNum"`
	PageSize int                    `json:"pageSize"`
	Filters  map[string]interface{} `json:"filters,omitempty"`
}

// WithDefaults подставляет страницу 1 и размер 100
func (p ListParams) WithDefaults() ListParams {
	if p.PageNum <= 0 {
		p.PageNum = DefaultPageNum
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Body - тело запроса /poi-data/search
func (p ListParams) Body() map[string]interface{} {
	p = p.WithDefaults()
	body := make(map[string]interface{}, len(p.Filters)+2)
	for k, v := range p.Filters {
		body[k] = v
	}
	body["pageNum"] = p.PageNum
	body["pageSize"] = p.PageSize
	return body
}

// SearchRequest - поиск заведений по ключевому слову
type SearchRequest struct {
	Keyword string `json:"keyword"`
}
