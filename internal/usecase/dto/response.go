package dto

import "github.com/foodmap-client/internal/domain"

// Status - состояние загрузки use case'а
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// SessionResponse - текущая сессия для клиента (без токена)
type SessionResponse struct {
	Authenticated bool                   `json:"authenticated"`
	UserID        domain.ID              `json:"userId,omitempty"`
	Username      string                 `json:"username,omitempty"`
	Nickname      string                 `json:"nickname,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
}

// NewSessionResponse скрывает токен из сессии
func NewSessionResponse(s *domain.Session) SessionResponse {
	if s == nil {
		return SessionResponse{}
	}
	return SessionResponse{
		Authenticated: s.Token != "",
		UserID:        s.UserID,
		Username:      s.Username,
		Nickname:      s.Nickname,
		Attributes:    s.Attributes,
	}
}

// ShopListResponse - страница заведений
type ShopListResponse struct {
	Records []domain.Shop `json:"records"`
	Total   int           `json:"total"`
}

// DisplayResponse - заведения для карты с учётом поиска и фильтра
type DisplayResponse struct {
	Shops      []domain.Shop `json:"shops"`
	Keyword    string        `json:"keyword,omitempty"`
	Categories []string      `json:"categories"`
}
