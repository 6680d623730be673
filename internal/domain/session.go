package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Session - текущий пользователь и его bearer-токен
type Session struct {
	Token      string                 `json:"jwtToken"`
	UserID     ID                     `json:"id,omitempty"`
	Username   string                 `json:"username,omitempty"`
	Nickname   string                 `json:"nickname,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// SessionFromData собирает сессию из поля data ответа /sys-user/login.
// Все поля пользователя сохраняются в Attributes.
func SessionFromData(data json.RawMessage) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if strings.TrimSpace(s.Token) == "" {
		return nil, fmt.Errorf("decode session: token is missing")
	}

	attrs := make(map[string]interface{})
	if err := json.Unmarshal(data, &attrs); err == nil {
		delete(attrs, "jwtToken")
		delete(attrs, "password")
		s.Attributes = attrs
	}
	return &s, nil
}
