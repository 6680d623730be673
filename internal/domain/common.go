package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ID - идентификатор сущности бэкенда.
// Бэкенд отдаёт snowflake-идентификаторы то строкой, то числом, поэтому
// значение хранится строкой без потери точности.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := decodeFlexString(data)
	if err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string {
	return string(id)
}

// IsZero - идентификатор отсутствует
func (id ID) IsZero() bool {
	return id == ""
}

// Code - код конверта ответа ("200", 200 и т.п.)
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	s, err := decodeFlexString(data)
	if err != nil {
		return fmt.Errorf("decode code: %w", err)
	}
	*c = Code(s)
	return nil
}

func decodeFlexString(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// DeleteFlag - флаг мягкого удаления ("Y"/"N")
type DeleteFlag string

const (
	NotDeleted DeleteFlag = "N"
	Deleted    DeleteFlag = "Y"
)

// Coordinates - точка на карте
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MapState - центр и масштаб карты
type MapState struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// Notification - временное сообщение для пользователя
type Notification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
