package domain

import "encoding/json"

// Envelope - конверт JSON-ответа бэкенда
type Envelope struct {
	Code        Code            `json:"code"`
	Message     string          `json:"message"`
	Data        json.RawMessage `json:"data"`
	Description string          `json:"description,omitempty"`
}

// HasData - data присутствует и не равно null
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}
