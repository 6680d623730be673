package domain

import "time"

// StreamFoodmapEvents - Redis stream, куда зеркалируются события шины
const StreamFoodmapEvents = "stream:foodmap:events"

// StreamEvent - запись события в стриме
type StreamEvent struct {
	Kind       string      `json:"kind"`
	Payload    interface{} `json:"payload,omitempty"`
	Profile    string      `json:"profile"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
