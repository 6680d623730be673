//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const stream = "stream:foodmap:events"

type streamEvent struct {
	Kind       string      `json:"kind"`
	Payload    interface{} `json:"payload,omitempty"`
	Profile    string      `json:"profile"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	profile := flag.String("profile", "default", "session profile")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Тестовое событие: выбор заведения
	shopID := uuid.NewString()
	event := streamEvent{
		Kind:       "shop_selected",
		Payload:    map[string]string{"shop_id": shopID},
		Profile:    *profile,
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", stream)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Shop ID: %s\n", shopID)

	// Проверка, что событие читается так же, как его читает GET /api/v1/events
	msgs, err := client.XRangeN(ctx, stream, result, result, 1).Result()
	if err != nil || len(msgs) == 0 {
		log.Fatalf("Published event is not readable: %v", err)
	}
	fmt.Printf("   Read back: %s\n", msgs[0].Values["data"])
}
