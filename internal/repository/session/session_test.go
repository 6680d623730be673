package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/domain"
	"github.com/foodmap-client/internal/domain/repository"
	"github.com/foodmap-client/internal/repository/session"
)

func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	return client
}

func exerciseStore(t *testing.T, store repository.SessionStore) {
	ctx := context.Background()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	s := &domain.Session{
		Token:    "jwt-1",
		UserID:   "42",
		Username: "alice",
		Attributes: map[string]interface{}{
			"nickname": "A",
		},
	}
	require.NoError(t, store.Save(ctx, s))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "jwt-1", loaded.Token)
	assert.Equal(t, domain.ID("42"), loaded.UserID)
	assert.Equal(t, "A", loaded.Attributes["nickname"])

	require.NoError(t, store.Delete(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, session.NewMemoryStore())
}

func TestMemoryStore_SaveCopies(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	s := &domain.Session{Token: "a"}
	require.NoError(t, store.Save(ctx, s))
	s.Token = "b"

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Token)
}

func TestRedisStore(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	profile := "test-" + time.Now().Format("150405.000000")
	defer client.Del(context.Background(), session.Key(profile))

	exerciseStore(t, session.NewRedisStore(client, profile, zap.NewNop()))
}

func TestRedisStore_CorruptedValue(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	profile := "test-corrupt"
	key := session.Key(profile)
	defer client.Del(ctx, key)

	require.NoError(t, client.Set(ctx, key, "{not json", 0).Err())

	loaded, err := session.NewRedisStore(client, profile, zap.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "foodmap:session:default", session.Key(""))
	assert.Equal(t, "foodmap:session:mobile", session.Key("mobile"))
}
