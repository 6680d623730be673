package notify_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foodmap-client/internal/notify"
)

func TestCenter_Expiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := notify.NewCenter(3*time.Second, zap.NewNop()).WithClock(func() time.Time { return now })

	c.Notify(notify.LevelError, "5001 | token expired")
	now = now.Add(2 * time.Second)
	c.Notify(notify.LevelSuccess, "saved")

	recent := c.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "5001 | token expired", recent[0].Message)
	assert.NotEqual(t, recent[0].ID, recent[1].ID)

	now = now.Add(1500 * time.Millisecond)
	recent = c.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "saved", recent[0].Message)

	now = now.Add(time.Hour)
	assert.Empty(t, c.Recent())
}

func TestCenter_Bounded(t *testing.T) {
	c := notify.NewCenter(time.Hour, zap.NewNop())
	for i := 0; i < 80; i++ {
		c.Notify(notify.LevelInfo, fmt.Sprintf("n%d", i))
	}

	recent := c.Recent()
	assert.Len(t, recent, 50)
	assert.Equal(t, "n79", recent[len(recent)-1].Message)
}
