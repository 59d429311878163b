package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"syntexapply/internal/model"
)

func sampleState(id string) *model.FlowState {
	s := model.NewFlowState(id)
	s.CurrentStep = 2
	s.Answers["fullName"] = "Ada"
	return s
}

func TestRedisSessionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewSessionCache(client, time.Hour)
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, sampleState("s1")))
	assert.True(t, mr.Exists("application:session:s1"))
	assert.Equal(t, time.Hour, mr.TTL("application:session:s1"))

	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.CurrentStep)
	assert.Equal(t, "Ada", got.Answers["fullName"])
	assert.Equal(t, model.StatusNotSubmitted, got.SubmissionStatus)

	mr.FastForward(2 * time.Hour)
	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, sampleState("s2")))
	require.NoError(t, c.Delete(ctx, "s2"))
	got, err = c.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemorySessionCache(t *testing.T) {
	c := NewMemorySessionCache(time.Minute).(*memorySessionCache)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleState("s1")))
	got, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", got.Answers["fullName"])

	// returned states are copies
	got.Answers["fullName"] = "changed"
	again, _ := c.Get(ctx, "s1")
	assert.Equal(t, "Ada", again.Answers["fullName"])

	now = now.Add(2 * time.Minute)
	got, err = c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, sampleState("s2")))
	require.NoError(t, c.Delete(ctx, "s2"))
	got, _ = c.Get(ctx, "s2")
	assert.Nil(t, got)
}
