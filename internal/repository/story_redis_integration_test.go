//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/model"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := redis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func sampleDocument(id string) *model.StoryDocument {
	url := "https://cdn.example.com/p1.png"
	return &model.StoryDocument{
		ID:        id,
		Title:     "The Adventures of Mila",
		Subtitle:  "A story for ages 4-6",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Pages: []model.StoryPage{
			{Text: "Page one.", ImageURL: &url},
			{Text: "Page two."},
		},
		Characters: []model.Character{
			{ID: "c1", Name: "Mila", IsMainCharacter: true, Gender: model.GenderFemale},
		},
	}
}

func TestRedisStoryStore_RoundTrip(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	opener := NewRedisStoreOpener(&config.Config{RedisAddr: addr}, zap.NewNop())
	store, err := opener.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	doc := sampleDocument("story-rt")
	require.NoError(t, store.Set(ctx, doc, time.Hour))

	got, err := store.Get(ctx, "story-rt")
	require.NoError(t, err)
	assert.Equal(t, doc, got)
	require.NotNil(t, got.Pages[0].ImageURL)
	assert.Nil(t, got.Pages[1].ImageURL)
}

func TestRedisStoryStore_GetMissing(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	opener := NewRedisStoreOpener(&config.Config{RedisAddr: addr}, zap.NewNop())
	store, err := opener.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestRedisStoryStore_OverwriteReplacesWholesale(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	opener := NewRedisStoreOpener(&config.Config{RedisAddr: addr}, zap.NewNop())
	store, err := opener.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	doc := sampleDocument("story-ow")
	require.NoError(t, store.Set(ctx, doc, time.Hour))

	doc.Pages = doc.Pages[:1]
	doc.Title = "A Shorter Story"
	require.NoError(t, store.Set(ctx, doc, time.Hour))

	got, err := store.Get(ctx, "story-ow")
	require.NoError(t, err)
	assert.Equal(t, "A Shorter Story", got.Title)
	assert.Len(t, got.Pages, 1)
}

func TestRedisStoryStore_UpdatePreservesTTL(t *testing.T) {
	addr := startRedis(t)
	ctx := context.Background()

	opener := NewRedisStoreOpener(&config.Config{RedisAddr: addr}, zap.NewNop())
	store, err := opener.Open(ctx)
	require.NoError(t, err)
	defer store.Close()

	doc := sampleDocument("story-ttl")
	require.NoError(t, store.Set(ctx, doc, time.Hour))

	doc.Pages[0].Text = "Edited text."
	require.NoError(t, store.Update(ctx, doc))

	client := redisclient.NewClient(&redisclient.Options{Addr: addr})
	defer client.Close()
	ttl, err := client.TTL(ctx, "story:story-ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Minute, "update must not reset or drop the TTL")

	got, err := store.Get(ctx, "story-ttl")
	require.NoError(t, err)
	assert.Equal(t, "Edited text.", got.Pages[0].Text)
}
