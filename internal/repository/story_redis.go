package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/model"
)

var (
	// ErrStoreUnavailable means the story store cannot be reached or is misconfigured.
	ErrStoreUnavailable = errors.New("story store unavailable")
	// ErrStoryNotFound means the story does not exist or its TTL expired.
	ErrStoryNotFound = errors.New("story not found")
)

const storyKeyPrefix = "story:"

// StoryStore persists finished stories with a TTL.
type StoryStore interface {
	Set(ctx context.Context, doc *model.StoryDocument, ttl time.Duration) error
	Get(ctx context.Context, id string) (*model.StoryDocument, error)
	Update(ctx context.Context, doc *model.StoryDocument) error
	Close() error
}

// StoreOpener opens a store connection scoped to one request or pipeline run.
type StoreOpener interface {
	Open(ctx context.Context) (StoryStore, error)
	Check() error
}

type redisOpener struct {
	cfg *config.Config
	log *zap.Logger
}

func NewRedisStoreOpener(cfg *config.Config, log *zap.Logger) StoreOpener {
	return &redisOpener{cfg: cfg, log: log.Named("redis")}
}

func (o *redisOpener) Check() error {
	if o.cfg.RedisAddr == "" {
		return fmt.Errorf("%w: REDIS_ADDR is not set", ErrStoreUnavailable)
	}
	return nil
}

func (o *redisOpener) Open(ctx context.Context) (StoryStore, error) {
	if err := o.Check(); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     o.cfg.RedisAddr,
		Password: o.cfg.RedisPassword,
		DB:       o.cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &redisStoryStore{client: client, log: o.log}, nil
}

type redisStoryStore struct {
	client *redis.Client
	log    *zap.Logger
}

// NewRedisStoryStore wraps an existing client, mainly for tests.
func NewRedisStoryStore(client *redis.Client, log *zap.Logger) StoryStore {
	return &redisStoryStore{client: client, log: log}
}

func (s *redisStoryStore) Set(ctx context.Context, doc *model.StoryDocument, ttl time.Duration) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal story %s: %w", doc.ID, err)
	}
	if err := s.client.Set(ctx, storyKeyPrefix+doc.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrStoreUnavailable, doc.ID, err)
	}
	s.log.Debug("story saved", zap.String("story_id", doc.ID), zap.Duration("ttl", ttl))
	return nil
}

func (s *redisStoryStore) Get(ctx context.Context, id string) (*model.StoryDocument, error) {
	payload, err := s.client.Get(ctx, storyKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreUnavailable, id, err)
	}
	var doc model.StoryDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal story %s: %w", id, err)
	}
	return &doc, nil
}

// Update rewrites an existing story while preserving its remaining TTL.
func (s *redisStoryStore) Update(ctx context.Context, doc *model.StoryDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal story %s: %w", doc.ID, err)
	}
	if err := s.client.Set(ctx, storyKeyPrefix+doc.ID, payload, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrStoreUnavailable, doc.ID, err)
	}
	return nil
}

func (s *redisStoryStore) Close() error {
	return s.client.Close()
}
