package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	recordOwnerQuery = `
        INSERT INTO story_owners (story_id, owner_id, title, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (story_id) DO NOTHING
    `
	listByOwnerQuery = `
        SELECT story_id, owner_id, title, created_at
        FROM story_owners
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `
)

// OwnedStory is the ownership index entry for one story. The story body
// itself lives in the TTL store; this row only answers "whose is it".
type OwnedStory struct {
	StoryID   string    `db:"story_id"`
	OwnerID   string    `db:"owner_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

// StoryOwnershipStore records which user a generated story belongs to.
type StoryOwnershipStore interface {
	Record(ctx context.Context, entry OwnedStory) error
	ListByOwner(ctx context.Context, ownerID string) ([]OwnedStory, error)
}

type pgOwnershipStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPgOwnershipStore(pool *pgxpool.Pool, logger *zap.Logger) StoryOwnershipStore {
	return &pgOwnershipStore{
		pool:   pool,
		logger: logger.Named("OwnershipRepo"),
	}
}

func (r *pgOwnershipStore) Record(ctx context.Context, entry OwnedStory) error {
	_, err := r.pool.Exec(ctx, recordOwnerQuery, entry.StoryID, entry.OwnerID, entry.Title, entry.CreatedAt)
	if err != nil {
		r.logger.Error("Error recording story owner",
			zap.String("story_id", entry.StoryID), zap.Error(err))
		return fmt.Errorf("failed to record owner for story %s: %w", entry.StoryID, err)
	}
	return nil
}

func (r *pgOwnershipStore) ListByOwner(ctx context.Context, ownerID string) ([]OwnedStory, error) {
	var entries []OwnedStory
	err := pgxscan.Select(ctx, r.pool, &entries, listByOwnerQuery, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []OwnedStory{}, nil
		}
		r.logger.Error("Error listing stories by owner", zap.Error(err))
		return nil, fmt.Errorf("failed to list stories for owner %s: %w", ownerID, err)
	}
	return entries, nil
}
