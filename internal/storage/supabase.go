package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	storage_go "github.com/supabase-community/storage-go"
	"go.uber.org/zap"

	"storybook-server/internal/config"
)

// ErrStorageUnavailable means the blob store is misconfigured or rejecting writes.
var ErrStorageUnavailable = errors.New("storage unavailable")

// BlobPublisher uploads a binary object and returns its public URL.
type BlobPublisher interface {
	Publish(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Check() error
}

type supabasePublisher struct {
	cfg    *config.Config
	client *storage_go.Client
	log    *zap.Logger
}

// NewSupabasePublisher builds the Supabase-backed publisher. Missing
// credentials surface through Check, not at construction.
func NewSupabasePublisher(cfg *config.Config, log *zap.Logger) BlobPublisher {
	p := &supabasePublisher{cfg: cfg, log: log.Named("supabase")}
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		p.client = storage_go.NewClient(cfg.SupabaseURL+"/storage/v1", cfg.SupabaseServiceKey, nil)
	}
	return p
}

func (p *supabasePublisher) Check() error {
	if p.client == nil {
		return fmt.Errorf("%w: SUPABASE_URL or SUPABASE_SERVICE_KEY is not set", ErrStorageUnavailable)
	}
	return nil
}

func (p *supabasePublisher) Publish(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := p.Check(); err != nil {
		return "", err
	}
	upsert := true
	_, err := p.client.UploadFile(p.cfg.SupabaseBucket, path, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrStorageUnavailable, path, err)
	}
	resp := p.client.GetPublicUrl(p.cfg.SupabaseBucket, path)
	p.log.Debug("blob published", zap.String("path", path), zap.Int("bytes", len(data)))
	return resp.SignedURL, nil
}
