package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"storybook-server/internal/config"
)

var (
	// ErrImageModelUnavailable means the image backend is misconfigured or unreachable.
	ErrImageModelUnavailable = errors.New("image model unavailable")
	// ErrNoImageInResponse means the model replied but produced no image part.
	ErrNoImageInResponse = errors.New("no image in model response")
)

// ReferenceImage is supplied alongside the prompt so the model can keep
// character appearance consistent across pages.
type ReferenceImage struct {
	Data     []byte
	MIMEType string
}

// GeneratedImage is the raw output of one image model call.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// ImageClient performs a single image generation call, no retries.
type ImageClient interface {
	Generate(ctx context.Context, prompt string, refs []ReferenceImage) (*GeneratedImage, error)
	Check() error
}

type geminiImageClient struct {
	cfg *config.Config
	log *zap.Logger

	// mu guards client; pages of one story can be regenerated concurrently
	// with a pipeline run on the same shared instance.
	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiImageClient builds the Gemini-backed image client. The underlying
// SDK client is created lazily so a missing key surfaces as a Check error,
// not a startup crash.
func NewGeminiImageClient(cfg *config.Config, log *zap.Logger) ImageClient {
	return &geminiImageClient{cfg: cfg, log: log.Named("gemini")}
}

func (c *geminiImageClient) Check() error {
	if c.cfg.ImageAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrImageModelUnavailable)
	}
	return nil
}

func (c *geminiImageClient) ensureClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.cfg.ImageAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageModelUnavailable, err)
	}
	c.client = client
	return client, nil
}

func (c *geminiImageClient) Generate(ctx context.Context, prompt string, refs []ReferenceImage) (*GeneratedImage, error) {
	client, err := c.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, ref := range refs {
		parts = append(parts, genai.NewPartFromBytes(ref.Data, ref.MIMEType))
	}

	resp, err := client.Models.GenerateContent(ctx, c.cfg.ImageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageModelUnavailable, err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = "image/png"
				}
				return &GeneratedImage{Data: part.InlineData.Data, MIMEType: mime}, nil
			}
		}
	}
	return nil, ErrNoImageInResponse
}
