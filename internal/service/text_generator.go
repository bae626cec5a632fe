package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/media"
	"storybook-server/internal/model"
)

var (
	// ErrTextModelUnavailable means the text backend is misconfigured or unreachable.
	ErrTextModelUnavailable = errors.New("text model unavailable")
	// ErrMalformedStory means the model replied with something other than the
	// expected JSON array of page strings.
	ErrMalformedStory = errors.New("malformed story response")
)

// TextGenerator produces the page texts for a story.
type TextGenerator interface {
	GeneratePages(ctx context.Context, req model.StoryRequest) ([]string, error)
	// Check verifies the generator is configured well enough to attempt a call.
	Check() error
}

// NewTextGenerator builds the configured backend.
func NewTextGenerator(cfg *config.Config, fetcher *media.Fetcher, log *zap.Logger) (TextGenerator, error) {
	switch cfg.TextClientType {
	case "openai":
		return newOpenAIGenerator(cfg, fetcher, log), nil
	case "ollama":
		return newOllamaGenerator(cfg, fetcher, log)
	default:
		return nil, fmt.Errorf("unknown text client type: %s", cfg.TextClientType)
	}
}

// parsePages enforces the strict output contract: a JSON array of exactly
// want non-empty strings. Markdown fences some models insist on are stripped.
func parsePages(raw string, want int) ([]string, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var pages []string
	if err := json.Unmarshal([]byte(raw), &pages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStory, err)
	}
	if len(pages) != want {
		return nil, fmt.Errorf("%w: expected %d pages, got %d", ErrMalformedStory, want, len(pages))
	}
	for i, p := range pages {
		if strings.TrimSpace(p) == "" {
			return nil, fmt.Errorf("%w: page %d is empty", ErrMalformedStory, i+1)
		}
	}
	return pages, nil
}

// fetchStoryPhotos downloads the uploaded story photos for photo-analysis
// mode. A failed download is logged and skipped so one dead link does not
// sink the whole request; nil is returned for the other plot modes.
func fetchStoryPhotos(ctx context.Context, fetcher *media.Fetcher, req model.StoryRequest, log *zap.Logger) []*media.Image {
	if req.StoryPlotOption != model.PlotFromPhotos {
		return nil
	}
	var photos []*media.Image
	for _, rawURL := range req.UploadedStoryPhotoURLs {
		img, err := fetcher.Fetch(ctx, rawURL)
		if err != nil {
			log.Warn("story photo unavailable", zap.String("url", rawURL), zap.Error(err))
			continue
		}
		photos = append(photos, img)
	}
	return photos
}

type openAIGenerator struct {
	cfg     *config.Config
	client  *openai.Client
	fetcher *media.Fetcher
	log     *zap.Logger
}

func newOpenAIGenerator(cfg *config.Config, fetcher *media.Fetcher, log *zap.Logger) *openAIGenerator {
	g := &openAIGenerator{cfg: cfg, fetcher: fetcher, log: log.Named("openai")}
	if cfg.TextAPIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.TextAPIKey)
		if cfg.TextBaseURL != "" {
			clientCfg.BaseURL = cfg.TextBaseURL
		}
		g.client = openai.NewClientWithConfig(clientCfg)
	}
	return g
}

func (g *openAIGenerator) Check() error {
	if g.client == nil {
		return fmt.Errorf("%w: TEXT_API_KEY is not set", ErrTextModelUnavailable)
	}
	return nil
}

// userMessage builds the user turn. In photo-analysis mode the uploaded
// photos ride along as image parts so the model can see the moment it is
// asked to write about.
func (g *openAIGenerator) userMessage(ctx context.Context, req model.StoryRequest) openai.ChatCompletionMessage {
	prompt := BuildStoryUserPrompt(req)
	photos := fetchStoryPhotos(ctx, g.fetcher, req, g.log)
	if len(photos) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt}
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for _, photo := range photos {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", photo.MIMEType, base64.StdEncoding.EncodeToString(photo.Data)),
			},
		})
	}
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}

func (g *openAIGenerator) GeneratePages(ctx context.Context, req model.StoryRequest) ([]string, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.TextTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildStorySystemPrompt(req.StoryLengthTargetPages)},
			g.userMessage(ctx, req),
		},
		Temperature: 0.8,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextModelUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedStory)
	}
	g.log.Debug("story text generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))
	observeTextTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return parsePages(resp.Choices[0].Message.Content, req.StoryLengthTargetPages)
}

type ollamaGenerator struct {
	cfg     *config.Config
	client  *api.Client
	fetcher *media.Fetcher
	log     *zap.Logger
}

func newOllamaGenerator(cfg *config.Config, fetcher *media.Fetcher, log *zap.Logger) (*ollamaGenerator, error) {
	g := &ollamaGenerator{cfg: cfg, fetcher: fetcher, log: log.Named("ollama")}
	if cfg.TextBaseURL == "" {
		return g, nil
	}
	base, err := url.Parse(cfg.TextBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL: %w", err)
	}
	g.client = api.NewClient(base, http.DefaultClient)
	return g, nil
}

func (g *ollamaGenerator) Check() error {
	if g.client == nil {
		return fmt.Errorf("%w: TEXT_BASE_URL is not set", ErrTextModelUnavailable)
	}
	return nil
}

func (g *ollamaGenerator) GeneratePages(ctx context.Context, req model.StoryRequest) ([]string, error) {
	if err := g.Check(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, g.cfg.TextTimeout)
	defer cancel()

	userMsg := api.Message{Role: "user", Content: BuildStoryUserPrompt(req)}
	for _, photo := range fetchStoryPhotos(ctx, g.fetcher, req, g.log) {
		userMsg.Images = append(userMsg.Images, api.ImageData(photo.Data))
	}

	stream := false
	var content strings.Builder
	err := g.client.Chat(ctx, &api.ChatRequest{
		Model: g.cfg.TextModel,
		Messages: []api.Message{
			{Role: "system", Content: BuildStorySystemPrompt(req.StoryLengthTargetPages)},
			userMsg,
		},
		Stream: &stream,
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTextModelUnavailable, err)
	}
	observeTextTokensEstimate(BuildStoryUserPrompt(req), content.String())
	return parsePages(content.String(), req.StoryLengthTargetPages)
}
