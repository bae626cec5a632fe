package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/media"
	"storybook-server/internal/model"
)

func TestParsePages(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			name: "clean array",
			raw:  `["Page one.", "Page two.", "Page three."]`,
			want: 3,
		},
		{
			name: "markdown fenced",
			raw:  "```json\n[\"Page one.\", \"Page two.\"]\n```",
			want: 2,
		},
		{
			name: "surrounding whitespace",
			raw:  "  \n[\"One.\", \"Two.\", \"Three.\"]\n  ",
			want: 3,
		},
		{
			name:    "wrong count",
			raw:     `["Only one.", "And two."]`,
			want:    5,
			wantErr: true,
		},
		{
			name:    "not an array",
			raw:     `{"pages": ["One."]}`,
			want:    1,
			wantErr: true,
		},
		{
			name:    "empty page",
			raw:     `["One.", "   ", "Three."]`,
			want:    3,
			wantErr: true,
		},
		{
			name:    "prose instead of json",
			raw:     "Once upon a time there was a fox.",
			want:    3,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := parsePages(tt.raw, tt.want)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedStory)
				return
			}
			require.NoError(t, err)
			assert.Len(t, pages, tt.want)
		})
	}
}

// pngHeader is enough for content sniffing to recognize a PNG.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

// newChatCaptureServer fakes a chat completions endpoint, recording each
// request body and replying with a valid three-page story.
func newChatCaptureServer(t *testing.T, captured *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*captured = body
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"[\"One.\",\"Two.\",\"Three.\"]"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":30,"total_tokens":42}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func photoModeRequest(photoURLs ...string) model.StoryRequest {
	return model.StoryRequest{
		Characters: []model.Character{
			{Name: "Mila", IsMainCharacter: true, Gender: model.GenderFemale},
		},
		AgeRange:               "4-6",
		StoryPlotOption:        model.PlotFromPhotos,
		UploadedStoryPhotoURLs: photoURLs,
		StoryLengthTargetPages: 3,
	}
}

func photoModeConfig(chatURL string) *config.Config {
	return &config.Config{
		TextClientType: "openai",
		TextAPIKey:     "test-key",
		TextBaseURL:    chatURL + "/v1",
		TextModel:      "gpt-4o-mini",
		TextTimeout:    5 * time.Second,
	}
}

func TestOpenAIGenerator_PhotoModeSendsPhotosToModel(t *testing.T) {
	photoSrv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer photoSrv.Close()

	var captured []byte
	chatSrv := newChatCaptureServer(t, &captured)

	fetcher := media.NewFetcherWithClient(photoSrv.Client())
	g := newOpenAIGenerator(photoModeConfig(chatSrv.URL), fetcher, zap.NewNop())

	req := photoModeRequest(photoSrv.URL+"/moment-1.png", photoSrv.URL+"/moment-2.png")
	pages, err := g.GeneratePages(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, pages, 3)
	payload := string(captured)
	assert.Contains(t, payload, `"type":"text"`)
	assert.Contains(t, payload, `"type":"image_url"`)
	assert.Equal(t, 2, strings.Count(payload, "data:image/png;base64,"),
		"each uploaded photo should reach the model")
}

func TestOpenAIGenerator_UnreachablePhotoIsSkipped(t *testing.T) {
	var captured []byte
	chatSrv := newChatCaptureServer(t, &captured)

	g := newOpenAIGenerator(photoModeConfig(chatSrv.URL), media.NewFetcher(time.Second), zap.NewNop())

	// A plain-http URL is refused by the fetcher; the story should still
	// be written from the text prompt alone.
	req := photoModeRequest("http://dead.example.com/moment.png")
	pages, err := g.GeneratePages(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.NotContains(t, string(captured), "image_url")
}
