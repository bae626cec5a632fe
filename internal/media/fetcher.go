package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrFetchFailed marks any failure to retrieve a remote image.
var ErrFetchFailed = errors.New("image fetch failed")

// maxImageBytes caps a single downloaded reference photo.
const maxImageBytes = 10 << 20

// Image is a fetched remote image with its detected content type.
type Image struct {
	Data     []byte
	MIMEType string
}

// Fetcher downloads user-uploaded reference photos over HTTPS.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// NewFetcherWithClient is for callers that need to control transport
// behavior, such as custom TLS configuration.
func NewFetcherWithClient(client *http.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves one image. Only https URLs and image content types are
// accepted; anything else is a hard error rather than a silently bad
// model input.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("%w: not an https URL", ErrFetchFailed)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrFetchFailed, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrFetchFailed)
	}

	ctype := resp.Header.Get("Content-Type")
	if idx := strings.IndexByte(ctype, ';'); idx >= 0 {
		ctype = ctype[:idx]
	}
	ctype = strings.TrimSpace(ctype)
	if !strings.HasPrefix(ctype, "image/") {
		ctype = http.DetectContentType(data)
	}
	if !strings.HasPrefix(ctype, "image/") {
		ctype = typeFromExtension(rawURL)
	}
	if !strings.HasPrefix(ctype, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrFetchFailed, ctype)
	}
	return &Image{Data: data, MIMEType: ctype}, nil
}

// typeFromExtension guesses a content type from the URL path extension, for
// hosts that serve images without a usable Content-Type header.
func typeFromExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ctype := mime.TypeByExtension(path.Ext(u.Path))
	if idx := strings.IndexByte(ctype, ';'); idx >= 0 {
		ctype = ctype[:idx]
	}
	return ctype
}
