package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for http.DetectContentType to recognize a PNG.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func newTLSImageServer(t *testing.T, status int, contentType string, body []byte) (*httptest.Server, *Fetcher) {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(5 * time.Second)
	f.client = srv.Client()
	return srv, f
}

func TestFetch_Success(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusOK, "image/png", pngHeader)

	img, err := f.Fetch(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, pngHeader, img.Data)
}

func TestFetch_ContentTypeWithCharsetParameter(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusOK, "image/jpeg; charset=binary", []byte{0xFF, 0xD8, 0xFF, 0x00})

	img, err := f.Fetch(context.Background(), srv.URL+"/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestFetch_SniffsMissingContentType(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusOK, "application/octet-stream", pngHeader)

	img, err := f.Fetch(context.Background(), srv.URL+"/photo")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestFetch_FallsBackToURLExtension(t *testing.T) {
	// Bytes no sniffer recognizes, from a host that sends no useful header.
	srv, f := newTLSImageServer(t, http.StatusOK, "application/octet-stream", []byte{0x01, 0x02, 0x03, 0x04})

	img, err := f.Fetch(context.Background(), srv.URL+"/photos/moment.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
}

func TestFetch_ExtensionFallbackStillRejectsNonImage(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusOK, "application/octet-stream", []byte{0x01, 0x02, 0x03, 0x04})

	_, err := f.Fetch(context.Background(), srv.URL+"/notes.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_RejectsNonImage(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusOK, "text/html", []byte("<html></html>"))

	_, err := f.Fetch(context.Background(), srv.URL+"/page.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_RejectsPlainHTTP(t *testing.T) {
	f := NewFetcher(time.Second)
	_, err := f.Fetch(context.Background(), "http://example.com/photo.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.True(t, strings.Contains(err.Error(), "https"))
}

func TestFetch_Non200Status(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusNotFound, "image/png", nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_EmptyBody(t *testing.T) {
	srv, f := newTLSImageServer(t, http.StatusOK, "image/png", nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/empty.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
}
