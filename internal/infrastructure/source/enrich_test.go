package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewImagePrefersOpenGraph(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<meta name="twitter:image" content="https://cdn.example.com/tw.jpg">
			<meta property="og:image" content="https://cdn.example.com/og.jpg">
		</head><body></body></html>`))
	}))
	defer server.Close()

	enricher := NewImageEnricher(0)
	image, err := enricher.PreviewImage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/og.jpg", image)
}

func TestPreviewImageFallsBackThroughSelectors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><link rel="image_src" href="/media/preview.png"></head></html>`))
	}))
	defer server.Close()

	enricher := NewImageEnricher(0)
	image, err := enricher.PreviewImage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, server.URL+"/media/preview.png", image)
}

func TestPreviewImageEmptyWhenPageHasNone(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>bare</title></head><body>text</body></html>`))
	}))
	defer server.Close()

	enricher := NewImageEnricher(0)
	image, err := enricher.PreviewImage(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Empty(t, image)
}

func TestPreviewImageErrorsOnBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	enricher := NewImageEnricher(0)
	_, err := enricher.PreviewImage(context.Background(), server.URL)
	require.Error(t, err)
}
