package source

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newshub/internal/normalize"
)

// metaImageSelectors are tried in order; the first non-empty hit wins.
var metaImageSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:image"]`, "content"},
	{`meta[name="twitter:image"]`, "content"},
	{`meta[name="twitter:image:src"]`, "content"},
	{`meta[itemprop="image"]`, "content"},
	{`meta[name="image"]`, "content"},
	{`link[rel="image_src"]`, "href"},
}

// ImageEnricher fetches an article's own page and pulls a preview image
// from common meta tags. Every failure mode yields "no image"; enrichment
// must never fail an item.
type ImageEnricher struct {
	client *http.Client
}

// NewImageEnricher uses a deliberately short timeout so a slow page cannot
// stall the run.
func NewImageEnricher(timeout time.Duration) *ImageEnricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ImageEnricher{client: &http.Client{Timeout: timeout}}
}

// PreviewImage returns an absolute image URL for the page, or an empty
// string when none could be extracted.
func (e *ImageEnricher) PreviewImage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "newshub/1.0")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	for _, candidate := range metaImageSelectors {
		if value, ok := doc.Find(candidate.selector).First().Attr(candidate.attr); ok {
			if resolved := normalize.ResolveURL(pageURL, value); resolved != "" {
				return resolved, nil
			}
		}
	}
	return "", nil
}
