// Package source holds the provider adapters feeding the ingestion
// pipeline with normalized candidates.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"newshub/internal/domain"
	"newshub/internal/normalize"
	"newshub/internal/ports"
)

const (
	defaultHeadlineEndpoint = "https://newsapi.org/v2/top-headlines"
	defaultHeadlineCountry  = "kr"
)

// HeadlineAdapter fetches per-category top headlines from NewsAPI.
type HeadlineAdapter struct {
	endpoint string
	apiKey   string
	country  string
	client   *http.Client
	logger   *slog.Logger
	warnOnce sync.Once
	now      func() time.Time
}

var _ ports.Source = (*HeadlineAdapter)(nil)

// NewHeadlineAdapter builds the adapter; empty endpoint/country pick the
// NewsAPI defaults for the Korean market.
func NewHeadlineAdapter(apiKey, endpoint, country string, logger *slog.Logger) *HeadlineAdapter {
	if endpoint == "" {
		endpoint = defaultHeadlineEndpoint
	}
	if country == "" {
		country = defaultHeadlineCountry
	}
	return &HeadlineAdapter{
		endpoint: endpoint,
		apiKey:   apiKey,
		country:  country,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		now:      time.Now,
	}
}

// Name identifies the adapter in logs and wiring.
func (h *HeadlineAdapter) Name() string { return "headline" }

type headlineResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Author      string `json:"author"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
	} `json:"articles"`
}

// Fetch issues one top-headlines request for the category. An absent API
// key yields an empty result with a single warning, never an error.
func (h *HeadlineAdapter) Fetch(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error) {
	if h.apiKey == "" {
		h.warnOnce.Do(func() {
			if h.logger != nil {
				h.logger.Warn("headline api key absent, skipping top headlines")
			}
		})
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	endpoint, err := url.Parse(h.endpoint)
	if err != nil {
		return nil, fmt.Errorf("headline endpoint: %w", err)
	}
	query := endpoint.Query()
	query.Set("apiKey", h.apiKey)
	query.Set("country", h.country)
	query.Set("category", string(category))
	query.Set("pageSize", strconv.Itoa(limit))
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned %s", resp.Status)
	}

	var decoded headlineResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode headlines: %w", err)
	}

	now := h.now()
	articles := make([]domain.Article, 0, len(decoded.Articles))
	for _, item := range decoded.Articles {
		title := normalize.Line(item.Title)
		sourceURL := strings.TrimSpace(item.URL)
		if title == "" || sourceURL == "" {
			continue
		}

		publishedAt := now
		if parsed, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			publishedAt = parsed
		}

		sourceName := normalize.Line(item.Source.Name)
		if sourceName == "" {
			sourceName = "NewsAPI"
		}

		articles = append(articles, domain.Article{
			Title:       title,
			Description: normalize.Line(item.Description),
			Content:     normalize.Text(item.Content),
			ImageURL:    normalize.ResolveURL(sourceURL, item.URLToImage),
			SourceURL:   sourceURL,
			Source:      sourceName,
			Author:      normalize.Line(item.Author),
			PublishedAt: publishedAt,
			Category:    category,
		})
	}
	return articles, nil
}
