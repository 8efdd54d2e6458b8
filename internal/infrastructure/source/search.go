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
	"time"

	"golang.org/x/sync/errgroup"

	"newshub/internal/domain"
	"newshub/internal/normalize"
	"newshub/internal/ports"
	"newshub/internal/retry"
)

const (
	defaultSearchEndpoint   = "https://gnews.io/api/v4/search"
	defaultQueryDelay       = 1200 * time.Millisecond
	defaultEnrichConcurrent = 4
)

// defaultKeywords maps each fetchable category onto the provider query
// terms issued for it.
var defaultKeywords = map[domain.Category][]string{
	domain.CategoryGeneral:       {"korea", "world", "breaking news"},
	domain.CategoryBusiness:      {"finance", "business", "stocks"},
	domain.CategoryEntertainment: {"entertainment", "celebrity", "k-pop"},
	domain.CategoryHealth:        {"health", "medicine", "wellness"},
	domain.CategoryScience:       {"science", "research", "space"},
	domain.CategorySports:        {"sports", "football", "baseball"},
	domain.CategoryTechnology:    {"technology", "ai", "startup"},
}

// SearchAdapter issues keyword queries against the quota-limited GNews
// API. Queries for one category are intentionally serialized with a
// polite delay; the retry controller sits in each query's call path.
type SearchAdapter struct {
	endpoint   string
	apiKey     string
	lang       string
	client     *http.Client
	retrier    *retry.Controller
	enricher   *ImageEnricher
	keywords   map[domain.Category][]string
	queryDelay time.Duration
	logger     *slog.Logger
	sleep      func(context.Context, time.Duration) error
}

var _ ports.Source = (*SearchAdapter)(nil)

// SearchOptions tune the adapter; zero values pick defaults.
type SearchOptions struct {
	Endpoint   string
	Lang       string
	QueryDelay time.Duration
	Keywords   map[domain.Category][]string
}

// NewSearchAdapter wires the retry controller and enrichment fetcher.
func NewSearchAdapter(apiKey string, opts SearchOptions, retrier *retry.Controller, enricher *ImageEnricher, logger *slog.Logger) *SearchAdapter {
	if opts.Endpoint == "" {
		opts.Endpoint = defaultSearchEndpoint
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.QueryDelay <= 0 {
		opts.QueryDelay = defaultQueryDelay
	}
	if opts.Keywords == nil {
		opts.Keywords = defaultKeywords
	}
	if retrier == nil {
		retrier = retry.New(retry.DefaultConfig(), logger)
	}
	return &SearchAdapter{
		endpoint:   opts.Endpoint,
		apiKey:     apiKey,
		lang:       opts.Lang,
		client:     &http.Client{Timeout: 10 * time.Second},
		retrier:    retrier,
		enricher:   enricher,
		keywords:   opts.Keywords,
		queryDelay: opts.QueryDelay,
		logger:     logger,
		sleep:      sleepCtx,
	}
}

// Name identifies the adapter in logs and wiring.
func (s *SearchAdapter) Name() string { return "search" }

type searchResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch runs the category's keyword list, splitting the limit across
// queries. A query that exhausts its retries contributes nothing; the
// category is never aborted by one bad query.
func (s *SearchAdapter) Fetch(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error) {
	if s.apiKey == "" {
		return nil, nil
	}
	keywords := s.keywords[category]
	if len(keywords) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	perQuery := limit / len(keywords)
	if perQuery < 1 {
		perQuery = 1
	}

	var collected []domain.Article
	for i, keyword := range keywords {
		if i > 0 {
			if err := s.sleep(ctx, s.queryDelay); err != nil {
				return collected, err
			}
		}

		var result *searchResponse
		err := s.retrier.Do(ctx, func(ctx context.Context) error {
			r, qErr := s.query(ctx, keyword, perQuery)
			if qErr != nil {
				return qErr
			}
			result = r
			return nil
		})
		if err != nil {
			s.warn("search query yielded nothing", "keyword", keyword, "error", err)
			continue
		}

		collected = append(collected, s.normalizeItems(result, category)...)
	}

	s.enrichImages(ctx, collected)
	return collected, nil
}

// query performs one provider request. A 429 surfaces as
// *retry.RateLimitedError so the controller can honor the hint header.
func (s *SearchAdapter) query(ctx context.Context, keyword string, max int) (*searchResponse, error) {
	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("search endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("q", keyword)
	q.Set("lang", s.lang)
	q.Set("max", strconv.Itoa(max))
	q.Set("token", s.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retry.RateLimitedError{Hint: resp.Header.Get("Retry-After")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &decoded, nil
}

func (s *SearchAdapter) normalizeItems(resp *searchResponse, category domain.Category) []domain.Article {
	if resp == nil {
		return nil
	}
	now := time.Now()
	articles := make([]domain.Article, 0, len(resp.Articles))
	for _, item := range resp.Articles {
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
			sourceName = hostOf(sourceURL)
		}

		articles = append(articles, domain.Article{
			Title:       title,
			Description: normalize.Line(item.Description),
			Content:     normalize.Text(item.Content),
			ImageURL:    normalize.ResolveURL(sourceURL, item.Image),
			SourceURL:   sourceURL,
			Source:      sourceName,
			PublishedAt: publishedAt,
			Category:    category,
		})
	}
	return articles
}

// enrichImages fills missing preview images by fetching the article pages
// concurrently. Failures are swallowed: the item simply stays imageless.
func (s *SearchAdapter) enrichImages(ctx context.Context, articles []domain.Article) {
	if s.enricher == nil {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(defaultEnrichConcurrent)
	for i := range articles {
		if articles[i].ImageURL != "" {
			continue
		}
		i := i
		group.Go(func() error {
			image, err := s.enricher.PreviewImage(groupCtx, articles[i].SourceURL)
			if err != nil {
				s.debug("image enrichment failed", "url", articles[i].SourceURL, "error", err)
				return nil
			}
			articles[i].ImageURL = image
			return nil
		})
	}
	_ = group.Wait()
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return "unknown"
	}
	return parsed.Host
}

func (s *SearchAdapter) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *SearchAdapter) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
