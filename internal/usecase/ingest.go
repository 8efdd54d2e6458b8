package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"newshub/internal/domain"
	"newshub/internal/ports"
	"newshub/internal/translate"
)

const (
	defaultLimitPerCategory = 20
	defaultFeedLimit        = 8
	translateConcurrency    = 4
	backfillPause           = 100 * time.Millisecond
)

// Options select what one ingestion run covers.
type Options struct {
	Categories       []domain.Category
	LimitPerCategory int
	IncludeFeeds     bool
	IncludeSearch    bool
	FeedLimit        int
}

// DefaultOptions covers every fetchable category with all sources on.
func DefaultOptions() Options {
	return Options{
		Categories:       domain.FetchableCategories(),
		LimitPerCategory: defaultLimitPerCategory,
		IncludeFeeds:     true,
		IncludeSearch:    true,
		FeedLimit:        defaultFeedLimit,
	}
}

// IngestDeps wires the collaborators into the orchestration pipeline.
type IngestDeps struct {
	Headline   ports.Source
	Search     ports.Source
	Feeds      ports.FeedFetcher
	Store      ports.ArticleStore
	Translator ports.Translator
	Logger     *slog.Logger
	Now        func() time.Time
}

// Ingestor runs the adapters, translation gate, scoring, deduplication and
// persistence gate as one bounded batch.
type Ingestor struct {
	headline   ports.Source
	search     ports.Source
	feeds      ports.FeedFetcher
	store      ports.ArticleStore
	translator ports.Translator
	logger     *slog.Logger
	now        func() time.Time
}

// NewIngestor constructs the orchestration component.
func NewIngestor(deps IngestDeps) *Ingestor {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		headline:   deps.Headline,
		search:     deps.Search,
		feeds:      deps.Feeds,
		store:      deps.Store,
		translator: deps.Translator,
		logger:     deps.Logger,
		now:        now,
	}
}

// Ingest executes one pipeline run and returns its summary. Individual
// source failures degrade that source to zero results; only a failing
// store aborts the run.
func (p *Ingestor) Ingest(ctx context.Context, opts Options) (domain.IngestResult, error) {
	if len(opts.Categories) == 0 {
		opts.Categories = domain.FetchableCategories()
	}
	if opts.LimitPerCategory <= 0 {
		opts.LimitPerCategory = defaultLimitPerCategory
	}
	if opts.FeedLimit <= 0 {
		opts.FeedLimit = defaultFeedLimit
	}

	var collected []domain.Article
	for _, category := range opts.Categories {
		collected = append(collected, p.fetchFrom(ctx, p.headline, category, opts.LimitPerCategory)...)
		if opts.IncludeSearch {
			collected = append(collected, p.fetchFrom(ctx, p.search, category, opts.LimitPerCategory)...)
		}
	}

	if opts.IncludeFeeds && p.feeds != nil {
		feedArticles, err := p.feeds.FetchAll(ctx, opts.FeedLimit)
		if err != nil {
			p.warn("feed pass failed", "error", err)
		}
		collected = append(collected, feedArticles...)
	}

	collected = p.dropInvalid(collected)
	p.translateAll(ctx, collected)

	now := p.now()
	for i := range collected {
		collected[i].Priority = collected[i].ComputePriority(now)
		collected[i] = domain.ReclassifyDeveloper(collected[i], now)
	}

	deduped := domain.Dedupe(collected)
	p.debug("candidates ready", "collected", len(collected), "deduped", len(deduped))

	return p.persist(ctx, deduped)
}

// fetchFrom runs one source for one category, absorbing its failure.
func (p *Ingestor) fetchFrom(ctx context.Context, src ports.Source, category domain.Category, limit int) []domain.Article {
	if src == nil {
		return nil
	}
	articles, err := src.Fetch(ctx, category, limit)
	if err != nil {
		p.warn("source unavailable", "source", src.Name(), "category", string(category), "error", err)
		return articles
	}
	return articles
}

// dropInvalid rejects items without enough identity to dedupe or persist.
func (p *Ingestor) dropInvalid(articles []domain.Article) []domain.Article {
	valid := articles[:0]
	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		valid = append(valid, a)
	}
	return valid
}

// translateAll pushes every article's text fields through the translator
// gate, bounded to respect provider quotas. Articles whose title carries
// Korean script after the gate are flagged translated.
func (p *Ingestor) translateAll(ctx context.Context, articles []domain.Article) {
	if p.translator == nil {
		return
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(translateConcurrency)
	for i := range articles {
		i := i
		group.Go(func() error {
			articles[i] = p.translateOne(groupCtx, articles[i])
			return nil
		})
	}
	_ = group.Wait()
}

func (p *Ingestor) translateOne(ctx context.Context, a domain.Article) domain.Article {
	if title, err := p.translator.Translate(ctx, a.Title); err == nil && title != "" {
		a.Title = title
	}
	if a.Description != "" {
		if desc, err := p.translator.Translate(ctx, a.Description); err == nil && desc != "" {
			a.Description = desc
		}
	}
	if a.Content != "" {
		if content, err := p.translator.Translate(ctx, a.Content); err == nil && content != "" {
			a.Content = content
		}
	}
	a.Translated = translate.ContainsHangul(a.Title)
	return a
}

// persist runs the check-then-insert gate. The race with a concurrent run
// is accepted: the store's uniqueness constraint is the backstop, and a
// conflicting insert counts as a skip.
func (p *Ingestor) persist(ctx context.Context, candidates []domain.Article) (domain.IngestResult, error) {
	result := domain.IngestResult{Fetched: len(candidates)}

	for _, article := range candidates {
		existing, err := p.store.FindByIdentity(ctx, article.SourceURL, article.Title)
		if err != nil {
			return result, fmt.Errorf("ingestion failed: %w", err)
		}
		if existing != nil {
			result.Skipped++
			continue
		}

		if _, err := p.store.Insert(ctx, article); err != nil {
			if errors.Is(err, ports.ErrDuplicate) {
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("ingestion failed: %w", err)
		}
		result.Persisted++
	}
	return result, nil
}

func (p *Ingestor) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Ingestor) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
