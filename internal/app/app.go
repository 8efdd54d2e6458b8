package app

import (
	"context"
	"fmt"
	"log/slog"

	"newshub/internal/config"
	"newshub/internal/domain"
	"newshub/internal/infrastructure/scheduler"
	"newshub/internal/infrastructure/source"
	"newshub/internal/infrastructure/storage"
	"newshub/internal/logging"
	"newshub/internal/retry"
	"newshub/internal/translate"
	"newshub/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	store    *storage.PostgresStore
	ingestor *usecase.Ingestor
	logger   *slog.Logger
}

// New builds a runnable application instance. The store connection is the
// one hard dependency; every provider is optional.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}

	headline := source.NewHeadlineAdapter(
		cfg.Headlines.APIKey,
		cfg.Headlines.Endpoint,
		cfg.Headlines.Country,
		baseLogger.With("component", "source.headline"),
	)

	retrier := retry.New(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay.Std(),
	}, baseLogger.With("component", "retry"))

	search := source.NewSearchAdapter(
		cfg.Search.APIKey,
		source.SearchOptions{
			Endpoint:   cfg.Search.Endpoint,
			Lang:       cfg.Search.Lang,
			QueryDelay: cfg.Search.QueryDelay.Std(),
			Keywords:   keywordMap(cfg.Search.Keywords),
		},
		retrier,
		source.NewImageEnricher(0),
		baseLogger.With("component", "source.search"),
	)

	feeds := source.NewFeedAdapter(feedList(cfg.Feeds), baseLogger.With("component", "source.feed"))

	var provider translate.Provider
	if cfg.Translation.APIKey != "" {
		provider = translate.NewGoogleClient(cfg.Translation.APIKey, cfg.Translation.TargetLang, cfg.Translation.Endpoint)
	}
	gate := translate.NewGate(provider, baseLogger.With("component", "translate"))

	ingestor := usecase.NewIngestor(usecase.IngestDeps{
		Headline:   headline,
		Search:     search,
		Feeds:      feeds,
		Store:      store,
		Translator: gate,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		store:    store,
		ingestor: ingestor,
		logger:   baseLogger,
	}, nil
}

// Ingestor exposes the pipeline for direct invocation.
func (a *Application) Ingestor() *usecase.Ingestor { return a.ingestor }

// RunOnce performs a single ingestion with config defaults.
func (a *Application) RunOnce(ctx context.Context) (domain.IngestResult, error) {
	return a.ingestor.Ingest(ctx, a.ingestOptions())
}

// RunForever starts the interval scheduler and blocks until the context
// is cancelled.
func (a *Application) RunForever(ctx context.Context) error {
	driver := scheduler.NewTickerScheduler(a.cfg.Ingest.Interval.Std())
	sched := usecase.NewScheduler(driver, a.ingestor, a.ingestOptions())
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *Application) ingestOptions() usecase.Options {
	opts := usecase.DefaultOptions()
	if a.cfg.Ingest.LimitPerCategory > 0 {
		opts.LimitPerCategory = a.cfg.Ingest.LimitPerCategory
	}
	if a.cfg.Ingest.FeedLimit > 0 {
		opts.FeedLimit = a.cfg.Ingest.FeedLimit
	}
	opts.IncludeFeeds = a.cfg.Ingest.IncludeFeedsOr(true)
	opts.IncludeSearch = a.cfg.Ingest.IncludeSearchOr(true)
	return opts
}

func keywordMap(raw map[string][]string) map[domain.Category][]string {
	if len(raw) == 0 {
		return nil
	}
	keywords := make(map[domain.Category][]string, len(raw))
	for category, list := range raw {
		keywords[domain.ParseCategory(category)] = list
	}
	return keywords
}

func feedList(raw []config.FeedConfig) []source.Feed {
	feeds := make([]source.Feed, 0, len(raw))
	for _, f := range raw {
		feeds = append(feeds, source.Feed{
			Category: domain.ParseCategory(f.Category),
			URL:      f.URL,
		})
	}
	return feeds
}
