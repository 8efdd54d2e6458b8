package ports

import (
	"context"
	"errors"

	"newshub/internal/domain"
)

// ErrDuplicate reports an insert that tripped the store's uniqueness
// backstop; the persistence gate treats it as "already exists".
var ErrDuplicate = errors.New("article already exists")

// Source pulls candidate articles for one category from an upstream
// provider. A source with absent credentials returns an empty slice, not
// an error; transport errors surface to the orchestrator, which logs them
// and keeps the run alive.
type Source interface {
	Name() string
	Fetch(ctx context.Context, category domain.Category, limit int) ([]domain.Article, error)
}

// FeedFetcher walks the configured feed list once per run; feeds carry
// their own category and are not scoped to the orchestrator's category
// loop.
type FeedFetcher interface {
	FetchAll(ctx context.Context, perFeedLimit int) ([]domain.Article, error)
}

// ListQuery filters and pages a stored-article read.
type ListQuery struct {
	Category    domain.Category
	Search      string
	MinPriority int
	Sort        string // "latest" (default) or "priority"
	Limit       int
	Offset      int
}

// ArticleStore persists articles with a (sourceUrl OR title) uniqueness
// backstop enforced by the store itself.
type ArticleStore interface {
	FindByIdentity(ctx context.Context, sourceURL, title string) (*domain.Article, error)
	Insert(ctx context.Context, article domain.Article) (domain.Article, error)
	List(ctx context.Context, query ListQuery) ([]domain.Article, error)
	ListUntranslated(ctx context.Context, limit int) ([]domain.Article, error)
	UpdateTranslation(ctx context.Context, article domain.Article) error
}

// Translator turns text into the target language. Implementations are
// best-effort: on any failure they return the input unchanged.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Scheduler controls when ingestion runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func()) error
	Stop(ctx context.Context) error
}
