// Package storage implements the article record store on Postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"newshub/internal/domain"
	"newshub/internal/ports"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const articleColumns = "id, title, description, content, image_url, source_url, source, author, published_at, category, priority, is_translated, created_at"

// PostgresStore persists articles with (source_url OR title) uniqueness
// enforced by the schema.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*PostgresStore)(nil)

// Open connects through the pgx stdlib driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing handle (used by tests).
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// FindByIdentity looks an article up by source URL or title. A miss
// returns (nil, nil); errors mean the store itself is unavailable.
func (s *PostgresStore) FindByIdentity(ctx context.Context, sourceURL, title string) (*domain.Article, error) {
	query, args, err := identityQuery(sourceURL, title)
	if err != nil {
		return nil, fmt.Errorf("build identity query: %w", err)
	}

	article, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by identity: %w", err)
	}
	return &article, nil
}

// Insert writes one article and returns it with store-assigned fields. A
// concurrent duplicate surfaces as ErrDuplicate.
func (s *PostgresStore) Insert(ctx context.Context, article domain.Article) (domain.Article, error) {
	query, args, err := psql.
		Insert("news").
		Columns("title", "description", "content", "image_url", "source_url",
			"source", "author", "published_at", "category", "priority", "is_translated").
		Values(article.Title, nullable(article.Description), nullable(article.Content),
			nullable(article.ImageURL), nullable(article.SourceURL), article.Source,
			nullable(article.Author), article.PublishedAt, string(article.Category),
			article.Priority, article.Translated).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build insert: %w", err)
	}

	err = s.db.QueryRowContext(ctx, query, args...).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Article{}, ports.ErrDuplicate
		}
		return domain.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return article, nil
}

func identityQuery(sourceURL, title string) (string, []any, error) {
	identity := sq.Or{sq.Eq{"title": title}}
	if sourceURL != "" {
		identity = append(identity, sq.Eq{"source_url": sourceURL})
	}
	return psql.
		Select(articleColumns).
		From("news").
		Where(identity).
		Limit(1).
		ToSql()
}

// List reads stored articles with the query's filters, sort and paging.
func (s *PostgresStore) List(ctx context.Context, q ports.ListQuery) ([]domain.Article, error) {
	query, args, err := listQuery(q)
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

func listQuery(q ports.ListQuery) (string, []any, error) {
	builder := psql.Select(articleColumns).From("news")

	if q.Category != "" {
		builder = builder.Where(sq.Eq{"category": string(q.Category)})
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"content": pattern},
		})
	}
	if q.MinPriority > 0 {
		builder = builder.Where(sq.GtOrEq{"priority": q.MinPriority})
	}

	if q.Sort == "priority" {
		builder = builder.OrderBy("priority DESC", "published_at DESC")
	} else {
		builder = builder.OrderBy("published_at DESC")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 12
	}
	builder = builder.Limit(uint64(limit))
	if q.Offset > 0 {
		builder = builder.Offset(uint64(q.Offset))
	}

	return builder.ToSql()
}

// ListUntranslated returns articles awaiting the translation backfill.
func (s *PostgresStore) ListUntranslated(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		limit = 50
	}
	query, args, err := psql.
		Select(articleColumns).
		From("news").
		Where(sq.Eq{"is_translated": false}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build untranslated query: %w", err)
	}
	return s.queryArticles(ctx, query, args...)
}

// UpdateTranslation stores translated text fields and flags the row done.
func (s *PostgresStore) UpdateTranslation(ctx context.Context, article domain.Article) error {
	query, args, err := psql.
		Update("news").
		Set("title", article.Title).
		Set("description", nullable(article.Description)).
		Set("content", nullable(article.Content)).
		Set("is_translated", true).
		Where(sq.Eq{"id": article.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build translation update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update translation: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryArticles(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article     domain.Article
		description sql.NullString
		content     sql.NullString
		imageURL    sql.NullString
		sourceURL   sql.NullString
		author      sql.NullString
		category    string
		publishedAt time.Time
	)
	err := row.Scan(&article.ID, &article.Title, &description, &content,
		&imageURL, &sourceURL, &article.Source, &author, &publishedAt,
		&category, &article.Priority, &article.Translated, &article.CreatedAt)
	if err != nil {
		return domain.Article{}, err
	}
	article.Description = description.String
	article.Content = content.String
	article.ImageURL = imageURL.String
	article.SourceURL = sourceURL.String
	article.Author = author.String
	article.PublishedAt = publishedAt
	article.Category = domain.ParseCategory(category)
	return article, nil
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
