package source

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newshub/internal/domain"
	"newshub/internal/normalize"
	"newshub/internal/ports"
)

// Feed pairs a category with the URL serving it.
type Feed struct {
	Category domain.Category
	URL      string
}

// DefaultFeeds is the stock feed list; deployments override it in config.
func DefaultFeeds() []Feed {
	return []Feed{
		{Category: domain.CategoryTechnology, URL: "https://www.techmeme.com/feed.xml"},
		{Category: domain.CategoryBusiness, URL: "https://feeds.bbci.co.uk/news/business/rss.xml"},
		{Category: domain.CategoryScience, URL: "https://www.sciencemag.org/rss/news_current.xml"},
		{Category: domain.CategoryGeneral, URL: "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"},
	}
}

// FeedAdapter consumes RSS 2.0 and Atom feeds through gofeed, which folds
// both <item> and <entry> shapes into one item type.
type FeedAdapter struct {
	feeds  []Feed
	parser *gofeed.Parser
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.FeedFetcher = (*FeedAdapter)(nil)

// NewFeedAdapter builds the adapter over the configured feed list.
func NewFeedAdapter(feeds []Feed, logger *slog.Logger) *FeedAdapter {
	if len(feeds) == 0 {
		feeds = DefaultFeeds()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "newshub/1.0"
	return &FeedAdapter{
		feeds:  feeds,
		parser: parser,
		logger: logger,
		now:    time.Now,
	}
}

// FetchAll walks every configured feed once, truncating each to
// perFeedLimit items. A feed that fails to fetch or parse is skipped with
// a warning and never aborts the pass.
func (f *FeedAdapter) FetchAll(ctx context.Context, perFeedLimit int) ([]domain.Article, error) {
	if perFeedLimit <= 0 {
		perFeedLimit = 8
	}

	var aggregated []domain.Article
	for _, feed := range f.feeds {
		parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			f.warn("feed skipped", "url", feed.URL, "error", err)
			continue
		}

		items := parsed.Items
		if len(items) > perFeedLimit {
			items = items[:perFeedLimit]
		}
		for _, item := range items {
			if article, ok := f.normalizeItem(item, feed); ok {
				aggregated = append(aggregated, article)
			}
		}
	}
	return aggregated, nil
}

// normalizeItem maps one feed entry onto the pipeline schema. Entries
// without a resolvable link or a title are dropped.
func (f *FeedAdapter) normalizeItem(item *gofeed.Item, feed Feed) (domain.Article, bool) {
	title := normalize.Line(item.Title)
	link := strings.TrimSpace(item.Link)
	if link == "" {
		link = strings.TrimSpace(item.GUID)
	}
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	publishedAt := f.now()
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	return domain.Article{
		Title:       title,
		Description: normalize.Line(item.Description),
		Content:     normalize.Text(content),
		ImageURL:    normalize.ResolveURL(link, feedImage(item)),
		SourceURL:   link,
		Source:      feedSource(item, link),
		Author:      feedAuthor(item),
		PublishedAt: publishedAt,
		Category:    feed.Category,
	}, true
}

// feedImage prefers the item image, then image-typed enclosures, then the
// media extension carried by many news feeds.
func feedImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc.URL != "" && (enc.Type == "" || strings.HasPrefix(enc.Type, "image/")) {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, ext := range media["content"] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
		for _, ext := range media["thumbnail"] {
			if u := ext.Attrs["url"]; u != "" {
				return u
			}
		}
	}
	return ""
}

func feedAuthor(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return normalize.Line(item.Author.Name)
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		return normalize.Line(item.DublinCoreExt.Creator[0])
	}
	return ""
}

// feedSource labels the article with the item's declared source element
// when present, else the link's host.
func feedSource(item *gofeed.Item, link string) string {
	if item.Custom != nil {
		if s := normalize.Line(item.Custom["source"]); s != "" {
			return s
		}
	}
	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return "rss"
	}
	return parsed.Host
}

func (f *FeedAdapter) warn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
