package domain

import (
	"math"
	"time"
)

// Category is the closed set of news sections. Anything unrecognized
// degrades to CategoryGeneral at the adapter boundary.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryBusiness      Category = "business"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
	// CategoryDeveloper is derived-only: never requested from a provider,
	// only assigned by keyword re-classification.
	CategoryDeveloper Category = "developer"
)

// FetchableCategories lists the sections requested from upstream providers.
func FetchableCategories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryBusiness,
		CategoryEntertainment,
		CategoryHealth,
		CategoryScience,
		CategorySports,
		CategoryTechnology,
	}
}

var categoryWeights = map[Category]int{
	CategoryGeneral:       10,
	CategoryTechnology:    9,
	CategoryDeveloper:     9,
	CategoryBusiness:      8,
	CategoryScience:       7,
	CategoryHealth:        6,
	CategorySports:        5,
	CategoryEntertainment: 4,
}

// ParseCategory validates a raw category label.
func ParseCategory(raw string) Category {
	c := Category(raw)
	if _, ok := categoryWeights[c]; ok {
		return c
	}
	return CategoryGeneral
}

// Weight returns the fixed priority contribution of the category.
func (c Category) Weight() int {
	return categoryWeights[c]
}

// Article is the pipeline's central entity, normalized from any source.
// ID and CreatedAt are assigned by the store on persisted records.
type Article struct {
	ID          string
	Title       string
	Description string
	Content     string
	ImageURL    string
	SourceURL   string
	Source      string
	Author      string
	PublishedAt time.Time
	Category    Category
	Priority    int
	Translated  bool
	CreatedAt   time.Time
}

// IdentityKey is the dedupe and store-lookup key: source URL when present,
// otherwise the title.
func (a Article) IdentityKey() string {
	if a.SourceURL != "" {
		return a.SourceURL
	}
	return a.Title
}

// ComputePriority derives the ranking score from recency, category weight
// and image presence. Callers re-run it whenever PublishedAt, Category or
// ImageURL changes; it is never mutated after persistence.
func (a Article) ComputePriority(now time.Time) int {
	ageHours := now.Sub(a.PublishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	freshness := 100 - ageHours*4
	if freshness < 0 {
		freshness = 0
	}
	score := freshness + float64(a.Category.Weight())
	if a.ImageURL != "" {
		score += 3
	}
	return int(math.Round(score))
}

// Dedupe collapses candidates to one article per identity key,
// first-seen wins. Pure and in-memory; store-level duplicate detection
// is a separate, later step.
func Dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := a.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// IngestResult summarizes one pipeline run.
type IngestResult struct {
	Fetched   int
	Persisted int
	Skipped   int
}
