package explore

import (
	"context"

	"mediahub/pkg/models"
)

// SearchType selects which external catalogs a query is routed to.
type SearchType string

const (
	SearchAnime      SearchType = "anime"
	SearchManga      SearchType = "manga"
	SearchLightNovel SearchType = "light_novel"
	SearchMovie      SearchType = "movie"
	SearchSeries     SearchType = "series"
	SearchBook       SearchType = "book"
)

// ParseSearchType maps the query-string value; anime is the default.
func ParseSearchType(s string) SearchType {
	switch s {
	case "movie":
		return SearchMovie
	case "series":
		return SearchSeries
	case "manga":
		return SearchManga
	case "book":
		return SearchBook
	case "light_novel":
		return SearchLightNovel
	default:
		return SearchAnime
	}
}

// Result is the normalized shape every provider maps its responses into.
// Kind carries zeroed current progress; the total (episodes, chapters,
// pages) is filled in when the catalog knows it. ExternalID is absent for
// providers with non-numeric identifiers. FormatLabel is free text for
// display only.
type Result struct {
	Title       string
	Kind        models.MediaKind
	GlobalScore *uint8
	ExternalID  *uint32
	PosterURL   *string
	Source      string
	FormatLabel string
}

// MediaItem imports the result as a fresh archive entry.
func (r Result) MediaItem() models.MediaItem {
	item := models.NewMediaItem(r.Title, r.Kind)
	item.GlobalScore = r.GlobalScore
	item.ExternalID = r.ExternalID
	item.PosterURL = r.PosterURL
	src := r.Source
	item.Source = &src
	return item
}

// Provider is implemented by each external catalog client.
type Provider interface {
	Name() string
	Supports(t SearchType) bool
	Search(ctx context.Context, query string, t SearchType) ([]Result, error)
}
