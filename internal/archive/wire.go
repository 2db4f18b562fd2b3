package archive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"mediahub/internal/explore"
	"mediahub/pkg/models"
)

// APIMediaItem is the flat JSON shape the frontend sends and receives.
// Optional fields are omitted entirely when absent, never emitted as null.
type APIMediaItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	MediaType     string   `json:"media_type"`
	Status        string   `json:"status"`
	Score         *float64 `json:"score,omitempty"`
	GlobalScore   *float64 `json:"global_score,omitempty"`
	Progress      uint32   `json:"progress"`
	TotalEpisodes *uint32  `json:"total_episodes,omitempty"`
	PosterURL     *string  `json:"poster_url,omitempty"`
	Source        *string  `json:"source,omitempty"`
	ExternalID    *string  `json:"external_id,omitempty"`
	Tags          []string `json:"tags"`
	Favorite      bool     `json:"favorite"`
}

// FromMediaItem flattens a domain item for the API.
//
// The "anime" vs "series" label is presentation only: a series sourced from
// AniList is shown as anime, everything else as series. It is re-derived on
// every outbound mapping and does not round-trip.
func FromMediaItem(item *models.MediaItem) APIMediaItem {
	var (
		mediaType string
		status    string
		progress  uint32
		total     *uint32
	)

	switch item.Kind.Tag() {
	case models.KindMovie:
		ws, _ := item.Kind.WatchStatus()
		mediaType = "movie"
		status = string(ws)
	case models.KindSeries:
		ws, _ := item.Kind.WatchStatus()
		p, _ := item.Kind.Progress()
		mediaType = "series"
		if item.Source != nil && *item.Source == "anilist" {
			mediaType = "anime"
		}
		status = string(ws)
		progress = p.Current
		total = copyU32(p.Total)
	case models.KindReadable:
		rk, _ := item.Kind.Readable()
		rs, _ := item.Kind.ReadStatus()
		p, _ := item.Kind.Progress()
		mediaType = string(rk)
		status = string(rs)
		progress = p.Current
		total = copyU32(p.Total)
	}

	out := APIMediaItem{
		ID:            item.ID.String(),
		Title:         item.Title,
		MediaType:     mediaType,
		Status:        status,
		Progress:      progress,
		TotalEpisodes: total,
		PosterURL:     item.PosterURL,
		Source:        item.Source,
		Tags:          item.Tags.Sorted(),
		Favorite:      item.Tags.Has(models.FavoriteTag),
	}

	if s, ok := item.ScoreDisplay(); ok {
		out.Score = &s
	}
	if g, ok := item.GlobalScoreDisplay(); ok {
		out.GlobalScore = &g
	}
	if item.ExternalID != nil {
		e := strconv.FormatUint(uint64(*item.ExternalID), 10)
		out.ExternalID = &e
	}

	return out
}

// ToMediaItem rebuilds a domain item from the flat shape. An empty id means
// "generate a fresh one" (create requests); a non-empty id must parse.
// Unknown media_type is a hard failure, unknown status falls back to the
// kind's plan state.
func (a APIMediaItem) ToMediaItem() (models.MediaItem, error) {
	if strings.TrimSpace(a.Title) == "" {
		return models.MediaItem{}, fmt.Errorf("title is required")
	}

	id := uuid.New()
	if a.ID != "" {
		parsed, err := uuid.Parse(a.ID)
		if err != nil {
			return models.MediaItem{}, &InvalidIDError{Value: a.ID}
		}
		id = parsed
	}

	progress := models.Progress{Current: a.Progress, Total: copyU32(a.TotalEpisodes)}

	var kind models.MediaKind
	switch a.MediaType {
	case "movie":
		kind = models.NewMovie(models.ParseWatchStatus(a.Status))
	case "series", "anime":
		// the distinction is re-derived from source on the way out
		kind = models.NewSeries(progress, models.ParseWatchStatus(a.Status))
	case "book", "web_novel", "light_novel", "manga", "manhwa", "webtoon":
		kind = models.NewReadable(
			models.ReadableKind(a.MediaType),
			progress,
			models.ParseReadStatus(a.Status),
		)
	default:
		return models.MediaItem{}, &UnknownMediaTypeError{Value: a.MediaType}
	}

	tags := models.NewTags(a.Tags...)
	if a.Favorite {
		tags.Add(models.FavoriteTag)
	}

	item := models.MediaItem{
		ID:        id,
		Title:     a.Title,
		Kind:      kind,
		PosterURL: a.PosterURL,
		Source:    a.Source,
		Tags:      tags,
	}

	if a.ExternalID != nil {
		if n, err := strconv.ParseUint(*a.ExternalID, 10, 32); err == nil {
			e := uint32(n)
			item.ExternalID = &e
		}
	}
	if a.Score != nil {
		item.SetScore(*a.Score)
	}
	if a.GlobalScore != nil {
		item.SetGlobalScore(*a.GlobalScore)
	}

	return item, nil
}

// copyU32 detaches an optional counter so the wire shape and the domain
// item never share a pointer across the boundary.
func copyU32(v *uint32) *uint32 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// APIExploreImport asks the server to re-run an external search and archive
// the hit at the given index.
type APIExploreImport struct {
	Query string `json:"query"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// APIExploreResult is the flat shape for one external search hit.
type APIExploreResult struct {
	Title         string   `json:"title"`
	MediaType     string   `json:"media_type"`
	GlobalScore   *float64 `json:"global_score,omitempty"`
	ExternalID    *string  `json:"external_id,omitempty"`
	PosterURL     *string  `json:"poster_url,omitempty"`
	Source        string   `json:"source"`
	TotalEpisodes *uint32  `json:"total_episodes,omitempty"`
	FormatLabel   string   `json:"format_label"`
}

// FromExploreResult flattens a normalized provider hit, applying the same
// anime/series source disambiguation as FromMediaItem.
func FromExploreResult(r explore.Result) APIExploreResult {
	var (
		mediaType string
		total     *uint32
	)

	switch r.Kind.Tag() {
	case models.KindMovie:
		mediaType = "movie"
	case models.KindSeries:
		mediaType = "series"
		if r.Source == "anilist" {
			mediaType = "anime"
		}
		p, _ := r.Kind.Progress()
		total = copyU32(p.Total)
	case models.KindReadable:
		rk, _ := r.Kind.Readable()
		mediaType = string(rk)
		p, _ := r.Kind.Progress()
		total = copyU32(p.Total)
	}

	out := APIExploreResult{
		Title:         r.Title,
		MediaType:     mediaType,
		PosterURL:     r.PosterURL,
		Source:        r.Source,
		TotalEpisodes: total,
		FormatLabel:   r.FormatLabel,
	}

	if r.GlobalScore != nil {
		s := models.DecodeScore(*r.GlobalScore)
		out.GlobalScore = &s
	}
	if r.ExternalID != nil {
		e := strconv.FormatUint(uint64(*r.ExternalID), 10)
		out.ExternalID = &e
	}

	return out
}

// APIStats is the aggregate view for the dashboard.
type APIStats struct {
	Total       int `json:"total"`
	Watching    int `json:"watching"`
	Completed   int `json:"completed"`
	PlanToWatch int `json:"plan_to_watch"`
	OnHold      int `json:"on_hold"`
	Dropped     int `json:"dropped"`
	Movies      int `json:"movies"`
	Series      int `json:"series"`
	Anime       int `json:"anime"`
	Readable    int `json:"readable"`
}

// StatsFromItems tallies flattened items; watching/reading and the two plan
// states are counted together.
func StatsFromItems(items []APIMediaItem) APIStats {
	stats := APIStats{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case "watching", "reading":
			stats.Watching++
		case "completed":
			stats.Completed++
		case "plan_to_watch", "plan_to_read":
			stats.PlanToWatch++
		case "on_hold":
			stats.OnHold++
		case "dropped":
			stats.Dropped++
		}
		switch item.MediaType {
		case "movie":
			stats.Movies++
		case "series":
			stats.Series++
		case "anime":
			stats.Anime++
		default:
			stats.Readable++
		}
	}
	return stats
}
