package explore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"mediahub/pkg/models"
)

const (
	tmdbBase       = "https://api.themoviedb.org/3"
	tmdbPosterBase = "https://image.tmdb.org/t/p/w500"
)

// TMDB serves movie and TV series lookups. It needs a bearer token, so the
// constructor takes the key and callers skip the provider when it is empty.
type TMDB struct {
	Client *http.Client
	APIKey string
}

func NewTMDB(apiKey string) *TMDB {
	return &TMDB{
		Client: &http.Client{Timeout: 12 * time.Second},
		APIKey: apiKey,
	}
}

func (t *TMDB) Name() string { return "TMDB" }

func (t *TMDB) Supports(st SearchType) bool {
	return st == SearchMovie || st == SearchSeries
}

type tmdbPage[T any] struct {
	Results []T `json:"results"`
}

type tmdbMovie struct {
	ID          uint32   `json:"id"`
	Title       string   `json:"title"`
	VoteAverage *float64 `json:"vote_average"`
	PosterPath  *string  `json:"poster_path"`
	ReleaseDate string   `json:"release_date"`
}

type tmdbTV struct {
	ID           uint32   `json:"id"`
	Name         string   `json:"name"`
	VoteAverage  *float64 `json:"vote_average"`
	PosterPath   *string  `json:"poster_path"`
	FirstAirDate string   `json:"first_air_date"`
}

func (t *TMDB) Search(ctx context.Context, query string, st SearchType) ([]Result, error) {
	switch st {
	case SearchMovie:
		return t.searchMovies(ctx, query)
	case SearchSeries:
		return t.searchTV(ctx, query)
	default:
		return nil, nil
	}
}

func (t *TMDB) get(ctx context.Context, path, query string) ([]byte, error) {
	u, _ := url.Parse(tmdbBase + path)
	q := u.Query()
	q.Set("query", query)
	q.Set("include_adult", "false")
	q.Set("language", "en-US")
	q.Set("page", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tmdb: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func (t *TMDB) searchMovies(ctx context.Context, query string) ([]Result, error) {
	body, err := t.get(ctx, "/search/movie", query)
	if err != nil {
		return nil, err
	}

	var page tmdbPage[tmdbMovie]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("tmdb: decode: %w", err)
	}

	results := make([]Result, 0, 10)
	for i, m := range page.Results {
		if i >= 10 {
			break
		}
		r := Result{
			Title:       m.Title,
			Kind:        models.NewMovie(models.PlanToWatch),
			Source:      "tmdb",
			FormatLabel: fmt.Sprintf("Movie (%s)", yearOf(m.ReleaseDate)),
		}
		id := m.ID
		r.ExternalID = &id
		r.GlobalScore = voteToScore(m.VoteAverage)
		if m.PosterPath != nil {
			p := tmdbPosterBase + *m.PosterPath
			r.PosterURL = &p
		}
		results = append(results, r)
	}
	return results, nil
}

func (t *TMDB) searchTV(ctx context.Context, query string) ([]Result, error) {
	body, err := t.get(ctx, "/search/tv", query)
	if err != nil {
		return nil, err
	}

	var page tmdbPage[tmdbTV]
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("tmdb: decode: %w", err)
	}

	results := make([]Result, 0, 10)
	for i, tv := range page.Results {
		if i >= 10 {
			break
		}
		r := Result{
			Title:       tv.Name,
			Kind:        models.NewSeries(models.Progress{}, models.PlanToWatch),
			Source:      "tmdb",
			FormatLabel: fmt.Sprintf("TV Series (%s)", yearOf(tv.FirstAirDate)),
		}
		id := tv.ID
		r.ExternalID = &id
		r.GlobalScore = voteToScore(tv.VoteAverage)
		if tv.PosterPath != nil {
			p := tmdbPosterBase + *tv.PosterPath
			r.PosterURL = &p
		}
		results = append(results, r)
	}
	return results, nil
}

// voteToScore maps TMDB's vote_average 0.0-10.0 onto the stored 0-100 scale.
func voteToScore(vote *float64) *uint8 {
	if vote == nil || *vote <= 0 {
		return nil
	}
	s := uint8(math.Round(math.Min(math.Max(*vote, 0), 10) * 10))
	return &s
}

func yearOf(date string) string {
	if len(date) < 4 {
		return "?"
	}
	return date[:4]
}
