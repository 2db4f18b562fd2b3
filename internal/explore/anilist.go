package explore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediahub/pkg/models"
)

const anilistURL = "https://graphql.anilist.co"

const anilistQuery = `
query ($search: String, $type: MediaType, $format: MediaFormat) {
  Page(perPage: 10) {
    media(search: $search, type: $type, format: $format, sort: SEARCH_MATCH) {
      id
      title {
        romaji
        english
      }
      episodes
      chapters
      meanScore
      coverImage {
        large
      }
      format
      countryOfOrigin
    }
  }
}
`

// AniList serves anime, manga, manhwa and light novel lookups over the
// public GraphQL endpoint.
type AniList struct {
	Client *http.Client
}

func NewAniList() *AniList {
	return &AniList{
		Client: &http.Client{Timeout: 12 * time.Second},
	}
}

func (a *AniList) Name() string { return "AniList" }

func (a *AniList) Supports(t SearchType) bool {
	return t == SearchAnime || t == SearchManga || t == SearchLightNovel
}

type gqlRequest struct {
	Query     string       `json:"query"`
	Variables gqlVariables `json:"variables"`
}

type gqlVariables struct {
	Search    string `json:"search"`
	MediaType string `json:"type"`
	Format    string `json:"format,omitempty"`
}

type gqlResponse struct {
	Data *struct {
		Page struct {
			Media []gqlMedia `json:"media"`
		} `json:"Page"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type gqlMedia struct {
	ID    uint32 `json:"id"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
	} `json:"title"`
	Episodes   *uint32 `json:"episodes"`
	Chapters   *uint32 `json:"chapters"`
	MeanScore  *uint32 `json:"meanScore"`
	CoverImage *struct {
		Large *string `json:"large"`
	} `json:"coverImage"`
	Format          string `json:"format"`
	CountryOfOrigin string `json:"countryOfOrigin"`
}

func (a *AniList) Search(ctx context.Context, query string, t SearchType) ([]Result, error) {
	var apiType, format string
	switch t {
	case SearchAnime:
		apiType = "ANIME"
	case SearchManga:
		apiType = "MANGA"
	case SearchLightNovel:
		apiType, format = "MANGA", "NOVEL"
	default:
		return nil, nil
	}

	body, err := json.Marshal(gqlRequest{
		Query: anilistQuery,
		Variables: gqlVariables{
			Search:    query,
			MediaType: apiType,
			Format:    format,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anilist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anilistURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anilist: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anilist: request: %w", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	var gql gqlResponse
	if err := json.Unmarshal(raw, &gql); err != nil {
		return nil, fmt.Errorf("anilist: decode: %w", err)
	}

	if len(gql.Errors) > 0 {
		msgs := make([]string, 0, len(gql.Errors))
		for _, e := range gql.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("anilist: api error: %s", strings.Join(msgs, ", "))
	}
	if gql.Data == nil {
		return nil, fmt.Errorf("anilist: no data in response")
	}

	results := make([]Result, 0, len(gql.Data.Page.Media))
	for _, m := range gql.Data.Page.Media {
		if r, ok := mapAnilistMedia(m, t); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

func mapAnilistMedia(m gqlMedia, t SearchType) (Result, bool) {
	title := m.Title.English
	if title == "" {
		title = m.Title.Romaji
	}
	if title == "" {
		title = "Unknown"
	}

	var (
		kind  models.MediaKind
		label string
	)

	switch t {
	case SearchAnime:
		if m.Format == "MOVIE" {
			kind = models.NewMovie(models.PlanToWatch)
			label = "Movie"
		} else {
			kind = models.NewSeries(
				models.Progress{Total: m.Episodes},
				models.PlanToWatch,
			)
			label = anilistFormatLabel(m.Format)
		}
	case SearchManga, SearchLightNovel:
		readable := models.Manga
		label = "Manga"
		if m.Format == "NOVEL" {
			readable, label = models.LightNovel, "Light Novel"
		} else if m.CountryOfOrigin == "KR" {
			readable, label = models.Manhwa, "Manhwa"
		}
		kind = models.NewReadable(
			readable,
			models.Progress{Total: m.Chapters},
			models.PlanToRead,
		)
	default:
		return Result{}, false
	}

	r := Result{
		Title:       title,
		Kind:        kind,
		Source:      "anilist",
		FormatLabel: label,
	}

	id := m.ID
	r.ExternalID = &id

	// meanScore is already 0-100
	if m.MeanScore != nil {
		s := uint8(min(*m.MeanScore, 100))
		r.GlobalScore = &s
	}
	if m.CoverImage != nil && m.CoverImage.Large != nil {
		r.PosterURL = m.CoverImage.Large
	}

	return r, true
}

func anilistFormatLabel(format string) string {
	switch format {
	case "TV":
		return "TV"
	case "TV_SHORT":
		return "TV Short"
	case "OVA":
		return "OVA"
	case "ONA":
		return "ONA"
	case "SPECIAL":
		return "Special"
	case "MUSIC":
		return "Music"
	case "":
		return "UNKNOWN"
	default:
		return format
	}
}
