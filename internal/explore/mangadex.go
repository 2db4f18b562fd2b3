package explore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mediahub/pkg/models"
)

const (
	mangadexBase      = "https://api.mangadex.org"
	mangadexCoverBase = "https://uploads.mangadex.org/covers"
	mangadexUserAgent = "mediahub/0.1"
)

// MangaDex serves manga, manhwa and webtoon lookups. MangaDex ids are
// UUIDs, so results carry no numeric external id.
type MangaDex struct {
	Client *http.Client
}

func NewMangaDex() *MangaDex {
	return &MangaDex{
		Client: &http.Client{Timeout: 12 * time.Second},
	}
}

func (m *MangaDex) Name() string { return "MangaDex" }

func (m *MangaDex) Supports(t SearchType) bool { return t == SearchManga }

type mdListResponse struct {
	Data []mdManga `json:"data"`
}

type mdManga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title            map[string]string `json:"title"`
		OriginalLanguage string            `json:"originalLanguage"`
		LastChapter      string            `json:"lastChapter"`
		Year             *int              `json:"year"`
		Status           string            `json:"status"`
		Tags             []struct {
			Attributes struct {
				Name map[string]string `json:"name"`
			} `json:"attributes"`
		} `json:"tags"`
	} `json:"attributes"`
	Relationships []struct {
		Type       string `json:"type"`
		Attributes struct {
			Name     string `json:"name"`     // author
			FileName string `json:"fileName"` // cover_art
		} `json:"attributes"`
	} `json:"relationships"`
}

type mdStatsResponse struct {
	Statistics map[string]struct {
		Rating struct {
			Bayesian *float64 `json:"bayesian"`
		} `json:"rating"`
	} `json:"statistics"`
}

func (m *MangaDex) Search(ctx context.Context, query string, t SearchType) ([]Result, error) {
	if t != SearchManga {
		return nil, nil
	}

	u, _ := url.Parse(mangadexBase + "/manga")
	q := u.Query()
	q.Set("title", query)
	q.Set("limit", "10")
	q.Add("includes[]", "cover_art")
	q.Add("includes[]", "author")
	q.Set("order[relevance]", "desc")
	q.Add("contentRating[]", "safe")
	q.Add("contentRating[]", "suggestive")
	u.RawQuery = q.Encode()

	body, err := m.get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var list mdListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("mangadex: decode: %w", err)
	}

	ids := make([]string, 0, len(list.Data))
	for _, entry := range list.Data {
		ids = append(ids, entry.ID)
	}
	stats := m.fetchStats(ctx, ids)

	results := make([]Result, 0, len(list.Data))
	for _, entry := range list.Data {
		results = append(results, m.mapManga(entry, stats))
	}
	return results, nil
}

func (m *MangaDex) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("mangadex: build request: %w", err)
	}
	req.Header.Set("User-Agent", mangadexUserAgent)

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mangadex: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mangadex: status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// fetchStats batch-loads community ratings; failures just leave scores empty.
func (m *MangaDex) fetchStats(ctx context.Context, ids []string) mdStatsResponse {
	var stats mdStatsResponse
	if len(ids) == 0 {
		return stats
	}

	u, _ := url.Parse(mangadexBase + "/statistics/manga")
	q := u.Query()
	for _, id := range ids {
		q.Add("manga[]", id)
	}
	u.RawQuery = q.Encode()

	body, err := m.get(ctx, u.String())
	if err != nil {
		return stats
	}
	_ = json.Unmarshal(body, &stats)
	return stats
}

func (m *MangaDex) mapManga(entry mdManga, stats mdStatsResponse) Result {
	attrs := entry.Attributes

	title := pickLang(attrs.Title, "en")
	if title == "" {
		title = pickLang(attrs.Title, "ja-ro")
	}
	if title == "" {
		title = pickLang(attrs.Title, "ja")
	}
	if title == "" {
		for _, v := range attrs.Title {
			title = v
			break
		}
	}
	if title == "" {
		title = "Unknown"
	}

	kind, kindLabel := mdReadableKind(entry)

	var total *uint32
	if c, err := strconv.ParseFloat(attrs.LastChapter, 32); err == nil {
		t := uint32(c)
		total = &t
	}

	author := "Unknown"
	var coverFile string
	for _, rel := range entry.Relationships {
		switch rel.Type {
		case "author":
			if rel.Attributes.Name != "" {
				author = rel.Attributes.Name
			}
		case "cover_art":
			if coverFile == "" {
				coverFile = rel.Attributes.FileName
			}
		}
	}

	r := Result{
		Title: title,
		Kind: models.NewReadable(
			kind,
			models.Progress{Total: total},
			models.PlanToRead,
		),
		Source: "mangadex",
	}

	year := "?"
	if attrs.Year != nil {
		year = strconv.Itoa(*attrs.Year)
	}
	status := attrs.Status
	if status == "" {
		status = "unknown"
	}
	r.FormatLabel = fmt.Sprintf("%s · %s (%s, %s)", kindLabel, author, year, status)

	if coverFile != "" {
		p := fmt.Sprintf("%s/%s/%s.256.jpg", mangadexCoverBase, entry.ID, coverFile)
		r.PosterURL = &p
	}

	if entryStats, ok := stats.Statistics[entry.ID]; ok && entryStats.Rating.Bayesian != nil {
		v := math.Min(math.Max(*entryStats.Rating.Bayesian, 0), 10)
		s := uint8(math.Round(v * 10))
		r.GlobalScore = &s
	}

	return r
}

// mdReadableKind classifies by original language; Korean long-strip works
// are webtoons, other Korean works manhwa, everything else manga.
func mdReadableKind(entry mdManga) (models.ReadableKind, string) {
	if entry.Attributes.OriginalLanguage == "ko" {
		for _, tag := range entry.Attributes.Tags {
			if name, ok := tag.Attributes.Name["en"]; ok && name == "Long Strip" {
				return models.Webtoon, "Webtoon"
			}
		}
		return models.Manhwa, "Manhwa"
	}
	return models.Manga, "Manga"
}

func pickLang(m map[string]string, lang string) string {
	if m == nil {
		return ""
	}
	return m[lang]
}
