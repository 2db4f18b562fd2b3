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
	"strings"
	"time"

	"mediahub/pkg/models"
)

const (
	openLibrarySearchURL = "https://openlibrary.org/search.json"
	openLibraryCoverBase = "https://covers.openlibrary.org/b/id"
)

// OpenLibrary serves book lookups.
type OpenLibrary struct {
	Client *http.Client
}

func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{
		Client: &http.Client{Timeout: 12 * time.Second},
	}
}

func (o *OpenLibrary) Name() string { return "Open Library" }

func (o *OpenLibrary) Supports(t SearchType) bool { return t == SearchBook }

type olSearchResponse struct {
	Docs []olBookDoc `json:"docs"`
}

type olBookDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	FirstPublishYear    *int     `json:"first_publish_year"`
	CoverID             *uint64  `json:"cover_i"`
	NumberOfPagesMedian *uint32  `json:"number_of_pages_median"`
	RatingsAverage      *float64 `json:"ratings_average"`
}

func (o *OpenLibrary) Search(ctx context.Context, query string, t SearchType) ([]Result, error) {
	if t != SearchBook {
		return nil, nil
	}

	u, _ := url.Parse(openLibrarySearchURL)
	q := u.Query()
	q.Set("q", query)
	q.Set("fields", "key,title,author_name,first_publish_year,cover_i,number_of_pages_median,ratings_average")
	q.Set("limit", "10")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: build request: %w", err)
	}

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary: status %d: %s", resp.StatusCode, string(body))
	}

	var data olSearchResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("openlibrary: decode: %w", err)
	}

	results := make([]Result, 0, len(data.Docs))
	for _, doc := range data.Docs {
		if doc.Title == "" {
			continue
		}
		results = append(results, mapBookDoc(doc))
	}
	return results, nil
}

func mapBookDoc(doc olBookDoc) Result {
	r := Result{
		Title: doc.Title,
		Kind: models.NewReadable(
			models.Book,
			models.Progress{Total: doc.NumberOfPagesMedian},
			models.PlanToRead,
		),
		Source: "openlibrary",
	}

	author := "Unknown"
	if len(doc.AuthorName) > 0 {
		author = doc.AuthorName[0]
	}
	year := "?"
	if doc.FirstPublishYear != nil {
		year = strconv.Itoa(*doc.FirstPublishYear)
	}
	r.FormatLabel = fmt.Sprintf("%s (%s)", author, year)

	if doc.CoverID != nil {
		p := fmt.Sprintf("%s/%d-M.jpg", openLibraryCoverBase, *doc.CoverID)
		r.PosterURL = &p
	}

	// ratings_average is 1.0-5.0; scale onto 0-100
	if doc.RatingsAverage != nil {
		v := math.Min(math.Max(*doc.RatingsAverage, 0), 5)
		s := uint8(math.Round(v / 5 * 100))
		r.GlobalScore = &s
	}

	// work keys look like "/works/OL27448W"; the digits become the
	// numeric external id
	raw := strings.TrimSuffix(strings.TrimPrefix(doc.Key, "/works/OL"), "W")
	if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
		id := uint32(n)
		r.ExternalID = &id
	}

	return r
}
