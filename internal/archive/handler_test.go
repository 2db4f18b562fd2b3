package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediahub/internal/explore"
	"mediahub/pkg/models"
)

type stubProvider struct {
	name    string
	results []explore.Result
	err     error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Supports(t explore.SearchType) bool { return true }

func (s *stubProvider) Search(ctx context.Context, query string, t explore.SearchType) ([]explore.Result, error) {
	return s.results, s.err
}

func newTestRouter(t *testing.T, providers ...explore.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := NewHandler(newTestRepo(t), nil, providers, log)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api"))
	return router
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerItemLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/items", gin.H{
		"title":      "Attack on Titan",
		"media_type": "series",
		"status":     "watching",
		"progress":   5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "series", created.MediaType)
	assert.Equal(t, uint32(5), created.Progress)

	w = doRequest(router, http.MethodGet, "/api/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	created.Progress = 12
	created.Status = "completed"
	w = doRequest(router, http.MethodPut, "/api/items/"+created.ID, created)
	require.Equal(t, http.StatusOK, w.Code)

	var updated APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, uint32(12), updated.Progress)

	w = doRequest(router, http.MethodGet, "/api/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = doRequest(router, http.MethodDelete, "/api/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/items/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerUpdateIgnoresBodyID(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/items", gin.H{
		"title":      "Dune",
		"media_type": "movie",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// the body smuggles a different id; the path one must win
	body := created
	body.ID = "11111111-2222-3333-4444-555555555555"
	body.Status = "completed"
	w = doRequest(router, http.MethodPut, "/api/items/"+created.ID, body)
	require.Equal(t, http.StatusOK, w.Code)

	var updated APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
}

func TestHandlerRejectsBadInput(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/items", gin.H{
		"title":      "Betamax Rip",
		"media_type": "vhs",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/items", gin.H{
		"media_type": "movie",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/items/8f4e8e86-9f5e-4f8f-9a2d-1b2c3d4e5f60", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerSearch(t *testing.T) {
	router := newTestRouter(t)

	for _, title := range []string{"Vinland Saga", "Vagabond", "Dune"} {
		w := doRequest(router, http.MethodPost, "/api/items", gin.H{
			"title":      title,
			"media_type": "movie",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/search?q=va", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	// blank query returns an empty list, not everything
	w = doRequest(router, http.MethodGet, "/api/search?q=++", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestHandlerExplore(t *testing.T) {
	good := &stubProvider{
		name: "good",
		results: []explore.Result{{
			Title:       "Frieren: Beyond Journey's End",
			Kind:        models.NewSeries(models.Progress{Total: u32(28)}, models.PlanToWatch),
			Source:      "anilist",
			FormatLabel: "TV",
		}},
	}
	broken := &stubProvider{name: "broken", err: assert.AnError}
	router := newTestRouter(t, broken, good)

	w := doRequest(router, http.MethodGet, "/api/explore?q=frieren&type=anime", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var results []APIExploreResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Frieren: Beyond Journey's End", results[0].Title)

	// queries shorter than two characters skip the providers entirely
	w = doRequest(router, http.MethodGet, "/api/explore?q=f", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Empty(t, results)
}

func TestHandlerExploreImport(t *testing.T) {
	score := uint8(84)
	poster := "https://example.org/frieren.jpg"
	provider := &stubProvider{
		name: "catalog",
		results: []explore.Result{
			{
				Title:  "Sousou no Frieren",
				Kind:   models.NewSeries(models.Progress{Total: u32(28)}, models.PlanToWatch),
				Source: "anilist",
			},
			{
				Title:       "Frieren: Beyond Journey's End",
				Kind:        models.NewSeries(models.Progress{Total: u32(28)}, models.PlanToWatch),
				GlobalScore: &score,
				ExternalID:  u32(154587),
				PosterURL:   &poster,
				Source:      "anilist",
			},
		},
	}
	router := newTestRouter(t, provider)

	w := doRequest(router, http.MethodPost, "/api/explore/import", APIExploreImport{
		Query: "frieren",
		Type:  "anime",
		Index: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// the catalog fields survive the import
	var created APIMediaItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Frieren: Beyond Journey's End", created.Title)
	assert.Equal(t, "anime", created.MediaType)
	require.NotNil(t, created.GlobalScore)
	assert.InDelta(t, 8.4, *created.GlobalScore, 0.001)
	require.NotNil(t, created.ExternalID)
	assert.Equal(t, "154587", *created.ExternalID)
	require.NotNil(t, created.PosterURL)
	assert.Equal(t, poster, *created.PosterURL)

	w = doRequest(router, http.MethodGet, "/api/items/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodPost, "/api/explore/import", APIExploreImport{
		Query: "frieren",
		Type:  "anime",
		Index: 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/api/explore/import", APIExploreImport{
		Query: "f",
		Type:  "anime",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerStats(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/items", gin.H{
		"title":      "Dune",
		"media_type": "movie",
		"status":     "completed",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(router, http.MethodPost, "/api/items", gin.H{
		"title":      "Dune Messiah",
		"media_type": "book",
		"status":     "reading",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(router, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats APIStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Completed)
}
