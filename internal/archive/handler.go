package archive

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mediahub/internal/explore"
	synchub "mediahub/internal/sync"
	"mediahub/pkg/models"
)

type Handler struct {
	Repo      *Repo
	Hub       *synchub.Hub
	Providers []explore.Provider
	Log       *logrus.Logger
}

func NewHandler(repo *Repo, hub *synchub.Hub, providers []explore.Provider, log *logrus.Logger) *Handler {
	return &Handler{Repo: repo, Hub: hub, Providers: providers, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/items", h.list)
	rg.POST("/items", h.create)
	rg.GET("/items/:id", h.getOne)
	rg.PUT("/items/:id", h.update)
	rg.DELETE("/items/:id", h.remove)
	rg.GET("/search", h.search)
	rg.GET("/explore", h.explore)
	rg.POST("/explore/import", h.exploreImport)
	rg.GET("/stats", h.stats)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.LoadAll(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatten(items))
}

func (h *Handler) create(c *gin.Context) {
	var req APIMediaItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	item, err := req.ToMediaItem()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Repo.Upsert(c.Request.Context(), &item); err != nil {
		h.internalError(c, err)
		return
	}

	h.broadcast("item.update", &item)
	c.JSON(http.StatusCreated, FromMediaItem(&item))
}

func (h *Handler) getOne(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, FromMediaItem(item))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req APIMediaItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	// path wins over whatever id the body carries
	req.ID = id.String()

	item, err := req.ToMediaItem()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Repo.Upsert(c.Request.Context(), &item); err != nil {
		h.internalError(c, err)
		return
	}

	h.broadcast("item.update", &item)
	c.JSON(http.StatusOK, FromMediaItem(&item))
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := synchub.ArchiveEvent{
			Type:   "item.delete",
			ItemID: id.String(),
			At:     time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, []APIMediaItem{})
		return
	}

	items, err := h.Repo.SearchTitle(c.Request.Context(), query)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, flatten(items))
}

func (h *Handler) stats(c *gin.Context) {
	items, err := h.Repo.LoadAll(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatsFromItems(flatten(items)))
}

func (h *Handler) explore(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if len(query) < 2 {
		c.JSON(http.StatusOK, []APIExploreResult{})
		return
	}

	results := h.searchProviders(c, query, explore.ParseSearchType(c.Query("type")))

	out := make([]APIExploreResult, 0, len(results))
	for _, r := range results {
		out = append(out, FromExploreResult(r))
	}
	c.JSON(http.StatusOK, out)
}

// exploreImport re-runs a search and archives the picked hit, keeping its
// global score, poster and external id.
func (h *Handler) exploreImport(c *gin.Context) {
	var req APIExploreImport
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if len(query) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query too short"})
		return
	}

	results := h.searchProviders(c, query, explore.ParseSearchType(req.Type))
	if req.Index < 0 || req.Index >= len(results) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("index %d out of range (%d results)", req.Index, len(results)),
		})
		return
	}

	item := results[req.Index].MediaItem()
	if err := h.Repo.Upsert(c.Request.Context(), &item); err != nil {
		h.internalError(c, err)
		return
	}

	h.broadcast("item.update", &item)
	c.JSON(http.StatusCreated, FromMediaItem(&item))
}

func (h *Handler) searchProviders(c *gin.Context, query string, searchType explore.SearchType) []explore.Result {
	out := make([]explore.Result, 0, 10)
	for _, p := range h.Providers {
		if !p.Supports(searchType) {
			continue
		}
		results, err := p.Search(c.Request.Context(), query, searchType)
		if err != nil {
			// one broken catalog should not empty the whole result list
			h.Log.WithField("provider", p.Name()).Warnf("explore search failed: %v", err)
			continue
		}
		out = append(out, results...)
	}
	return out
}

func (h *Handler) broadcast(eventType string, item *models.MediaItem) {
	if h.Hub == nil {
		return
	}
	status := ""
	if ws, ok := item.Kind.WatchStatus(); ok {
		status = string(ws)
	} else if rs, ok := item.Kind.ReadStatus(); ok {
		status = string(rs)
	}
	ev := synchub.ArchiveEvent{
		Type:   eventType,
		ItemID: item.ID.String(),
		Title:  item.Title,
		Status: status,
		At:     time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	var corrupt *CorruptRowError
	if errors.As(err, &corrupt) {
		h.Log.Errorf("archive corruption: %v", err)
	} else {
		h.Log.Errorf("archive error: %v", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": (&InvalidIDError{Value: raw}).Error()})
		return uuid.Nil, false
	}
	return id, true
}

func flatten(items []models.MediaItem) []APIMediaItem {
	out := make([]APIMediaItem, 0, len(items))
	for i := range items {
		out = append(out, FromMediaItem(&items[i]))
	}
	return out
}
