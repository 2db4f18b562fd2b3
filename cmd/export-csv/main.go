package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"mediahub/internal/archive"
	"mediahub/internal/config"
	"mediahub/pkg/database"
)

var exportHeader = []string{
	"id", "title", "media_type", "status", "progress", "total_episodes",
	"score", "global_score", "external_id", "poster_url", "source", "tags", "favorite",
}

func main() {
	out := flag.String("out", "data/archive.csv", "output CSV path")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	db := database.MustOpen(cfg.DatabasePath)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	n, err := exportArchive(ctx, archive.NewRepo(db), *out)
	if err != nil {
		log.Fatalf("export archive failed: %v", err)
	}

	log.Printf("✅ exported %d items to %s", n, *out)
}

func exportArchive(ctx context.Context, repo *archive.Repo, outPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	items, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return 0, err
	}

	for i := range items {
		api := archive.FromMediaItem(&items[i])
		if err := w.Write(recordOf(api)); err != nil {
			return 0, err
		}
	}

	w.Flush()
	return len(items), w.Error()
}

func recordOf(api archive.APIMediaItem) []string {
	total := ""
	if api.TotalEpisodes != nil {
		total = strconv.FormatUint(uint64(*api.TotalEpisodes), 10)
	}
	score := ""
	if api.Score != nil {
		score = strconv.FormatFloat(*api.Score, 'f', 1, 64)
	}
	global := ""
	if api.GlobalScore != nil {
		global = strconv.FormatFloat(*api.GlobalScore, 'f', 1, 64)
	}

	// same JSON array form as the stored row, so a tag holding any
	// separator character survives the round trip
	tags := "[]"
	if len(api.Tags) > 0 {
		if b, err := json.Marshal(api.Tags); err == nil {
			tags = string(b)
		}
	}

	return []string{
		api.ID,
		api.Title,
		api.MediaType,
		api.Status,
		strconv.FormatUint(uint64(api.Progress), 10),
		total,
		score,
		global,
		deref(api.ExternalID),
		deref(api.PosterURL),
		deref(api.Source),
		tags,
		strconv.FormatBool(api.Favorite),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
