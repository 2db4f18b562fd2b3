package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"mediahub/internal/archive"
	"mediahub/internal/config"
	"mediahub/pkg/database"
	"mediahub/pkg/models"
)

func main() {
	var (
		in      = flag.String("in", "data/archive.csv", "input CSV path")
		replace = flag.Bool("replace", false, "replace the whole archive instead of merging")
	)
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

	items, err := readArchive(*in)
	if err != nil {
		log.Fatalf("read archive csv failed: %v", err)
	}

	repo := archive.NewRepo(db)
	if *replace {
		if err := repo.SaveAll(ctx, items); err != nil {
			log.Fatalf("replace archive failed: %v", err)
		}
	} else {
		for i := range items {
			if err := repo.Upsert(ctx, &items[i]); err != nil {
				log.Fatalf("upsert %q failed: %v", items[i].Title, err)
			}
		}
	}

	log.Printf("✅ imported %d items from %s", len(items), *in)
}

func readArchive(path string) ([]models.MediaItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	var items []models.MediaItem
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}

		api, err := apiItemOf(header, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if api.Title == "" {
			continue
		}

		item, err := api.ToMediaItem()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func apiItemOf(header map[string]int, row []string) (archive.APIMediaItem, error) {
	api := archive.APIMediaItem{
		ID:        valueAt(header, row, "id"),
		Title:     valueAt(header, row, "title"),
		MediaType: valueAt(header, row, "media_type"),
		Status:    valueAt(header, row, "status"),
	}

	if raw := valueAt(header, row, "progress"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return api, fmt.Errorf("parse progress: %w", err)
		}
		api.Progress = uint32(n)
	}
	if raw := valueAt(header, row, "total_episodes"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return api, fmt.Errorf("parse total_episodes: %w", err)
		}
		total := uint32(n)
		api.TotalEpisodes = &total
	}
	if raw := valueAt(header, row, "score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return api, fmt.Errorf("parse score: %w", err)
		}
		api.Score = &v
	}
	if raw := valueAt(header, row, "global_score"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return api, fmt.Errorf("parse global_score: %w", err)
		}
		api.GlobalScore = &v
	}

	if raw := valueAt(header, row, "external_id"); raw != "" {
		api.ExternalID = &raw
	}
	if raw := valueAt(header, row, "poster_url"); raw != "" {
		api.PosterURL = &raw
	}
	if raw := valueAt(header, row, "source"); raw != "" {
		api.Source = &raw
	}
	if raw := valueAt(header, row, "tags"); raw != "" {
		// tags cell is a JSON array; a malformed one imports as no tags,
		// matching the stored-row leniency
		_ = json.Unmarshal([]byte(raw), &api.Tags)
	}
	api.Favorite = valueAt(header, row, "favorite") == "true"

	return api, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
