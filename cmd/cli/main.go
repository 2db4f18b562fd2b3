package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mediahub/internal/archive"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	global := flag.NewFlagSet("mediahub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 15 * time.Second}
	api := *baseURL + "/api"

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	case "list":
		handleList(ctx, client, api, rest)
	case "get":
		handleGet(ctx, client, api, rest)
	case "add":
		handleAdd(ctx, client, api, rest)
	case "score":
		handleScore(ctx, client, api, rest)
	case "progress":
		handleProgress(ctx, client, api, rest)
	case "complete":
		handleComplete(ctx, client, api, rest)
	case "delete":
		handleDelete(ctx, client, api, rest)
	case "search":
		handleSearch(ctx, client, api, rest)
	case "explore":
		handleExplore(ctx, client, api, rest)
	case "stats":
		handleStats(ctx, client, api)
	case "watch":
		handleWatch(*baseURL)
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleList(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print raw JSON")
	_ = fs.Parse(args)

	var items []archive.APIMediaItem
	if err := doJSON(ctx, client, http.MethodGet, api+"/items", nil, &items); err != nil {
		log.Fatalf("list failed: %v", err)
	}

	if *asJSON {
		printJSON(items)
		return
	}
	for _, item := range items {
		fmt.Println(itemLine(item))
	}
	fmt.Printf("%d items\n", len(items))
}

func handleGet(ctx context.Context, client *http.Client, api string, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: mediahub get <id>")
	}
	var item archive.APIMediaItem
	if err := doJSON(ctx, client, http.MethodGet, api+"/items/"+args[0], nil, &item); err != nil {
		log.Fatalf("get failed: %v", err)
	}
	printJSON(item)
}

func handleAdd(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "title (required)")
	mediaType := fs.String("type", "", "movie|series|anime|manga|manhwa|webtoon|book|light_novel|web_novel")
	status := fs.String("status", "", "status (defaults to the plan state)")
	progress := fs.Uint("progress", 0, "current episode/chapter/page")
	total := fs.Uint("total", 0, "total episodes/chapters/pages (0 = unknown)")
	score := fs.Float64("score", -1, "personal score 0.0-10.0")
	source := fs.String("source", "", "source catalog tag")
	tags := fs.String("tags", "", "comma-separated tags")
	favorite := fs.Bool("favorite", false, "mark as favorite")
	_ = fs.Parse(args)

	if *title == "" || *mediaType == "" {
		log.Fatal("title and type are required")
	}

	req := archive.APIMediaItem{
		Title:     *title,
		MediaType: *mediaType,
		Status:    *status,
		Progress:  uint32(*progress),
		Favorite:  *favorite,
	}
	if *total > 0 {
		t := uint32(*total)
		req.TotalEpisodes = &t
	}
	if *score >= 0 {
		req.Score = score
	}
	if *source != "" {
		req.Source = source
	}
	if *tags != "" {
		req.Tags = strings.Split(*tags, ",")
	}

	var created archive.APIMediaItem
	if err := doJSON(ctx, client, http.MethodPost, api+"/items", req, &created); err != nil {
		log.Fatalf("add failed: %v", err)
	}
	fmt.Printf("added %s (%s)\n", created.Title, created.ID)
}

func handleScore(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	value := fs.Float64("value", -1, "score 0.0-10.0 (required)")
	if len(args) == 0 {
		log.Fatal("usage: mediahub score <id> -value 8.5")
	}
	id := args[0]
	_ = fs.Parse(args[1:])
	if *value < 0 {
		log.Fatal("value is required")
	}

	updateItem(ctx, client, api, id, func(item *archive.APIMediaItem) {
		item.Score = value
	})
	fmt.Println("score updated")
}

func handleProgress(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("progress", flag.ExitOnError)
	current := fs.Uint("current", 0, "current episode/chapter/page")
	total := fs.Uint("total", 0, "new total (0 = keep)")
	if len(args) == 0 {
		log.Fatal("usage: mediahub progress <id> -current 12 [-total 24]")
	}
	id := args[0]
	_ = fs.Parse(args[1:])

	updateItem(ctx, client, api, id, func(item *archive.APIMediaItem) {
		item.Progress = uint32(*current)
		if *total > 0 {
			t := uint32(*total)
			item.TotalEpisodes = &t
		}
	})
	fmt.Println("progress updated")
}

// handleComplete round-trips through the domain model so the completion
// semantics (status plus progress fast-forward) stay in one place.
func handleComplete(ctx context.Context, client *http.Client, api string, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: mediahub complete <id>")
	}
	id := args[0]

	var flat archive.APIMediaItem
	if err := doJSON(ctx, client, http.MethodGet, api+"/items/"+id, nil, &flat); err != nil {
		log.Fatalf("get failed: %v", err)
	}

	item, err := flat.ToMediaItem()
	if err != nil {
		log.Fatalf("bad item: %v", err)
	}
	item.ForceComplete()

	updated := archive.FromMediaItem(&item)
	if err := doJSON(ctx, client, http.MethodPut, api+"/items/"+id, updated, nil); err != nil {
		log.Fatalf("update failed: %v", err)
	}
	fmt.Printf("completed %s\n", item.Title)
}

func handleDelete(ctx context.Context, client *http.Client, api string, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: mediahub delete <id>")
	}
	if err := doJSON(ctx, client, http.MethodDelete, api+"/items/"+args[0], nil, nil); err != nil {
		log.Fatalf("delete failed: %v", err)
	}
	fmt.Println("deleted")
}

func handleSearch(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	q := fs.String("q", "", "title substring (required)")
	_ = fs.Parse(args)
	if *q == "" {
		log.Fatal("q is required")
	}

	var items []archive.APIMediaItem
	endpoint := api + "/search?q=" + url.QueryEscape(*q)
	if err := doJSON(ctx, client, http.MethodGet, endpoint, nil, &items); err != nil {
		log.Fatalf("search failed: %v", err)
	}
	for _, item := range items {
		fmt.Println(itemLine(item))
	}
}

func handleExplore(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("explore", flag.ExitOnError)
	q := fs.String("q", "", "query (required)")
	mediaType := fs.String("type", "anime", "anime|movie|series|manga|book|light_novel")
	add := fs.Int("add", 0, "archive result number N from a previous run")
	_ = fs.Parse(args)
	if *q == "" {
		log.Fatal("q is required")
	}

	if *add > 0 {
		req := archive.APIExploreImport{
			Query: *q,
			Type:  *mediaType,
			Index: *add - 1,
		}
		var created archive.APIMediaItem
		if err := doJSON(ctx, client, http.MethodPost, api+"/explore/import", req, &created); err != nil {
			log.Fatalf("explore add failed: %v", err)
		}
		fmt.Printf("added %s (%s)\n", created.Title, created.ID)
		return
	}

	var results []archive.APIExploreResult
	endpoint := api + "/explore?q=" + url.QueryEscape(*q) + "&type=" + url.QueryEscape(*mediaType)
	if err := doJSON(ctx, client, http.MethodGet, endpoint, nil, &results); err != nil {
		log.Fatalf("explore failed: %v", err)
	}
	for i, r := range results {
		fmt.Println(exploreLine(i+1, r))
	}
}

func handleStats(ctx context.Context, client *http.Client, api string) {
	var stats archive.APIStats
	if err := doJSON(ctx, client, http.MethodGet, api+"/stats", nil, &stats); err != nil {
		log.Fatalf("stats failed: %v", err)
	}
	printJSON(stats)
}

func handleWatch(baseURL string) {
	wsURL, err := websocketURL(baseURL, "/ws")
	if err != nil {
		log.Fatalf("bad base url: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", wsURL, err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		fmt.Print(string(msg))
	}
}

// updateItem does a GET-modify-PUT cycle on one item.
func updateItem(ctx context.Context, client *http.Client, api, id string, mutate func(*archive.APIMediaItem)) {
	var item archive.APIMediaItem
	if err := doJSON(ctx, client, http.MethodGet, api+"/items/"+id, nil, &item); err != nil {
		log.Fatalf("get failed: %v", err)
	}
	mutate(&item)
	if err := doJSON(ctx, client, http.MethodPut, api+"/items/"+id, item, nil); err != nil {
		log.Fatalf("update failed: %v", err)
	}
}

func itemLine(item archive.APIMediaItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %-11s %-13s", item.Title, item.MediaType, item.Status)
	if item.TotalEpisodes != nil {
		fmt.Fprintf(&b, " %d/%d", item.Progress, *item.TotalEpisodes)
	} else if item.Progress > 0 {
		fmt.Fprintf(&b, " %d/?", item.Progress)
	}
	if item.Score != nil {
		fmt.Fprintf(&b, " ★ %.1f", *item.Score)
	}
	if item.Favorite {
		b.WriteString(" ♥")
	}
	return b.String()
}

func exploreLine(idx int, r archive.APIExploreResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %d. %s", idx, r.Title)
	if r.TotalEpisodes != nil {
		fmt.Fprintf(&b, " [%d]", *r.TotalEpisodes)
	}
	if r.GlobalScore != nil {
		fmt.Fprintf(&b, " ★ %.1f", *r.GlobalScore)
	}
	fmt.Fprintf(&b, " · %s", r.FormatLabel)
	return b.String()
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("mediahub <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  list [-json]")
	fmt.Println("  get <id>")
	fmt.Println("  add -title ... -type ...")
	fmt.Println("  score <id> -value 8.5")
	fmt.Println("  progress <id> -current 12 [-total 24]")
	fmt.Println("  complete <id>")
	fmt.Println("  delete <id>")
	fmt.Println("  search -q ...")
	fmt.Println("  explore -q ... [-type anime] [-add N]")
	fmt.Println("  stats")
	fmt.Println("  watch")
}
