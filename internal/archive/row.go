package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"mediahub/pkg/models"
)

// mediaRow mirrors the media_items table column for column. Exactly one of
// watch_status / read_status is set depending on the kind, and
// readable_kind only for readables; the unused discriminator columns stay
// NULL.
type mediaRow struct {
	ID           string
	Title        string
	MediaType    string
	ReadableKind sql.NullString
	WatchStatus  sql.NullString
	ReadStatus   sql.NullString
	ProgressCur  int64
	ProgressTot  sql.NullInt64
	Score        sql.NullInt64
	GlobalScore  sql.NullInt64
	ExternalID   sql.NullInt64
	PosterURL    sql.NullString
	Source       sql.NullString
	Tags         string
}

func itemToRow(item *models.MediaItem) mediaRow {
	row := mediaRow{
		ID:    item.ID.String(),
		Title: item.Title,
		Tags:  "[]",
	}

	switch item.Kind.Tag() {
	case models.KindMovie:
		ws, _ := item.Kind.WatchStatus()
		row.MediaType = "movie"
		row.WatchStatus = sql.NullString{String: string(ws), Valid: true}
	case models.KindSeries:
		ws, _ := item.Kind.WatchStatus()
		p, _ := item.Kind.Progress()
		row.MediaType = "series"
		row.WatchStatus = sql.NullString{String: string(ws), Valid: true}
		row.ProgressCur = int64(p.Current)
		if p.Total != nil {
			row.ProgressTot = sql.NullInt64{Int64: int64(*p.Total), Valid: true}
		}
	case models.KindReadable:
		rk, _ := item.Kind.Readable()
		rs, _ := item.Kind.ReadStatus()
		p, _ := item.Kind.Progress()
		row.MediaType = "readable"
		row.ReadableKind = sql.NullString{String: string(rk), Valid: true}
		row.ReadStatus = sql.NullString{String: string(rs), Valid: true}
		row.ProgressCur = int64(p.Current)
		if p.Total != nil {
			row.ProgressTot = sql.NullInt64{Int64: int64(*p.Total), Valid: true}
		}
	}

	if item.Score != nil {
		row.Score = sql.NullInt64{Int64: int64(*item.Score), Valid: true}
	}
	if item.GlobalScore != nil {
		row.GlobalScore = sql.NullInt64{Int64: int64(*item.GlobalScore), Valid: true}
	}
	if item.ExternalID != nil {
		row.ExternalID = sql.NullInt64{Int64: int64(*item.ExternalID), Valid: true}
	}
	if item.PosterURL != nil {
		row.PosterURL = sql.NullString{String: *item.PosterURL, Valid: true}
	}
	if item.Source != nil {
		row.Source = sql.NullString{String: *item.Source, Valid: true}
	}

	if b, err := json.Marshal(item.Tags.Sorted()); err == nil {
		row.Tags = string(b)
	}

	return row
}

// rowToItem rebuilds the domain item. An unrecognized media_type or a bad
// id means schema drift, which must surface instead of being papered over.
// Malformed tags JSON is cosmetic and recomposes to an empty set.
func rowToItem(row mediaRow) (models.MediaItem, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return models.MediaItem{}, &CorruptRowError{
			Reason: fmt.Sprintf("invalid id %q", row.ID),
		}
	}

	progress := models.Progress{Current: uint32(row.ProgressCur)}
	if row.ProgressTot.Valid {
		t := uint32(row.ProgressTot.Int64)
		progress.Total = &t
	}

	var kind models.MediaKind
	switch row.MediaType {
	case "movie":
		kind = models.NewMovie(models.ParseWatchStatus(row.WatchStatus.String))
	case "series":
		kind = models.NewSeries(progress, models.ParseWatchStatus(row.WatchStatus.String))
	case "readable":
		kind = models.NewReadable(
			models.ParseReadableKind(row.ReadableKind.String),
			progress,
			models.ParseReadStatus(row.ReadStatus.String),
		)
	default:
		return models.MediaItem{}, &CorruptRowError{
			Reason: fmt.Sprintf("unknown media_type %q", row.MediaType),
		}
	}

	var tagNames []string
	_ = json.Unmarshal([]byte(row.Tags), &tagNames)

	item := models.MediaItem{
		ID:    id,
		Title: row.Title,
		Kind:  kind,
		Tags:  models.NewTags(tagNames...),
	}

	if row.Score.Valid {
		s := uint8(row.Score.Int64)
		item.Score = &s
	}
	if row.GlobalScore.Valid {
		s := uint8(row.GlobalScore.Int64)
		item.GlobalScore = &s
	}
	if row.ExternalID.Valid {
		e := uint32(row.ExternalID.Int64)
		item.ExternalID = &e
	}
	if row.PosterURL.Valid {
		item.PosterURL = &row.PosterURL.String
	}
	if row.Source.Valid {
		item.Source = &row.Source.String
	}

	return item, nil
}
