package archive

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"mediahub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const rowColumns = `id, title, media_type, readable_kind, watch_status, read_status,
	progress_cur, progress_tot, score, global_score, external_id, poster_url, source, tags`

func scanRow(s interface{ Scan(...any) error }) (mediaRow, error) {
	var row mediaRow
	err := s.Scan(
		&row.ID, &row.Title, &row.MediaType, &row.ReadableKind,
		&row.WatchStatus, &row.ReadStatus, &row.ProgressCur, &row.ProgressTot,
		&row.Score, &row.GlobalScore, &row.ExternalID, &row.PosterURL,
		&row.Source, &row.Tags,
	)
	return row, err
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaItem, error) {
	row, err := scanRow(r.DB.QueryRowContext(ctx, `
		SELECT `+rowColumns+`
		FROM media_items
		WHERE id = ?
	`, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get media item: %w", err)
	}

	item, err := rowToItem(row)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert replaces the stored row for the item's id. Re-applying the same
// item leaves the table unchanged.
func (r *Repo) Upsert(ctx context.Context, item *models.MediaItem) error {
	row := itemToRow(item)
	_, err := r.DB.ExecContext(ctx, `
		INSERT OR REPLACE INTO media_items
			(`+rowColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		row.ID, row.Title, row.MediaType, row.ReadableKind,
		row.WatchStatus, row.ReadStatus, row.ProgressCur, row.ProgressTot,
		row.Score, row.GlobalScore, row.ExternalID, row.PosterURL,
		row.Source, row.Tags,
	)
	if err != nil {
		return fmt.Errorf("upsert media item: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM media_items WHERE id = ?
	`, id.String())
	if err != nil {
		return false, fmt.Errorf("delete media item: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// LoadAll returns the whole archive ordered by title. Callers must not rely
// on input order surviving a save/reload cycle.
func (r *Repo) LoadAll(ctx context.Context) ([]models.MediaItem, error) {
	return r.queryItems(ctx, `
		SELECT `+rowColumns+`
		FROM media_items
		ORDER BY title
	`)
}

// SearchTitle matches titles by substring, case-insensitively.
func (r *Repo) SearchTitle(ctx context.Context, query string) ([]models.MediaItem, error) {
	return r.queryItems(ctx, `
		SELECT `+rowColumns+`
		FROM media_items
		WHERE title LIKE ?
		ORDER BY title
	`, "%"+query+"%")
}

func (r *Repo) queryItems(ctx context.Context, sqlStr string, args ...any) ([]models.MediaItem, error) {
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query media items: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media row: %w", err)
		}
		// one corrupt row poisons the load; do not skip it silently
		item, err := rowToItem(row)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return items, nil
}

// SaveAll atomically replaces the archive with the given snapshot: either
// every item is visible afterwards or none of the changes are.
func (r *Repo) SaveAll(ctx context.Context, items []models.MediaItem) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM media_items`); err != nil {
		return fmt.Errorf("clear media items: %w", err)
	}

	for i := range items {
		row := itemToRow(&items[i])
		_, err := tx.ExecContext(ctx, `
			INSERT INTO media_items
				(`+rowColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			row.ID, row.Title, row.MediaType, row.ReadableKind,
			row.WatchStatus, row.ReadStatus, row.ProgressCur, row.ProgressTot,
			row.Score, row.GlobalScore, row.ExternalID, row.PosterURL,
			row.Source, row.Tags,
		)
		if err != nil {
			return fmt.Errorf("insert media item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
