package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// Item statuses recorded in run_items.
const (
	StatusCreated           = "created"
	StatusCreatedUnverified = "created-unverified"
	StatusUpdated           = "updated"
	StatusProductUpdated    = "product-updated"
	StatusSkipped           = "skipped"
	StatusFailed            = "failed"
)

// Run is one migration run, live or dry-run.
type Run struct {
	RunID           int64
	Mode            string
	SourceURL       string
	DestinationURL  string
	StartedAt       time.Time
	FinishedAt      *time.Time
	CMSMigrated     int
	ProductsUpdated int
	Skipped         int
	Failed          int
	Images          int
}

// Item is one content item's outcome within a run.
type Item struct {
	ItemID    int64
	RunID     int64
	Slug      string
	Title     string
	Target    string
	Rule      string
	Status    string
	Error     string
	CreatedAt time.Time
}

// StartRun inserts a new run row and returns its ID.
func (db *DB) StartRun(mode, sourceURL, destinationURL string) (int64, error) {
	result, err := db.Exec(
		"INSERT INTO runs (mode, source_url, destination_url) VALUES (?, ?, ?)",
		mode, sourceURL, destinationURL,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return result.LastInsertId()
}

// RecordItem appends one item outcome to a run.
func (db *DB) RecordItem(runID int64, item Item) error {
	_, err := db.Exec(
		"INSERT INTO run_items (run_id, slug, title, target, rule, status, error) VALUES (?, ?, ?, ?, ?, ?, ?)",
		runID, item.Slug, item.Title, item.Target, item.Rule, item.Status, item.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run item: %w", err)
	}
	return nil
}

// FinishRun stamps the finish time and stores the final counters.
func (db *DB) FinishRun(runID int64, cmsMigrated, productsUpdated, skipped, failed, images int) error {
	_, err := db.Exec(
		`UPDATE runs SET finished_at = CURRENT_TIMESTAMP,
			cms_migrated = ?, products_updated = ?, skipped = ?, failed = ?, images = ?
		 WHERE run_id = ?`,
		cmsMigrated, productsUpdated, skipped, failed, images, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// GetRun returns one run by ID.
func (db *DB) GetRun(runID int64) (*Run, error) {
	row := db.QueryRow(
		`SELECT run_id, mode, source_url, destination_url, started_at, finished_at,
			cms_migrated, products_updated, skipped, failed, images
		 FROM runs WHERE run_id = ?`, runID,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT run_id, mode, source_url, destination_url, started_at, finished_at,
			cms_migrated, products_updated, skipped, failed, images
		 FROM runs ORDER BY run_id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunItems returns a run's items in insertion order.
func (db *DB) GetRunItems(runID int64) ([]*Item, error) {
	rows, err := db.Query(
		`SELECT item_id, run_id, slug, title, target, rule, status, error, created_at
		 FROM run_items WHERE run_id = ? ORDER BY item_id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
		err := rows.Scan(&item.ItemID, &item.RunID, &item.Slug, &item.Title,
			&item.Target, &item.Rule, &item.Status, &item.Error, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var finished sql.NullTime
	err := row.Scan(&run.RunID, &run.Mode, &run.SourceURL, &run.DestinationURL,
		&run.StartedAt, &finished,
		&run.CMSMigrated, &run.ProductsUpdated, &run.Skipped, &run.Failed, &run.Images)
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return run, nil
}
