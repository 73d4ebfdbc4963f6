package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/weicopy/cli/internal/models"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshot_items (
	position   INTEGER NOT NULL,
	id         TEXT NOT NULL PRIMARY KEY,
	type       TEXT NOT NULL,
	content    TEXT NOT NULL,
	filename   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS history_items (
	id         TEXT NOT NULL PRIMARY KEY,
	type       TEXT NOT NULL,
	content    TEXT NOT NULL,
	filename   TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	first_seen TIMESTAMP NOT NULL
);
`

// SnapshotRepository stores the most recent server snapshot plus a
// cumulative history of every item ever seen.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates the repository and its schema.
func NewSnapshotRepository(db *sql.DB) (*SnapshotRepository, error) {
	if _, err := db.Exec(snapshotSchema); err != nil {
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &SnapshotRepository{db: db}, nil
}

// ReplaceAll swaps the cached snapshot for items in one transaction and
// folds new items into the history table.
func (r *SnapshotRepository) ReplaceAll(items []models.ClipboardItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM snapshot_items"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	insert, err := tx.Prepare(
		"INSERT INTO snapshot_items (position, id, type, content, filename, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	record, err := tx.Prepare(
		"INSERT OR IGNORE INTO history_items (id, type, content, filename, created_at, first_seen) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare history insert: %w", err)
	}
	defer record.Close()

	now := time.Now().UTC()
	for i, item := range items {
		if _, err := insert.Exec(i, item.ID, item.Type, item.Content, item.Filename, item.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
		if _, err := record.Exec(item.ID, item.Type, item.Content, item.Filename, item.CreatedAt, now); err != nil {
			return fmt.Errorf("failed to record history for %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// All returns the cached snapshot in server order.
func (r *SnapshotRepository) All() ([]models.ClipboardItem, error) {
	return r.query(
		"SELECT id, type, content, filename, created_at FROM snapshot_items ORDER BY position")
}

// ByType returns cached items of one type, preserving server order.
func (r *SnapshotRepository) ByType(itemType string) ([]models.ClipboardItem, error) {
	return r.query(
		"SELECT id, type, content, filename, created_at FROM snapshot_items WHERE type = ? ORDER BY position", itemType)
}

// History returns every item ever cached, newest first, including items
// since deleted from the server.
func (r *SnapshotRepository) History() ([]models.ClipboardItem, error) {
	return r.query(
		"SELECT id, type, content, filename, created_at FROM history_items ORDER BY created_at DESC")
}

func (r *SnapshotRepository) query(stmt string, args ...any) ([]models.ClipboardItem, error) {
	rows, err := r.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	defer rows.Close()

	var items []models.ClipboardItem
	for rows.Next() {
		var item models.ClipboardItem
		if err := rows.Scan(&item.ID, &item.Type, &item.Content, &item.Filename, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cache rows: %w", err)
	}
	return items, nil
}
