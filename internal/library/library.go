// Package library indexes the recordings under the output directory in a
// SQLite catalog, so listing does not reparse every recording file.
package library

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dkazmin/macroplay/internal/recfile"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one cataloged recording.
type Entry struct {
	ID           string
	Path         string
	RecordedAt   time.Time
	PointerCount int
	KeyCount     int
	Duration     float64
}

// Catalog is a SQLite-backed recording index.
// SQLite only supports one writer at a time, so the pool is capped at a
// single connection.
type Catalog struct {
	db *sql.DB
}

// Open creates or opens the catalog database at path.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Index upserts one entry, keyed by path.
func (c *Catalog) Index(ctx context.Context, e Entry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO recordings (id, path, recorded_at, pointer_count, key_count, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id = excluded.id,
			recorded_at = excluded.recorded_at,
			pointer_count = excluded.pointer_count,
			key_count = excluded.key_count,
			duration_seconds = excluded.duration_seconds`,
		e.ID, e.Path, e.RecordedAt.UTC().Format(time.RFC3339),
		e.PointerCount, e.KeyCount, e.Duration)
	if err != nil {
		return fmt.Errorf("index recording %s: %w", e.Path, err)
	}
	return nil
}

// Scan walks dir for recording files and reconciles the catalog with disk:
// files present on disk are (re)indexed, catalog rows whose file is gone are
// removed. Corrupt files are skipped with a warning. Returns the number of
// files indexed.
func (c *Catalog) Scan(ctx context.Context, dir string) (int, error) {
	onDisk := make(map[string]bool)
	indexed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		rec, err := recfile.Load(path)
		if err != nil {
			if recfile.IsCorrupt(err) {
				slog.Warn("skipping corrupt recording", "path", path, "error", err)
				return nil
			}
			return err
		}
		onDisk[path] = true
		id := rec.ID
		if id == "" {
			// Recordings written before IDs existed are keyed by path.
			id = path
		}
		if err := c.Index(ctx, Entry{
			ID:           id,
			Path:         path,
			RecordedAt:   rec.RecordedAt,
			PointerCount: len(rec.Pointer),
			KeyCount:     len(rec.Keys),
			Duration:     rec.TotalDuration,
		}); err != nil {
			return err
		}
		indexed++
		return nil
	})
	if err != nil {
		return indexed, fmt.Errorf("scan %s: %w", dir, err)
	}

	stale, err := c.List(ctx)
	if err != nil {
		return indexed, err
	}
	for _, e := range stale {
		if !onDisk[e.Path] {
			if _, err := c.db.ExecContext(ctx,
				`DELETE FROM recordings WHERE path = ?`, e.Path); err != nil {
				return indexed, fmt.Errorf("prune %s: %w", e.Path, err)
			}
		}
	}
	return indexed, nil
}

// List returns all cataloged recordings, newest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, path, recorded_at, pointer_count, key_count, duration_seconds
		FROM recordings ORDER BY recorded_at DESC, path`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.Path, &recordedAt,
			&e.PointerCount, &e.KeyCount, &e.Duration); err != nil {
			return nil, fmt.Errorf("scan recording row: %w", err)
		}
		t, err := time.Parse(time.RFC3339, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		e.RecordedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
