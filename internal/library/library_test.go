package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkazmin/macroplay/internal/event"
	"github.com/dkazmin/macroplay/internal/recfile"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func writeRecording(t *testing.T, dir, name, id string, recordedAt time.Time) string {
	t.Helper()
	rec := &event.Recording{
		ID: id,
		Pointer: []event.Pointer{
			event.MoveRelative{DX: 1, DY: 1, T: 0.1},
		},
		Keys: []event.Key{
			{Kind: event.KeyPress, Name: "a", T: 0.2},
		},
		TotalDuration: 1.0,
		RecordedAt:    recordedAt,
		Mode:          event.Mode,
	}
	path := filepath.Join(dir, name)
	require.NoError(t, recfile.Save(rec, path))
	return path
}

func TestCatalog_IndexAndList(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	older := Entry{
		ID: "rec-1", Path: "/tmp/a.json",
		RecordedAt:   time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		PointerCount: 3, KeyCount: 1, Duration: 2.5,
	}
	newer := Entry{
		ID: "rec-2", Path: "/tmp/b.json",
		RecordedAt:   time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		PointerCount: 1, KeyCount: 0, Duration: 0.5,
	}
	require.NoError(t, c.Index(ctx, older))
	require.NoError(t, c.Index(ctx, newer))

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "rec-2", entries[0].ID)
	assert.Equal(t, "rec-1", entries[1].ID)
	assert.True(t, entries[0].RecordedAt.Equal(newer.RecordedAt))
}

func TestCatalog_IndexUpsertsByPath(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	e := Entry{ID: "rec-1", Path: "/tmp/a.json", RecordedAt: time.Now().UTC(), PointerCount: 1}
	require.NoError(t, c.Index(ctx, e))
	e.PointerCount = 9
	require.NoError(t, c.Index(ctx, e))

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 9, entries[0].PointerCount)
}

func TestCatalog_ScanIndexesDirectory(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeRecording(t, dir, "replay_one.json", "id-one", time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))
	writeRecording(t, dir, "replay_two.json", "id-two", time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
	// Non-recording files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	n, err := c.Scan(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "id-two", entries[0].ID)
	assert.Equal(t, 1, entries[0].PointerCount)
	assert.Equal(t, 1, entries[0].KeyCount)
	assert.Equal(t, 1.0, entries[0].Duration)
}

func TestCatalog_ScanSkipsCorruptFiles(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeRecording(t, dir, "replay_ok.json", "id-ok", time.Now().UTC())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "replay_bad.json"), []byte("{broken"), 0o644))

	n, err := c.Scan(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "id-ok", entries[0].ID)
}

func TestCatalog_ScanPrunesDeletedFiles(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()
	dir := t.TempDir()

	keep := writeRecording(t, dir, "replay_keep.json", "id-keep", time.Now().UTC())
	gone := writeRecording(t, dir, "replay_gone.json", "id-gone", time.Now().UTC())

	_, err := c.Scan(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))

	_, err = c.Scan(ctx, dir)
	require.NoError(t, err)

	entries, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, keep, entries[0].Path)
}
