package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkazmin/macroplay/internal/event"
	"github.com/dkazmin/macroplay/internal/recfile"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig points all paths at temp directories so tests never touch
// the real output directory.
func writeTestConfig(t *testing.T) (configPath, outputDir string) {
	t.Helper()
	dir := t.TempDir()
	outputDir = filepath.Join(dir, "recordings")
	configPath = filepath.Join(dir, "config.yaml")
	content := "output_dir: " + outputDir + "\nlibrary_path: " + filepath.Join(dir, "library.db") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath, outputDir
}

func writeTestRecording(t *testing.T, dir string) string {
	t.Helper()
	rec := &event.Recording{
		ID: "test-id",
		Pointer: []event.Pointer{
			event.MoveRelative{DX: 2, DY: 3, T: 0.1},
		},
		Keys: []event.Key{
			{Kind: event.KeyPress, Name: "a", T: 0.2},
			{Kind: event.KeyRelease, Name: "a", T: 0.3},
		},
		TotalDuration: 0.5,
		RecordedAt:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Mode:          event.Mode,
	}
	path := filepath.Join(dir, recfile.Filename(rec.RecordedAt))
	require.NoError(t, recfile.Save(rec, path))
	return path
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "outer", assert.AnError)))
}

func TestPlay_MissingRecordingIsCommandError(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	_, err := execute(t, "--config", configPath, "play", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestPlay_CorruptRecordingIsCommandError(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := execute(t, "--config", configPath, "play", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "corrupt")
}

func TestInspect_TextOutput(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	path := writeTestRecording(t, t.TempDir())

	out, err := execute(t, "--config", configPath, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "test-id")
	assert.Contains(t, out, "1 pointer, 2 key")
	assert.Contains(t, out, "0.50s")
}

func TestInspect_JSONOutput(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	path := writeTestRecording(t, t.TempDir())

	out, err := execute(t, "--config", configPath, "--format", "json", "inspect", path)
	require.NoError(t, err)

	var result InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "test-id", result.ID)
	assert.Equal(t, 1, result.PointerEvents)
	assert.Equal(t, 2, result.KeyEvents)
	assert.Equal(t, 0.5, result.Duration)
	assert.Equal(t, event.Mode, result.Mode)
}

func TestInspect_MissingFile(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	_, err := execute(t, "--config", configPath, "inspect", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestList_EmptyDirectory(t *testing.T) {
	configPath, _ := writeTestConfig(t)
	out, err := execute(t, "--config", configPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no recordings found")
}

func TestList_ShowsRecordings(t *testing.T) {
	configPath, outputDir := writeTestConfig(t)
	require.NoError(t, os.MkdirAll(outputDir, 0o755))
	path := writeTestRecording(t, outputDir)

	out, err := execute(t, "--config", configPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, "0.50s")
}

func TestList_JSONOutput(t *testing.T) {
	configPath, outputDir := writeTestConfig(t)
	require.NoError(t, os.MkdirAll(outputDir, 0o755))
	writeTestRecording(t, outputDir)

	out, err := execute(t, "--config", configPath, "--format", "json", "list")
	require.NoError(t, err)

	var entries []ListEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "test-id", entries[0].ID)
	assert.Equal(t, 1, entries[0].PointerEvents)
	assert.Equal(t, 2, entries[0].KeyEvents)
}

func TestRecord_UnavailableOffWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("capture is available on windows")
	}
	configPath, _ := writeTestConfig(t)
	_, err := execute(t, "--config", configPath, "record")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "input capture unavailable")
}

func TestCommandsAreRegistered(t *testing.T) {
	cmd := NewRootCommand()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"record", "play", "list", "inspect"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
