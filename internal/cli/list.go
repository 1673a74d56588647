package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkazmin/macroplay/internal/library"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Dir string
}

// ListEntry is the JSON payload for one cataloged recording.
type ListEntry struct {
	ID            string  `json:"id"`
	Path          string  `json:"path"`
	RecordedAt    string  `json:"recorded_at"`
	PointerEvents int     `json:"pointer_events"`
	KeyEvents     int     `json:"key_events"`
	Duration      float64 `json:"duration_seconds"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recordings in the output directory",
		Long: `Scan the output directory, reconcile the recording catalog with the
files on disk, and list the result newest first.

Examples:
  macroplay list
  macroplay list --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "recording directory (overrides config)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	dir := cfg.OutputDir
	if opts.Dir != "" {
		dir = opts.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create recording directory", err)
	}

	catalog, err := library.Open(cfg.LibraryPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open recording catalog", err)
	}
	defer catalog.Close()

	ctx := context.Background()
	if _, err := catalog.Scan(ctx, dir); err != nil {
		return WrapExitError(ExitCommandError, "failed to scan recordings", err)
	}
	entries, err := catalog.List(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list recordings", err)
	}

	if opts.Format == "json" {
		out := make([]ListEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, ListEntry{
				ID:            e.ID,
				Path:          e.Path,
				RecordedAt:    e.RecordedAt.Format(time.RFC3339),
				PointerEvents: e.PointerCount,
				KeyEvents:     e.KeyCount,
				Duration:      e.Duration,
			})
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no recordings found in %s\n", dir)
		return nil
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECORDED\tDURATION\tPOINTER\tKEYS\tPATH")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%.2fs\t%d\t%d\t%s\n",
			e.RecordedAt.Format("2006-01-02 15:04:05"),
			e.Duration, e.PointerCount, e.KeyCount, e.Path)
	}
	return w.Flush()
}
