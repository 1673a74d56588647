package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkazmin/macroplay/internal/recfile"
)

// InspectResult is the JSON payload for the inspect command.
type InspectResult struct {
	ID            string  `json:"id,omitempty"`
	Path          string  `json:"path"`
	RecordedAt    string  `json:"recorded_at,omitempty"`
	Mode          string  `json:"mode"`
	PointerEvents int     `json:"pointer_events"`
	KeyEvents     int     `json:"key_events"`
	Duration      float64 `json:"duration_seconds"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "inspect <recording>",
		Short:         "Show a recording's metadata without replaying it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, cmd *cobra.Command, path string) error {
	if _, err := loadConfig(opts); err != nil {
		return err
	}

	rec, err := recfile.Load(path)
	switch {
	case recfile.IsNotFound(err):
		return WrapExitError(ExitCommandError, "recording not found", err)
	case recfile.IsCorrupt(err):
		return WrapExitError(ExitCommandError, "recording is corrupt", err)
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to load recording", err)
	}

	result := InspectResult{
		ID:            rec.ID,
		Path:          path,
		Mode:          rec.Mode,
		PointerEvents: len(rec.Pointer),
		KeyEvents:     len(rec.Keys),
		Duration:      rec.TotalDuration,
	}
	if !rec.RecordedAt.IsZero() {
		result.RecordedAt = rec.RecordedAt.Format(time.RFC3339)
	}

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "recording: %s\n", path)
	if result.ID != "" {
		fmt.Fprintf(out, "id:        %s\n", result.ID)
	}
	if result.RecordedAt != "" {
		fmt.Fprintf(out, "recorded:  %s\n", result.RecordedAt)
	}
	fmt.Fprintf(out, "mode:      %s\n", result.Mode)
	fmt.Fprintf(out, "events:    %d pointer, %d key\n", result.PointerEvents, result.KeyEvents)
	fmt.Fprintf(out, "duration:  %.2fs\n", result.Duration)
	return nil
}
