package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkazmin/macroplay/internal/inject"
	"github.com/dkazmin/macroplay/internal/notify"
	"github.com/dkazmin/macroplay/internal/recfile"
	"github.com/dkazmin/macroplay/internal/replay"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Sensitivity float64
	StartDelay  float64
}

// PlayResult is the JSON payload for --format json.
type PlayResult struct {
	File   string `json:"file"`
	Total  int    `json:"total_events"`
	Played int    `json:"played_events"`
	Failed int    `json:"failed_events"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <recording>",
		Short: "Replay a stored recording",
		Long: `Replay a recording at its original cadence. Pointer motion is scaled
by the sensitivity multiplier; a start delay gives the operator time to
focus the target window before the first event fires.

Exit codes:
  0 - Replay completed
  1 - Replay cancelled
  2 - Command error (recording missing or corrupt, injection unavailable)

Examples:
  macroplay play routes_out/replay_2026-08-30_14-03-22.json
  macroplay play recording.json --sensitivity 0.7 --start-delay 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.Sensitivity, "sensitivity", 0, "pointer motion multiplier (default from config)")
	cmd.Flags().Float64Var(&opts.StartDelay, "start-delay", -1, "seconds to wait before replaying (default from config)")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command, path string) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	sensitivity := cfg.Sensitivity
	if cmd.Flags().Changed("sensitivity") {
		sensitivity = opts.Sensitivity
	}
	startDelay := cfg.StartDelaySeconds
	if cmd.Flags().Changed("start-delay") {
		startDelay = opts.StartDelay
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

	injector, err := inject.New()
	if err != nil {
		return WrapExitError(ExitCommandError, "input injection unavailable", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sink notify.Sink = &notify.Console{W: cmd.OutOrStdout()}
	if opts.Format == "json" {
		sink = notify.Nop{}
	}

	engine := replay.New(injector, sink)
	res := <-engine.PlayAsync(ctx, rec, replay.Options{
		Sensitivity: sensitivity,
		StartDelay:  time.Duration(startDelay * float64(time.Second)),
	})

	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			return NewExitError(ExitFailure,
				fmt.Sprintf("replay cancelled after %d/%d events", res.Summary.Played, res.Summary.Total))
		}
		return WrapExitError(ExitFailure, "replay failed", res.Err)
	}

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(PlayResult{
			File:   path,
			Total:  res.Summary.Total,
			Played: res.Summary.Played,
			Failed: res.Summary.Failed,
		})
	}
	return nil
}
