package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dkazmin/macroplay/internal/capture"
	"github.com/dkazmin/macroplay/internal/notify"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Dir string
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Run the background input recorder",
		Long: `Run the background recorder. The recorder starts idle; the first
reserved control key starts a recording, the second stops it and writes the
file. Interrupt (Ctrl-C) exits, stopping any recording in progress.

Examples:
  macroplay record
  macroplay record --dir ./routes_out`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "recording output directory (overrides config)")

	return cmd
}

func runRecord(opts *RecordOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	dir := cfg.OutputDir
	if opts.Dir != "" {
		dir = opts.Dir
	}
	reserved := cfg.ReservedKeys
	if len(reserved) == 0 {
		reserved = capture.DefaultReservedKeys
	}
	startKey := reserved[0]
	stopKey := reserved[len(reserved)-1]

	source, err := capture.NewPlatformSource()
	if err != nil {
		return WrapExitError(ExitCommandError, "input capture unavailable", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sink := &notify.Console{W: cmd.OutOrStdout()}
	var session *capture.Session
	session = capture.NewSession(capture.Options{
		Dir:          dir,
		ReservedKeys: reserved,
		Sink:         sink,
		OnControl: func(name string) {
			switch {
			case name == startKey && !session.Recording():
				session.Start()
				sink.Notify(fmt.Sprintf("recording started, press %s to stop", stopKey))
			case name == stopKey:
				if _, err := session.Stop(); err != nil {
					slog.Error("failed to save recording", "error", err)
				}
			}
		},
	})

	fmt.Fprintf(cmd.OutOrStdout(),
		"recorder running: %s starts a recording, %s stops it, Ctrl-C exits\n",
		startKey, stopKey)

	runErr := source.Run(ctx, session)

	// Flush a recording left open by an interrupt.
	if _, err := session.Stop(); err != nil {
		slog.Error("failed to save recording", "error", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return WrapExitError(ExitCommandError, "input listener failed", runErr)
	}
	return nil
}
