package cli

import (
	"github.com/spf13/cobra"
)

// NewDrainCommand creates the drain command.
func NewDrainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Replay pending mutations against the remote service",
		Long: `Replay every pending mutation in insertion order, removing the ones
the remote service accepts. Failed mutations stay queued for the next
drain. A no-op while offline.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrain(cmd, rootOpts)
		},
	}

	return cmd
}

// drainResult is the command's JSON output shape.
type drainResult struct {
	Online    bool `json:"online"`
	Attempted int  `json:"attempted"`
	Applied   int  `json:"applied"`
	Retained  int  `json:"retained"`
}

func runDrain(cmd *cobra.Command, opts *RootOptions) error {
	app, cleanup, err := buildApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	stats := app.Queue.Drain(cmd.Context())
	result := drainResult{
		Online:    app.Queue.Online(),
		Attempted: stats.Attempted,
		Applied:   stats.Applied,
		Retained:  stats.Retained,
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if !result.Online {
		if err := formatter.Successf("offline, nothing drained (%d pending)", app.Queue.Len()); err != nil {
			return err
		}
	} else if err := formatter.Successf("applied %d of %d, %d retained", stats.Applied, stats.Attempted, stats.Retained); err != nil {
		return err
	}

	if stats.Retained > 0 {
		return WrapExitError(ExitFailure, "some mutations were retained", nil)
	}
	return nil
}
