package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPendingCommand creates the pending command.
func NewPendingCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pending",
		Short:         "List mutations waiting for replay",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPending(cmd, rootOpts)
		},
	}

	return cmd
}

func runPending(cmd *cobra.Command, opts *RootOptions) error {
	app, cleanup, err := buildApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	intents := app.Queue.Pending()

	if opts.Format == "json" {
		return formatter.Success(intents)
	}

	if len(intents) == 0 {
		return formatter.Success("no pending mutations")
	}
	for _, intent := range intents {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-6s %-18s %s\n",
			intent.CreatedAt.Format("2006-01-02 15:04:05"), intent.Op, intent.Table, intent.ID)
	}
	return nil
}
