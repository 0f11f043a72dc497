package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Force bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Discard every pending mutation (destructive)",
		Long: `Discard every pending mutation and persist the empty queue.

The discarded writes are permanently lost; they will never reach the
remote database. Requires --force.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "confirm the permanent loss of pending writes")

	return cmd
}

func runClear(cmd *cobra.Command, opts *ClearOptions) error {
	if !opts.Force {
		return WrapExitError(ExitCommandError, "clear permanently discards pending writes; pass --force to confirm", nil)
	}

	app, cleanup, err := buildApp(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	discarded := app.Queue.Clear(cmd.Context())

	if opts.Format == "json" {
		return formatter.Success(map[string]int{"discarded": discarded})
	}
	return formatter.Success(fmt.Sprintf("discarded %d pending mutations", discarded))
}
