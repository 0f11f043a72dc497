package cli

import (
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "status",
		Short:         "Show believed connectivity and queue depth",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, rootOpts)
		},
	}

	return cmd
}

// statusResult is the command's JSON output shape.
type statusResult struct {
	Online  bool   `json:"online"`
	Pending int    `json:"pending"`
	Remote  string `json:"remote"`
}

func runStatus(cmd *cobra.Command, opts *RootOptions) error {
	app, cleanup, err := buildApp(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	result := statusResult{
		Online:  app.Queue.Online(),
		Pending: app.Queue.Len(),
		Remote:  app.Config.Remote.URL,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	state := "offline"
	if result.Online {
		state = "online"
	}
	return formatter.Successf("%s, %d pending (remote %s)", state, result.Pending, result.Remote)
}
