package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielsv/farmaq/internal/outbox"
)

// SubmitOptions holds flags for the submit command.
type SubmitOptions struct {
	*RootOptions
	Payload string
	Offline bool
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit <table> <insert|update|delete>",
		Short: "Submit one mutation, applying it remotely or queuing it",
		Long: `Submit one mutation against a remote table.

When the client believes it is online the write is attempted immediately;
otherwise (or when the attempt fails on a transient error) it is queued
durably and replayed on the next drain.

Examples:
  farmaq submit medicines insert --payload '{"id":"med-1","name":"Paracetamol 500mg","price":2.5,"stock":40}'
  farmaq submit medicines update --payload '{"id":"med-1","stock":35}'
  farmaq submit sales delete --payload '{"id":"sale-9"}'`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Payload, "payload", "{}", "row data as JSON")
	cmd.Flags().BoolVar(&opts.Offline, "offline", false, "skip the immediate attempt and queue directly")

	return cmd
}

// submitResult is the command's JSON output shape.
type submitResult struct {
	Result  string `json:"result"`
	Pending int    `json:"pending"`
}

func runSubmit(cmd *cobra.Command, opts *SubmitOptions, table, op string) error {
	var payload map[string]any
	if err := json.Unmarshal([]byte(opts.Payload), &payload); err != nil {
		return WrapExitError(ExitCommandError, "invalid --payload JSON", err)
	}

	app, cleanup, err := buildApp(cmd.Context(), opts.RootOptions)
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.Offline {
		app.Queue.SetOnline(false)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	result, err := app.Queue.Submit(cmd.Context(), table, outbox.Op(op), payload)
	if err != nil {
		_ = formatter.Error(err.Error())
		return WrapExitError(ExitFailure, fmt.Sprintf("mutation %s", result), err)
	}

	if opts.Format == "json" {
		return formatter.Success(submitResult{Result: string(result), Pending: app.Queue.Len()})
	}
	return formatter.Successf("%s (%d pending)", result, app.Queue.Len())
}
