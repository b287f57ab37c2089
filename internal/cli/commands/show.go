package commands

import (
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <report-id>",
		Short: "Show a recorded validation report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := cmdCtx.Engine.Report(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderValidate(cmdCtx.rendererFor(cmd, format), &ValidateOutput{
				ID:      report.ID,
				Project: report.Project,
				Source:  report.Source,
				Valid:   report.Valid,
				Stage:   "references",
				Errors:  report.Diagnostics,
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, json")
	return cmd
}
