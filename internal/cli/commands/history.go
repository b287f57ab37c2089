package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/structview/structview/internal/cli/output"
	"github.com/structview/structview/pkg/core"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Format      string
	Limit       int
	PruneBefore time.Duration
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent validation reports",
		Long: `List validation reports recorded in the history database, newest first.

With --prune-before, reports older than the given age are deleted instead.`,
		Example: `  # Last 20 reports
  structview history

  # Everything, as JSON
  structview history --limit 0 -f json

  # Drop reports older than 30 days
  structview history --prune-before 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of reports (0 for all)")
	cmd.Flags().DurationVar(&opts.PruneBefore, "prune-before", 0, "Delete reports older than this age")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.rendererFor(cmd, opts.Format)

	if opts.PruneBefore > 0 {
		cutoff := time.Now().Add(-opts.PruneBefore)
		n, err := cmdCtx.Engine.Prune(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON(map[string]int64{"deleted": n})
		}
		r.Success(fmt.Sprintf("Deleted %d reports older than %s", n, cutoff.UTC().Format(time.RFC3339)))
		return nil
	}

	summaries, err := cmdCtx.Engine.History(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}
	if summaries == nil {
		summaries = []*core.ReportSummary{}
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(summaries)
	}

	if len(summaries) == 0 {
		r.Muted("No validations recorded")
		return nil
	}

	r.Header(1, "Validation history")
	rows := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		status := "valid"
		if !s.Valid {
			status = "invalid"
		}
		rows = append(rows, []any{
			s.ID,
			s.Project,
			status,
			s.ErrorCount,
			s.Source,
			s.CheckedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	r.Table([]string{"ID", "Project", "Status", "Errors", "Source", "Checked"}, rows)
	return nil
}
