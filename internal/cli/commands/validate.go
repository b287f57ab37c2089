package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/structview/structview/internal/cli/output"
	"github.com/structview/structview/internal/engine"
	"github.com/structview/structview/internal/loader"
	"github.com/structview/structview/pkg/core"
	"github.com/structview/structview/pkg/schema"
)

// ErrInvalidModel is returned when a checked model has errors.
var ErrInvalidModel = errors.New("model has validation errors")

const watchDebounce = 100 * time.Millisecond

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Format      string // Output format: text, markdown, json
	InputFormat string // Format of stdin input
	Watch       bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <model>",
		Short: "Check a model's cross-references",
		Long: `Check that every reference in a structural model resolves.

The model is read from a JSON, YAML, HCL or MessagePack file (chosen by
extension) or from stdin when the path is "-". Field-level problems are
reported first; a model that passes them is checked for:
- Duplicate node ids
- Member and panel references to unknown nodes
- Loads targeting unknown elements or load cases
- Combinations naming unknown load cases

Each result is recorded in the history database unless history is disabled.
The command exits non-zero when the model has errors.`,
		Example: `  # Check a model
  structview validate tower.json

  # Re-check whenever the file changes
  structview validate tower.yaml --watch

  # Read YAML from stdin, print JSON
  cat tower.yaml | structview validate - --input-format yaml -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "json", "Format of stdin input: json, yaml, hcl, msgpack")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-check the model when the file changes")

	_ = cmd.RegisterFlagCompletionFunc("input-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml", "hcl", "msgpack"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// ValidateOutput is the rendered result of one check.
type ValidateOutput struct {
	ID      string            `json:"id,omitempty"`
	Project string            `json:"project"`
	Source  string            `json:"source"`
	Valid   bool              `json:"valid"`
	Stage   string            `json:"stage"` // "schema" or "references"
	Errors  []core.Diagnostic `json:"errors"`
}

func runValidate(cmd *cobra.Command, path string, opts *ValidateOptions) error {
	if opts.Watch && path == "-" {
		return errors.New("--watch needs a file path, not stdin")
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.rendererFor(cmd, opts.Format)

	if !opts.Watch {
		out, err := checkModel(cmd.Context(), cmdCtx.Engine, path, cmd.InOrStdin(), opts.InputFormat)
		if err != nil {
			return err
		}
		if err := renderValidate(r, out); err != nil {
			return err
		}
		if !out.Valid {
			return ErrInvalidModel
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchModel(ctx, cmdCtx, r, path)
}

// checkModel loads and checks one model. Load failures are returned as
// errors; schema and reference failures are part of the output.
func checkModel(ctx context.Context, eng *engine.Engine, path string, stdin io.Reader, inputFormat string) (*ValidateOutput, error) {
	var (
		p   *core.Project
		err error
	)
	source := path
	if path == "-" {
		source = "stdin"
		p, err = loader.Decode(stdin, loader.Format(strings.ToLower(inputFormat)))
	} else {
		p, err = loader.LoadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	report, err := eng.Validate(ctx, p, source)
	var fieldErrs schema.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return &ValidateOutput{
			Project: p.Name,
			Source:  source,
			Stage:   "schema",
			Errors:  fieldErrs.Diagnostics(),
		}, nil
	case err != nil:
		return nil, err
	}

	return &ValidateOutput{
		ID:      report.ID,
		Project: report.Project,
		Source:  source,
		Valid:   report.Valid,
		Stage:   "references",
		Errors:  report.Diagnostics,
	}, nil
}

// watchModel re-checks path on every write until ctx is cancelled.
// The parent directory is watched so editors that replace the file on save
// keep triggering events.
func watchModel(ctx context.Context, cmdCtx *CommandContext, r *output.Renderer, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	check := func() {
		out, err := checkModel(ctx, cmdCtx.Engine, abs, nil, "")
		if err != nil {
			r.Error(err.Error())
			return
		}
		if err := renderValidate(r, out); err != nil {
			cmdCtx.Logger.Error("failed to render result", "error", err)
		}
	}

	check()
	r.Muted(fmt.Sprintf("Watching %s (Ctrl+C to stop)", path))

	// Debounce
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cmdCtx.Logger.Debug("model changed", "file", event.Name, "op", event.Op.String())
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			check()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmdCtx.Logger.Error("watcher error", "error", err)
		}
	}
}

func renderValidate(r *output.Renderer, out *ValidateOutput) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(out)
	case output.ModeMarkdown:
		renderValidateMarkdown(r, out)
	default:
		renderValidateText(r, out)
	}
	return nil
}

// diagnosticGroup holds the diagnostics under one top-level path segment.
type diagnosticGroup struct {
	Title string
	Items []core.Diagnostic
}

var titleCaser = cases.Title(language.English)

// groupDiagnostics groups diagnostics by collection, keeping first-seen order.
func groupDiagnostics(diags []core.Diagnostic) []diagnosticGroup {
	var groups []diagnosticGroup
	index := make(map[string]int)
	for _, d := range diags {
		key, _, _ := strings.Cut(d.Path, ".")
		i, ok := index[key]
		if !ok {
			title := titleCaser.String(strings.ReplaceAll(key, "_", " "))
			if title == "" {
				title = "Project"
			}
			i = len(groups)
			index[key] = i
			groups = append(groups, diagnosticGroup{Title: title})
		}
		groups[i].Items = append(groups[i].Items, d)
	}
	return groups
}

func errorCount(n int) string {
	if n == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", n)
}

func stageLabel(stage string) string {
	if stage == "schema" {
		return "field checks"
	}
	return "reference checks"
}

func renderValidateText(r *output.Renderer, out *ValidateOutput) {
	s := r.Styles()
	name := out.Project
	if name == "" {
		name = "(unnamed)"
	}
	r.Println(s.Header1.Render(name) + "  " + s.Path.Render(out.Source))

	if out.Valid {
		r.Success("Model is valid")
		if out.ID != "" {
			r.Muted("Report " + out.ID)
		}
		return
	}

	for _, g := range groupDiagnostics(out.Errors) {
		r.Println("")
		r.Println(s.Header2.Render(g.Title))
		for _, d := range g.Items {
			r.Printf("  %s %s  %s\n", s.StatusFailed.String(), s.Path.Render(d.Path), d.Message)
		}
	}
	r.Println("")
	r.Println(s.Error.Render(fmt.Sprintf("%s in %s", errorCount(len(out.Errors)), stageLabel(out.Stage))))
	if out.ID != "" {
		r.Muted("Report " + out.ID)
	}
}

func renderValidateMarkdown(r *output.Renderer, out *ValidateOutput) {
	r.Header(1, "Validation: "+out.Project)
	r.Printf("**Source:** `%s`\n\n", out.Source)

	if out.Valid {
		r.Println("**Status:** valid")
		if out.ID != "" {
			r.Printf("\n**Report:** `%s`\n", out.ID)
		}
		return
	}

	r.Printf("**Status:** %s in %s\n\n", errorCount(len(out.Errors)), stageLabel(out.Stage))
	for _, g := range groupDiagnostics(out.Errors) {
		r.Header(2, g.Title)
		for _, d := range g.Items {
			r.Printf("- `%s`: %s\n", d.Path, d.Message)
		}
		r.Println("")
	}
	if out.ID != "" {
		r.Printf("**Report:** `%s`\n", out.ID)
	}
}
