package commands

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/structview/structview/internal/cli/output"
	"github.com/structview/structview/internal/loader"
)

// BuildInfo identifies a structview build.
type BuildInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	Formats   []string `json:"model_formats"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, buildDate string) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the structview version, the commit and date it was built from, and the model formats it reads.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := BuildInfo{
				Version:   version,
				Commit:    commit,
				BuildDate: buildDate,
				GoVersion: runtime.Version(),
				Formats: []string{
					string(loader.FormatJSON),
					string(loader.FormatYAML),
					string(loader.FormatHCL),
					string(loader.FormatMsgpack),
				},
			}

			// version output is often grepped, so it is never styled
			r := output.NewRendererWithTTY(cmd.OutOrStdout(), cmd.ErrOrStderr(), false, output.Mode(format))
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Printf("structview v%s\n", info.Version)
			r.Printf("commit:  %s\n", info.Commit)
			r.Printf("built:   %s\n", info.BuildDate)
			r.Printf("go:      %s\n", info.GoVersion)
			r.Printf("formats: %s\n", strings.Join(info.Formats, ", "))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json")
	return cmd
}
