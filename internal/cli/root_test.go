package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/structview/structview/internal/cli/commands"
	"github.com/structview/structview/internal/cli/config"
	clitest "github.com/structview/structview/internal/cli/testutil"
	"github.com/structview/structview/internal/testutil"
	"github.com/structview/structview/pkg/core"
)

// run executes the root command with args and returns stdout and stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	cfgFile = ""

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Help(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"validate", "analyze", "serve", "history", "show", "version", "completion"} {
		assert.Contains(t, out, sub)
	}
}

func TestRoot_Version(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "structview v"+Version)
}

func TestRoot_Completion(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "structview")
}

func TestRoot_InvalidConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := run(t, "-o", "xml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRoot_ValidateAndHistory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	statePath := filepath.Join(dir, "state", "history.db")
	valid := clitest.WriteModel(t, dir, "valid.json", testutil.MinimalProject())

	invalidModel := testutil.MinimalProject()
	invalidModel.Members = append(invalidModel.Members, testutil.Member("m2", "n2", "n2"))
	invalid := clitest.WriteModel(t, dir, "invalid.json", invalidModel)

	out, _, err := run(t, "--state", statePath, "-o", "json", "validate", valid)
	require.NoError(t, err)
	var first commands.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &first))
	assert.True(t, first.Valid)
	require.NotEmpty(t, first.ID)

	out, _, err = run(t, "--state", statePath, "validate", invalid, "-f", "json")
	require.ErrorIs(t, err, commands.ErrInvalidModel)
	var second commands.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	assert.False(t, second.Valid)
	assert.Equal(t, []core.Diagnostic{
		{Path: "members.m2", Message: `Member "m2" has identical start and end nodes`},
	}, second.Errors)

	out, _, err = run(t, "--state", statePath, "-o", "json", "history")
	require.NoError(t, err)
	var summaries []core.ReportSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].ID, "newest first")
	assert.Equal(t, 1, summaries[0].ErrorCount)

	out, _, err = run(t, "--state", statePath, "-o", "markdown", "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "# Validation history")
	assert.Contains(t, out, second.ID)
	assert.NotContains(t, out, first.ID)

	out, _, err = run(t, "--state", statePath, "-o", "markdown", "show", second.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "members.m2")

	_, _, err = run(t, "--state", statePath, "show", "missing")
	require.ErrorIs(t, err, core.ErrNotFound)

	out, _, err = run(t, "--state", statePath, "-o", "json", "history", "--prune-before", "1h")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted": 0}`, out)
}

func TestRoot_HistoryDisabled(t *testing.T) {
	t.Chdir(t.TempDir())

	_, _, err := run(t, "--state", "", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestRoot_Analyze(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := clitest.WriteModel(t, dir, "model.json", testutil.MinimalProject())

	out, _, err := run(t, "-o", "json", "analyze", path)
	require.NoError(t, err)

	var stub core.AnalysisStub
	require.NoError(t, json.Unmarshal([]byte(out), &stub))
	assert.Equal(t, "stub", stub.Status)
	assert.Equal(t, 2, stub.NodeCount)
	assert.Equal(t, 1, stub.MemberCount)
}
