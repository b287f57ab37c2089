package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode OutputMode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"", ModeAuto},
		{"auto", ModeAuto},
		{"TEXT", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{" json ", ModeJSON},
		{"xml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		tty  bool
		want OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto when piped", ModeAuto, false, ModeMarkdown},
		{"explicit text when piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
		{"empty mode", "", false, ModeMarkdown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTTY(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
}

func TestRenderer_Streams(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)

	r.Success("model is valid")
	r.Warning("history disabled")
	r.Error("model is invalid")
	r.Muted("quiet")

	assert.Contains(t, out.String(), "✓ model is valid")
	assert.Contains(t, out.String(), "quiet")
	assert.Contains(t, errOut.String(), "! history disabled")
	assert.Contains(t, errOut.String(), "✗ model is invalid")
	assert.NotContains(t, out.String(), "\x1b[", "no escape codes without a terminal")
}

func TestRenderer_Header(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Members")
	assert.Equal(t, "## Members\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "Report")
	assert.Equal(t, "Report\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]any{"valid": true}))
	assert.JSONEq(t, `{"valid": true}`, out.String())
}

func TestRenderer_Table(t *testing.T) {
	rows := [][]any{{"nodes", "Duplicate node ID"}, {"members.m1", "self loop"}}

	r, out, _ := newTest(ModeMarkdown, false)
	r.Table([]string{"Path", "Message"}, rows)
	assert.Contains(t, out.String(), "| Path | Message |")
	assert.Contains(t, out.String(), "| nodes | Duplicate node ID |")

	r, out, _ = newTest(ModeText, false)
	r.Table([]string{"Path", "Message"}, rows)
	assert.Contains(t, out.String(), "┌")
	assert.Contains(t, out.String(), "members.m1")
}
