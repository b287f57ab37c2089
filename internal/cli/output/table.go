package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table renders rows as a box table in text mode and as a markdown
// table otherwise.
func (r *Renderer) Table(header []string, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	hr := make(table.Row, len(header))
	for i, h := range header {
		hr[i] = h
	}
	t.AppendHeader(hr)
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
