// Package report renders run results for the terminal: summary tables after a
// run and a live console while a program plays.
package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/specialistvlad/flowgrid/internal/engine"
	"github.com/specialistvlad/flowgrid/internal/execctx"
	"github.com/specialistvlad/flowgrid/internal/graph"
	"github.com/specialistvlad/flowgrid/internal/value"
)

// Mode controls the table format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode reads "table" or "markdown".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "table", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return ASCII, fmt.Errorf("unknown report format %q, expected table or markdown", s)
}

func newTable(m Mode, title string) table.Writer {
	w := table.NewWriter()
	w.SetTitle(title)
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	w.Style().Format.Footer = text.FormatDefault
	return w
}

func render(m Mode, w table.Writer) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Path renders the execution path, one row per step. g supplies node types
// and may be nil.
func Path(m Mode, run engine.RunResult, g *graph.Graph) string {
	w := newTable(m, "Execution path")
	w.AppendHeader(table.Row{"#", "Node", "Type"})
	for i, id := range run.ExecutionPath {
		typ := ""
		if g != nil {
			if n, ok := g.Node(id); ok {
				typ = n.Type.String()
			}
		}
		w.AppendRow(table.Row{i + 1, id, typ})
	}
	status := "completed"
	switch {
	case run.Err != nil:
		status = "failed"
	case !run.IsComplete:
		status = "stopped"
	}
	w.AppendFooter(table.Row{"", "steps", fmt.Sprintf("%d (%s)", run.Steps, status)})
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	return render(m, w)
}

// Variables renders the variables of a snapshot sorted by name.
func Variables(m Mode, snap execctx.Snapshot) string {
	w := newTable(m, "Variables")
	w.AppendHeader(table.Row{"Name", "Value"})
	for _, name := range slices.Sorted(maps.Keys(snap.Variables)) {
		w.AppendRow(table.Row{name, value.Format(snap.Variables[name])})
	}
	return render(m, w)
}

// Console renders the console lines of a snapshot. Debug lines are only
// included when debug is set.
func Console(m Mode, snap execctx.Snapshot, debug bool) string {
	w := newTable(m, "Console")
	w.AppendHeader(table.Row{"Kind", "Text"})
	for _, c := range snap.Console {
		if c.Kind == execctx.Debug && !debug {
			continue
		}
		w.AppendRow(table.Row{string(c.Kind), c.Text})
	}
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	return render(m, w)
}

// Summary renders every table for a finished run.
func Summary(m Mode, run engine.RunResult, g *graph.Graph, debug bool) string {
	parts := []string{
		Path(m, run, g),
		Variables(m, run.Context),
		Console(m, run.Context, debug),
	}
	if run.Err != nil {
		parts = append(parts, fmt.Sprintf("Error at node %s: %v", run.ErrorNodeID, run.Err))
	}
	return strings.Join(parts, "\n\n") + "\n"
}
