// Package report renders triage outcomes as terminal tables, CSV, Markdown
// and JSON, and writes the eligible hand-off file.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ppiankov/docketsift/internal/model"
	"github.com/ppiankov/docketsift/internal/pipeline"
)

const detailWidth = 60

// Renderer writes triage outcomes
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a renderer printing tables to out
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// NewTable creates a rounded table writer mirrored to w. A nil w gives a
// table that is only rendered to strings.
func NewTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if w != nil {
		t.SetOutputMirror(w)
	}
	return t
}

// outcomeTable builds the per-case table
func outcomeTable(w io.Writer, outcomes []pipeline.Outcome, truncate bool) table.Writer {
	t := NewTable(w)
	t.AppendHeader(table.Row{"Case", "Court", "Eligible", "Reason", "Detail", "Reused"})
	if truncate {
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Detail", WidthMax: detailWidth, WidthMaxEnforcer: text.Trim},
		})
	}

	for _, o := range outcomes {
		t.AppendRow(table.Row{
			o.Decision.CaseID,
			o.Court,
			yesNo(o.Decision.Eligible),
			string(o.Decision.Reason),
			o.Decision.Detail,
			yesNo(o.Skipped),
		})
	}
	return t
}

// countsTable builds the per-reason summary, largest count first
func countsTable(w io.Writer, counts map[model.FilterReason]int) table.Writer {
	type row struct {
		reason model.FilterReason
		n      int
	}
	rows := make([]row, 0, len(counts))
	total := 0
	for reason, n := range counts {
		rows = append(rows, row{reason, n})
		total += n
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].reason < rows[j].reason
	})

	t := NewTable(w)
	t.AppendHeader(table.Row{"Reason", "Cases"})
	for _, r := range rows {
		t.AppendRow(table.Row{string(r.reason), r.n})
	}
	t.AppendFooter(table.Row{"Total", total})
	return t
}

// RenderSummary prints the outcome table and the per-reason counts
func (r *Renderer) RenderSummary(res *pipeline.Result, verbose bool) {
	if verbose || len(res.Outcomes) <= 50 {
		outcomeTable(r.out, res.Outcomes, true).Render()
		fmt.Fprintln(r.out)
	}
	countsTable(r.out, res.Counts).Render()

	fmt.Fprintf(r.out, "\nClassified: %d  Reused: %d  Eligible: %d  Companion records: %d\n",
		res.Classified, res.Skipped, len(res.Eligible), res.Companion)
	if res.Backfilled > 0 {
		fmt.Fprintf(r.out, "Judgment flag backfilled: %d\n", res.Backfilled)
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(r.out, "Not in store: %s\n", strings.Join(res.Missing, ", "))
	}
}

// RenderStoreCounts prints the outcome tally across the whole store
func (r *Renderer) RenderStoreCounts(counts map[model.FilterReason]int) {
	labeled := make(map[model.FilterReason]int, len(counts))
	for reason, n := range counts {
		if reason == "" {
			reason = "unclassified"
		}
		labeled[reason] += n
	}

	fmt.Fprintln(r.out, "\nStore totals")
	countsTable(r.out, labeled).Render()
}

// RenderCSV writes the outcome table as CSV
func (r *Renderer) RenderCSV(outcomes []pipeline.Outcome, path string) error {
	csv := outcomeTable(nil, outcomes, false).RenderCSV()
	return writeFile(path, []byte(csv+"\n"))
}

// RenderMarkdown writes the outcome table and counts as Markdown
func (r *Renderer) RenderMarkdown(res *pipeline.Result, path string) error {
	var b strings.Builder
	b.WriteString("# Triage outcomes\n\n")
	fmt.Fprintf(&b, "%d cases, %d eligible.\n\n", len(res.Outcomes), len(res.Eligible))
	b.WriteString(countsTable(nil, res.Counts).RenderMarkdown())
	b.WriteString("\n\n")
	b.WriteString(outcomeTable(nil, res.Outcomes, false).RenderMarkdown())
	b.WriteString("\n")
	return writeFile(path, []byte(b.String()))
}

// RenderJSON writes the decisions as a JSON array
func (r *Renderer) RenderJSON(outcomes []pipeline.Outcome, path string) error {
	decisions := make([]model.Decision, 0, len(outcomes))
	for _, o := range outcomes {
		decisions = append(decisions, o.Decision)
	}
	return writeJSON(path, decisions)
}

// WriteHandoff writes the eligible records for the downstream steps
func (r *Renderer) WriteHandoff(records []model.CaseRecord, path string) error {
	if records == nil {
		records = []model.CaseRecord{}
	}
	return writeJSON(path, records)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
