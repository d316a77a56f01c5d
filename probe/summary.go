package probe

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteSummary renders one line per attempted step.
func WriteSummary(w io.Writer, report *Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Summary")
	t.AppendHeader(table.Row{"Step", "Status", "Rows", "Detail"})

	for _, step := range report.Steps() {
		t.AppendRow(summaryRow(step, report))
	}
	for _, warning := range report.Warnings {
		t.AppendFooter(table.Row{"warning", "", "", warning})
	}

	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 80},
	})

	_, err := fmt.Fprintln(w)
	if err != nil {
		return err
	}
	t.Render()
	return nil
}

func summaryRow(step Step, report *Report) table.Row {
	switch step {
	case StepCount:
		c := report.Count
		switch {
		case c.Err != nil:
			return table.Row{step, "error", "", describeError(c.Err)}
		case !c.Known:
			return table.Row{step, "ok", "?", "total not reported"}
		default:
			return table.Row{step, "ok", c.Total, ""}
		}
	case StepData:
		return dataRow(step, &report.Data)
	case StepFallback:
		return dataRow(step, report.Fallback)
	case StepReferences:
		refs := report.References
		if refs.Err != nil {
			return table.Row{step, "error", "", describeError(refs.Err)}
		}
		detail := ""
		if len(refs.Missing) > 0 {
			detail = "missing: " + strings.Join(refs.Missing, ",")
		}
		return table.Row{step, "ok", fmt.Sprintf("%d/%d", len(refs.Found), len(refs.Checked)), detail}
	default:
		return table.Row{step}
	}
}

func dataRow(step Step, d *DataResult) table.Row {
	if d.Err != nil {
		return table.Row{step, "error", "", describeError(d.Err)}
	}
	if d.Empty() {
		return table.Row{step, "empty", 0, ""}
	}
	return table.Row{step, "ok", len(d.Records), ""}
}
