package command

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/jacoelho/modelgraph"
	mgerrors "github.com/jacoelho/modelgraph/errors"
	"github.com/jacoelho/modelgraph/internal/diff"
)

func (cli *CLI) summary(path string, doc *modelgraph.Document) {
	m := doc.Model()
	_, _ = fmt.Fprintf(cli.Out, "%s: %d packages, %d classes, %d properties, %d associations, %d constraints\n",
		path, len(m.Packages()), len(m.Classes()), len(m.Properties()), len(m.Associations()), len(m.Constraints()))
}

func severityLabel(s mgerrors.Severity) string {
	switch s {
	case mgerrors.SeverityError:
		return color.RedString("ERROR")
	case mgerrors.SeverityWarning:
		return color.YellowString("WARN ")
	case mgerrors.SeverityInfo:
		return color.CyanString("INFO ")
	default:
		return color.New(color.Faint).Sprint("DEBUG")
	}
}

func printDiagnostics(w io.Writer, diags mgerrors.DiagnosticList) {
	for _, d := range diags {
		line := fmt.Sprintf("%s [%s]", severityLabel(d.Severity), d.Code)
		if d.Subject != "" {
			line += " " + d.Subject + ":"
		}
		line += " " + d.Message
		if d.Line > 0 {
			line += fmt.Sprintf(" (line %d, column %d)", d.Line, d.Column)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func printDifferences(w io.Writer, results []*modelgraph.DiffResult) {
	for _, r := range results {
		if r.Empty() {
			_, _ = fmt.Fprintf(w, "%s: no differences\n", Highlight("%s", r.Schema))
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %d differences\n", Highlight("%s", r.Schema), len(r.Differences))
		for _, d := range r.Differences {
			_, _ = fmt.Fprintf(w, "  %s %s\n", opMarker(d.Op), d)
		}
	}
}

func opMarker(op diff.Operation) string {
	switch op {
	case diff.OpInsert:
		return color.GreenString("+")
	case diff.OpDelete:
		return color.RedString("-")
	default:
		return color.YellowString("~")
	}
}
