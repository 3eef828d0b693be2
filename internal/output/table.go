package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/subsort/subsort/pkg/types"
)

// tableColumns are the well-known fields with dedicated columns;
// everything else stays in the structured formats.
var tableColumns = []string{"status_code", "server_info", "title"}

// TableFormatter renders a console summary table.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, records []types.ScanRecord, _ []string) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{"Subdomain"}, tableColumns...))
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")

	// Records complete in arbitrary order; sort for a stable view.
	sorted := make([]types.ScanRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Target < sorted[j].Target })

	for _, rec := range sorted {
		row := []string{string(rec.Target)}
		for _, col := range tableColumns {
			v, ok := rec.Fields[col]
			if !ok || v == nil {
				row = append(row, "-")
				continue
			}
			cell := cellValue(v)
			if col == "status_code" {
				cell = colorStatus(v)
			}
			if len(cell) > 60 {
				cell = cell[:57] + "..."
			}
			row = append(row, cell)
		}
		table.Append(row)
	}

	table.Render()
	fmt.Fprintf(w, "\nTotal: %d subdomains processed\n", len(records))
	return nil
}

func colorStatus(v any) string {
	code, ok := v.(int)
	if !ok {
		return cellValue(v)
	}
	switch {
	case code >= 200 && code < 300:
		return color.GreenString("%d", code)
	case code >= 300 && code < 400:
		return color.YellowString("%d", code)
	default:
		return color.RedString("%d", code)
	}
}
