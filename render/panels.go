package render

import (
	"fmt"
	"io"
	"strconv"

	"cine-stats/catalog"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// HeadRows is the number of rows shown by the head panel.
const HeadRows = 10

const maxCellWidth = 32

// WriteHead prints the first HeadRows rows of t.
func WriteHead(w io.Writer, t *catalog.Table) {
	records := t.Head(HeadRows).Records()
	if len(records) == 0 {
		return
	}

	fmt.Fprintln(w, color.CyanString("\nFirst %d rows", len(records)-1))
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(records[0])
	for _, record := range records[1:] {
		row := make([]string, len(record))
		for i, cell := range record {
			row[i] = truncate(cell, maxCellWidth)
		}
		table.Append(row)
	}
	table.Render()
}

// WriteInfo prints the shape, column types and missing counts as read.
func WriteInfo(w io.Writer, info catalog.Info) {
	fmt.Fprintln(w, color.CyanString("\nDataset info"))
	fmt.Fprintf(w, "Shape: %d rows x %d columns\n", info.Rows, info.Cols)

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "Column", "Type", "Missing"})
	for i, name := range info.Columns {
		missing := "-"
		if n, ok := info.Nulls[name]; ok {
			missing = strconv.Itoa(n)
		}
		table.Append([]string{strconv.Itoa(i), name, string(info.Types[i]), missing})
	}
	table.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
