package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"cine-stats/report"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/plotter"
)

// TableRenderer prints figures as text tables.
type TableRenderer struct {
	w io.Writer
}

func NewTableRenderer(w io.Writer) *TableRenderer {
	return &TableRenderer{w: w}
}

func (r *TableRenderer) Render(fig report.Figure) error {
	if fig.Empty() {
		return errors.Wrapf(ErrNothingToPlot, "%s", fig.Title)
	}

	var (
		header []string
		rows   [][]string
		err    error
	)
	switch fig.Kind {
	case report.Histogram:
		header, rows, err = histogramRows(fig)
	case report.Heatmap:
		header, rows = matrixRows(fig)
	default:
		header, rows = seriesRows(fig)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to tabulate %s", fig.Name)
	}

	fmt.Fprintf(r.w, "\n%s\n", fig.Title)
	table := tablewriter.NewWriter(r.w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

func seriesRows(fig report.Figure) ([]string, [][]string) {
	header := []string{fig.CategoryAxis()}
	if len(fig.Series) == 1 {
		header = append(header, valueHeader(fig))
	} else {
		for _, s := range fig.Series {
			header = append(header, s.Name)
		}
	}

	rows := make([][]string, len(fig.Labels))
	for i, label := range fig.Labels {
		row := []string{label}
		for _, s := range fig.Series {
			row = append(row, formatValue(s.Values[i]))
		}
		rows[i] = row
	}
	return header, rows
}

// histogramRows buckets samples the same way the png histogram does.
func histogramRows(fig report.Figure) ([]string, [][]string, error) {
	bins := fig.Bins
	if bins <= 0 {
		bins = 10
	}
	hist, err := plotter.NewHist(plotter.Values(fig.Samples), bins)
	if err != nil {
		return nil, nil, err
	}

	rows := make([][]string, len(hist.Bins))
	for i, b := range hist.Bins {
		rows[i] = []string{
			fmt.Sprintf("%s - %s", formatValue(b.Min), formatValue(b.Max)),
			formatValue(b.Weight),
		}
	}
	return []string{fig.XLabel, fig.YLabel}, rows, nil
}

func matrixRows(fig report.Figure) ([]string, [][]string) {
	header := append([]string{""}, fig.Labels...)
	rows := make([][]string, len(fig.Matrix))
	for i, values := range fig.Matrix {
		row := []string{fig.Labels[i]}
		for _, v := range values {
			row = append(row, formatValue(v))
		}
		rows[i] = row
	}
	return header, rows
}

func valueHeader(fig report.Figure) string {
	if fig.Kind == report.HorizontalBar {
		return fig.XLabel
	}
	return fig.YLabel
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case v == math.Trunc(v):
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}
