package report

import (
	"image/color"
	"math"
)

// Kind selects how a Figure is drawn.
type Kind int

const (
	Bar Kind = iota
	HorizontalBar
	Line
	Area
	StackedBar
	Histogram
	Heatmap
)

func (k Kind) String() string {
	switch k {
	case Bar:
		return "bar"
	case HorizontalBar:
		return "barh"
	case Line:
		return "line"
	case Area:
		return "area"
	case StackedBar:
		return "stacked bar"
	case Histogram:
		return "histogram"
	case Heatmap:
		return "heatmap"
	}
	return "unknown"
}

// Series is one named run of values aligned with Figure.Labels.
type Series struct {
	Name   string
	Values []float64
}

// Figure is a prepared summary together with its presentation settings.
type Figure struct {
	Name   string
	Title  string
	XLabel string
	YLabel string
	Kind   Kind
	Colors []color.Color

	// Labels and Series back every kind except Histogram and Heatmap.
	Labels []string
	Series []Series

	// Samples are bucketed into Bins equal width bins by Histogram figures.
	Samples []float64
	Bins    int

	// Matrix is indexed [row][col] and labelled by Labels on both axes.
	Matrix [][]float64
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool {
	switch f.Kind {
	case Histogram:
		return len(f.Samples) == 0
	case Heatmap:
		return len(f.Matrix) == 0
	}
	return len(f.Labels) == 0 || len(f.Series) == 0
}

// CategoryAxis returns the label of the axis carrying Labels.
func (f Figure) CategoryAxis() string {
	if f.Kind == HorizontalBar {
		return f.YLabel
	}
	return f.XLabel
}

// Color returns the i-th configured colour, cycling, or nil when none are set.
func (f Figure) Color(i int) color.Color {
	if len(f.Colors) == 0 {
		return nil
	}
	return f.Colors[i%len(f.Colors)]
}

// Total sums the first series, ignoring NaN cells.
func (f Figure) Total() float64 {
	if len(f.Series) == 0 {
		return 0
	}
	var total float64
	for _, v := range f.Series[0].Values {
		if !math.IsNaN(v) {
			total += v
		}
	}
	return total
}

// Named colours used by the charts.
var (
	SkyBlue     = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	Salmon      = color.RGBA{R: 250, G: 128, B: 114, A: 255}
	Teal        = color.RGBA{R: 0, G: 128, B: 128, A: 255}
	ForestGreen = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	Purple      = color.RGBA{R: 128, G: 0, B: 128, A: 255}
	DarkBlue    = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	Coral       = color.RGBA{R: 255, G: 127, B: 80, A: 255}
	Orange      = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	Grey        = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)
