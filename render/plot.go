package render

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"cine-stats/report"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotConfig sizes and places png charts. Width and Height are in inches.
type PlotConfig struct {
	Dir    string
	Width  float64
	Height float64
}

// PlotRenderer draws figures with gonum/plot and saves them as png files.
type PlotRenderer struct {
	cfg PlotConfig
}

func NewPlotRenderer(cfg PlotConfig) *PlotRenderer {
	if cfg.Width <= 0 {
		cfg.Width = 10
	}
	if cfg.Height <= 0 {
		cfg.Height = 6
	}
	return &PlotRenderer{cfg: cfg}
}

// Path returns the file a figure is written to.
func (r *PlotRenderer) Path(fig report.Figure) string {
	return filepath.Join(r.cfg.Dir, fig.Name+".png")
}

func (r *PlotRenderer) Render(fig report.Figure) error {
	if fig.Empty() {
		return errors.Wrapf(ErrNothingToPlot, "%s", fig.Title)
	}

	p := plot.New()
	p.Title.Text = fig.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel

	var err error
	switch fig.Kind {
	case report.Bar, report.HorizontalBar:
		err = r.addBars(p, fig)
	case report.Line, report.Area:
		err = addLines(p, fig)
	case report.StackedBar:
		err = r.addStackedBars(p, fig)
	case report.Histogram:
		err = addHistogram(p, fig)
	case report.Heatmap:
		err = addHeatmap(p, fig)
	default:
		err = errors.Errorf("unsupported figure kind %s", fig.Kind)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to plot %s", fig.Name)
	}

	if r.cfg.Dir != "" {
		if err := os.MkdirAll(r.cfg.Dir, 0755); err != nil {
			return errors.Wrap(err, "failed to create chart directory")
		}
	}

	path := r.Path(fig)
	if err := p.Save(vg.Length(r.cfg.Width)*vg.Inch, vg.Length(r.cfg.Height)*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}

	log.WithFields(log.Fields{
		"chart": fig.Name,
		"path":  path,
	}).Info("chart written")
	return nil
}

// barWidth spreads n bars over the plot, capped so sparse charts stay readable.
func (r *PlotRenderer) barWidth(n int, horizontal bool) vg.Length {
	span := r.cfg.Width
	if horizontal {
		span = r.cfg.Height
	}
	w := vg.Length(span) * vg.Inch * 0.7 / vg.Length(n)
	if w > vg.Points(40) {
		w = vg.Points(40)
	}
	return w
}

func (r *PlotRenderer) addBars(p *plot.Plot, fig report.Figure) error {
	horizontal := fig.Kind == report.HorizontalBar
	values := plotter.Values(fig.Series[0].Values)
	width := r.barWidth(len(values), horizontal)

	// one chart per bar when each label gets its own colour
	groups := []plotter.Values{values}
	if len(fig.Colors) > 1 {
		groups = groups[:0]
		for i := range values {
			single := make(plotter.Values, len(values))
			single[i] = values[i]
			groups = append(groups, single)
		}
	}

	for i, g := range groups {
		bars, err := plotter.NewBarChart(g, width)
		if err != nil {
			return err
		}
		bars.Horizontal = horizontal
		bars.Color = seriesColor(fig, i)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
	}

	if horizontal {
		p.NominalY(fig.Labels...)
	} else {
		p.NominalX(fig.Labels...)
		rotateTicks(p, len(fig.Labels))
	}
	p.Add(plotter.NewGrid())
	return nil
}

func (r *PlotRenderer) addStackedBars(p *plot.Plot, fig report.Figure) error {
	width := r.barWidth(len(fig.Labels), false)

	var below *plotter.BarChart
	for i, s := range fig.Series {
		values := make(plotter.Values, len(s.Values))
		for j, v := range s.Values {
			if !math.IsNaN(v) {
				values[j] = v
			}
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = seriesColor(fig, i)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars

		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	p.Legend.Top = true
	p.NominalX(fig.Labels...)
	rotateTicks(p, len(fig.Labels))
	return nil
}

// addLines draws one line per series. NaN cells are gaps and are skipped.
func addLines(p *plot.Plot, fig report.Figure) error {
	xs, numeric := axisPositions(fig.Labels)

	for i, s := range fig.Series {
		var points plotter.XYs
		for j, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			points = append(points, plotter.XY{X: xs[j], Y: v})
		}
		if len(points) == 0 {
			continue
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return err
		}
		line.Color = seriesColor(fig, i)
		line.Width = vg.Points(2)
		if fig.Kind == report.Area {
			line.FillColor = withAlpha(seriesColor(fig, i), 0x99)
		}

		p.Add(line)
		if len(fig.Series) > 1 {
			p.Legend.Add(s.Name, line)
		}
	}

	if !numeric {
		p.NominalX(fig.Labels...)
	}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return nil
}

func addHistogram(p *plot.Plot, fig report.Figure) error {
	bins := fig.Bins
	if bins <= 0 {
		bins = 10
	}

	hist, err := plotter.NewHist(plotter.Values(fig.Samples), bins)
	if err != nil {
		return err
	}
	hist.FillColor = seriesColor(fig, 0)
	hist.LineStyle.Color = color.Black
	hist.LineStyle.Width = vg.Points(0.5)
	p.Add(hist)
	return nil
}

func addHeatmap(p *plot.Plot, fig report.Figure) error {
	grid := correlationGrid(fig.Matrix)
	heat := plotter.NewHeatMap(grid, blues(9))
	p.Add(heat)

	var (
		cells  []plotter.XY
		values []string
	)
	for r, row := range fig.Matrix {
		for c, v := range row {
			if math.IsNaN(v) {
				continue
			}
			cells = append(cells, plotter.XY{X: float64(c), Y: float64(r)})
			values = append(values, fmt.Sprintf("%.2f", v))
		}
	}
	if len(cells) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: cells, Labels: values})
		if err != nil {
			return err
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].XAlign = draw.XCenter
			labels.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(labels)
	}

	p.NominalX(fig.Labels...)
	p.NominalY(fig.Labels...)
	return nil
}

// correlationGrid exposes a square matrix as a heat map grid with the fixed
// range of a correlation coefficient.
type correlationGrid [][]float64

func (g correlationGrid) Dims() (c, r int) {
	return len(g), len(g)
}

func (g correlationGrid) Z(c, r int) float64 {
	return g[r][c]
}

func (g correlationGrid) X(c int) float64 {
	return float64(c)
}

func (g correlationGrid) Y(r int) float64 {
	return float64(r)
}

func (g correlationGrid) Min() float64 {
	return -1
}

func (g correlationGrid) Max() float64 {
	return 1
}

type sequential []color.Color

func (s sequential) Colors() []color.Color {
	return s
}

// blues runs from near white to dark blue in n steps.
func blues(n int) palette.Palette {
	from := color.RGBA{R: 247, G: 251, B: 255, A: 255}
	to := color.RGBA{R: 8, G: 48, B: 107, A: 255}

	colors := make(sequential, n)
	for i := range colors {
		t := float64(i) / float64(n-1)
		colors[i] = color.RGBA{
			R: lerp(from.R, to.R, t),
			G: lerp(from.G, to.G, t),
			B: lerp(from.B, to.B, t),
			A: 255,
		}
	}
	return colors
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func seriesColor(fig report.Figure, i int) color.Color {
	if c := fig.Color(i); c != nil {
		return c
	}
	return plotutil.Color(i)
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}

// axisPositions places labels on a numeric axis when all of them parse as
// numbers, and on their index otherwise.
func axisPositions(labels []string) ([]float64, bool) {
	xs := make([]float64, len(labels))
	for i, l := range labels {
		v, err := strconv.ParseFloat(l, 64)
		if err != nil {
			for j := range xs {
				xs[j] = float64(j)
			}
			return xs, false
		}
		xs[i] = v
	}
	return xs, true
}

func rotateTicks(p *plot.Plot, n int) {
	if n <= 8 {
		return
	}
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
}
