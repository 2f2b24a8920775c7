package render

import (
	"io"

	"cine-stats/report"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	rendererFlag    = "renderer"
	chartDirFlag    = "chart-dir"
	chartWidthFlag  = "chart-width"
	chartHeightFlag = "chart-height"
)

// Renderer names accepted by --renderer.
const (
	RendererPNG   = "png"
	RendererTable = "table"
)

// Renderer hands a prepared figure to an output sink.
type Renderer interface {
	Render(fig report.Figure) error
}

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   rendererFlag,
			Usage:  "chart output (png or table)",
			Value:  RendererPNG,
			EnvVar: "RENDERER",
		},
		cli.StringFlag{
			Name:   chartDirFlag,
			Usage:  "directory png charts are written to",
			Value:  "charts",
			EnvVar: "CHART_DIR",
		},
		cli.Float64Flag{
			Name:   chartWidthFlag,
			Usage:  "png chart width in inches",
			Value:  10,
			EnvVar: "CHART_WIDTH",
		},
		cli.Float64Flag{
			Name:   chartHeightFlag,
			Usage:  "png chart height in inches",
			Value:  6,
			EnvVar: "CHART_HEIGHT",
		},
	)
}

// New builds the renderer selected by flags. Table output goes to w.
func New(c *cli.Context, w io.Writer) (Renderer, error) {
	switch name := c.String(rendererFlag); name {
	case RendererPNG:
		return NewPlotRenderer(PlotConfig{
			Dir:    c.String(chartDirFlag),
			Width:  c.Float64(chartWidthFlag),
			Height: c.Float64(chartHeightFlag),
		}), nil
	case RendererTable:
		return NewTableRenderer(w), nil
	default:
		return nil, errors.Errorf("unknown renderer %q", name)
	}
}

// ErrNothingToPlot is returned for figures without data.
var ErrNothingToPlot = errors.New("nothing to plot")
