// Package report renders sweep results as charts.
package report

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/xcthulhu/roland-mc/internal/fsutil"
	"github.com/xcthulhu/roland-mc/internal/results"
)

// ErrNoRows is returned when there is nothing to plot.
var ErrNoRows = errors.New("no rows to plot")

const (
	defaultTitle      = "Segment hit probability"
	radiusLabel       = "Segment length r"
	ratioLabel        = "P(hit central square)"
	imageWidth        = 14 * vg.Inch
	imageHeight       = 6 * vg.Inch
	echartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
)

// Options control chart labelling.
type Options struct {
	Title    string
	Subtitle string
}

func (o Options) title() string {
	if o.Title == "" {
		return defaultTitle
	}
	return o.Title
}

// NewPlot builds the ratio-versus-radius line plot.
func NewPlot(rows []results.Row, o Options) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	p := plot.New()
	p.Title.Text = o.title()
	if o.Subtitle != "" {
		p.Title.Text += "\n" + o.Subtitle
	}
	p.X.Label.Text = radiusLabel
	p.Y.Label.Text = ratioLabel
	p.Y.Min = 0
	p.Y.Max = 1
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i] = plotter.XY{X: r.Radius, Y: r.Ratio}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("ratio", line)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// SavePNG renders rows to a PNG image at path.
func SavePNG(fsys fsutil.FileSystem, path string, rows []results.Row, o Options) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return fmt.Errorf("chart path must have .png extension, got %q", ext)
	}
	p, err := NewPlot(rows, o)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(imageWidth, imageHeight, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	return writeFile(fsys, path, wt)
}

// NewLineChart builds the interactive ratio-versus-radius chart.
func NewLineChart(rows []results.Row, o Options) (*charts.Line, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	data := make([]opts.LineData, len(rows))
	for i, r := range rows {
		data[i] = opts.LineData{Value: []interface{}{r.Radius, r.Ratio}}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.title(), Width: "100%", Height: "640px", AssetsHost: echartsAssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: o.title(), Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: radiusLabel, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Min: 0, Max: 1, Name: ratioLabel, NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
	)
	line.AddSeries("ratio", data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	return line, nil
}

// RenderHTML writes the interactive chart for rows to w.
func RenderHTML(w io.Writer, rows []results.Row, o Options) error {
	line, err := NewLineChart(rows, o)
	if err != nil {
		return err
	}
	return line.Render(w)
}

// SaveHTML writes the interactive chart for rows to path.
func SaveHTML(fsys fsutil.FileSystem, path string, rows []results.Row, o Options) error {
	line, err := NewLineChart(rows, o)
	if err != nil {
		return err
	}
	return writeFile(fsys, path, writerToFunc(func(w io.Writer) error { return line.Render(w) }))
}

type writerToFunc func(io.Writer) error

func (f writerToFunc) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := f(cw)
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeFile(fsys fsutil.FileSystem, path string, wt io.WriterTo) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	return f.Close()
}
