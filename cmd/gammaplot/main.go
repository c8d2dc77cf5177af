// Command gammaplot renders a gammamc result table as a PNG and/or an
// interactive HTML chart.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/xcthulhu/roland-mc/internal/fsutil"
	"github.com/xcthulhu/roland-mc/internal/report"
	"github.com/xcthulhu/roland-mc/internal/results"
	"github.com/xcthulhu/roland-mc/internal/version"
)

var (
	input       = flag.String("input", "gammamc.tsv", "Result table to plot")
	pngPath     = flag.String("png", "", "PNG output path")
	htmlPath    = flag.String("html", "", "HTML output path")
	title       = flag.String("title", "", "Chart title")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// render reads the table at in and writes the requested charts.
func render(fsys fsutil.FileSystem, in, png, html string, o report.Options) (int, error) {
	if png == "" && html == "" {
		return 0, errors.New("at least one of -png or -html is required")
	}
	rows, err := results.ReadTSVFile(fsys, in)
	if err != nil {
		return 0, err
	}
	if o.Subtitle == "" {
		o.Subtitle = fmt.Sprintf("%s, %d radii", in, len(rows))
	}
	if png != "" {
		if err := report.SavePNG(fsys, png, rows, o); err != nil {
			return 0, err
		}
	}
	if html != "" {
		if err := report.SaveHTML(fsys, html, rows, o); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("gammaplot"))
		return
	}

	n, err := render(fsutil.OSFileSystem{}, *input, *pngPath, *htmlPath, report.Options{Title: *title})
	if err != nil {
		log.Fatalf("failed to render %s: %v", *input, err)
	}
	log.Printf("plotted %d radii from %s", n, *input)
}
