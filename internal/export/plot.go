// Package export renders sampled run series to image files.
package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/orbitsim/internal/storage"
)

// TimeSeries plots the named columns against the "t" column and saves
// to path; the format follows the file extension (.svg, .png, .pdf).
func TimeSeries(header []string, rows [][]float64, columns []string, title, path string) error {
	times, err := storage.Column(header, rows, "t")
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Legend.Top = true

	for ci, name := range columns {
		values, err := storage.Column(header, rows, name)
		if err != nil {
			return err
		}
		xys := make(plotter.XYs, len(times))
		for i := range times {
			xys[i].X = times[i]
			xys[i].Y = values[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		line.Color = plotutil.Color(ci)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
