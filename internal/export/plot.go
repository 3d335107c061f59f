// Package export renders recorded runs to files: PNG step-response plots and
// JSON dumps for downstream tooling.
package export

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"motorlab/internal/sim"
)

var lineColors = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
}

// PlotResponse writes a PNG of one or more output traces against the shared
// reference. The map keys become legend entries.
func PlotResponse(path, title string, records map[string]*sim.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = "speed [rad/s]"
	p.Legend.Top = true

	var ref *sim.Record
	for _, rec := range records {
		if ref == nil || rec.Len() > ref.Len() {
			ref = rec
		}
	}
	refLine, err := plotter.NewLine(seriesXY(ref.Times, ref.References))
	if err != nil {
		return err
	}
	refLine.LineStyle.Color = color.Gray{Y: 0x99}
	refLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(refLine)
	p.Legend.Add("reference", refLine)

	i := 0
	for _, name := range sortedKeys(records) {
		rec := records[name]
		line, err := plotter.NewLine(seriesXY(rec.Times, rec.Outputs))
		if err != nil {
			return err
		}
		line.LineStyle.Color = lineColors[i%len(lineColors)]
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
		i++
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// PlotControl writes a PNG of the control signals of one or more runs.
func PlotControl(path, title string, records map[string]*sim.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time [s]"
	p.Y.Label.Text = "voltage [V]"
	p.Legend.Top = true

	i := 0
	for _, name := range sortedKeys(records) {
		rec := records[name]
		line, err := plotter.NewLine(seriesXY(rec.Times, rec.Controls))
		if err != nil {
			return err
		}
		line.LineStyle.Color = lineColors[i%len(lineColors)]
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
		i++
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func seriesXY(ts, vs []float64) plotter.XYs {
	n := len(ts)
	if len(vs) < n {
		n = len(vs)
	}
	xys := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		xys[i].X = ts[i]
		xys[i].Y = vs[i]
	}
	return xys
}

func sortedKeys(records map[string]*sim.Record) []string {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
