// casia-map renders a combined grid CSV as a topography map: one coloured
// point per (meridian, radial) cell at its Cartesian coordinates, coloured by
// the chosen parameter column.
//
// Usage:
//
//	casia-map --input combined_data/P1_L_combined.csv --param Pachymetry
//	          [--scaled] [--output P1_L_pachymetry.png]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func main() {
	var (
		inputPath = flag.String("input", "", "combined grid CSV to render (required)")
		param     = flag.String("param", "Pachymetry", "parameter to colour by")
		scaled    = flag.Bool("scaled", false, "colour by the z-scored column instead of the raw value")
		output    = flag.String("output", "", "output PNG (default <input basename>_<param>.png)")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("--input is required")
	}

	column := *param + "_Value"
	if *scaled {
		column = *param + "_Scaled"
	}
	if *output == "" {
		base := strings.TrimSuffix(*inputPath, ".csv")
		*output = fmt.Sprintf("%s_%s.png", base, strings.ToLower(*param))
	}

	xs, ys, vs, err := readColumns(*inputPath, column)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *inputPath, err)
	}
	if len(vs) == 0 {
		log.Fatalf("No plottable rows in %s (column %s)", *inputPath, column)
	}

	if err := render(xs, ys, vs, column, *output); err != nil {
		log.Fatalf("Failed to render map: %v", err)
	}
	log.Printf("Wrote %s (%d points, column %s)", *output, len(vs), column)
}

// readColumns pulls X_Coordinate, Y_Coordinate and the value column out of
// the combined CSV. Rows with a non-finite value are skipped so an
// unscorable cell does not poison the colour ramp.
func readColumns(path, column string) (xs, ys, vs []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}

	xCol, yCol, vCol := -1, -1, -1
	for i, name := range header {
		switch name {
		case "X_Coordinate":
			xCol = i
		case "Y_Coordinate":
			yCol = i
		case column:
			vCol = i
		}
	}
	if xCol < 0 || yCol < 0 {
		return nil, nil, nil, fmt.Errorf("missing coordinate columns in header")
	}
	if vCol < 0 {
		return nil, nil, nil, fmt.Errorf("no column %q in header", column)
	}

	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		x, errX := strconv.ParseFloat(rec[xCol], 64)
		y, errY := strconv.ParseFloat(rec[yCol], 64)
		v, errV := strconv.ParseFloat(rec[vCol], 64)
		if errX != nil || errY != nil || errV != nil || !isFinite(v) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
		vs = append(vs, v)
	}
	return xs, ys, vs, nil
}

func render(xs, ys, vs []float64, column, outPath string) error {
	min, max := vs[0], vs[0]
	for _, v := range vs {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  rampColor(vs[i], min, max),
			Radius: vg.Points(1.5),
			Shape:  draw.CircleGlyph{},
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%.4g .. %.4g)", column, min, max)
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(sc)

	return p.Save(8*vg.Inch, 8*vg.Inch, outPath)
}

// rampColor maps v within [min, max] onto a blue-to-red ramp.
func rampColor(v, min, max float64) color.Color {
	t := 0.5
	if max > min {
		t = (v - min) / (max - min)
	}
	return color.RGBA{
		R: uint8(255 * t),
		G: uint8(64 * (1 - math.Abs(2*t-1))),
		B: uint8(255 * (1 - t)),
		A: 255,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
