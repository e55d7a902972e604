// Package chart draws two-dimensional labeled point sets and classified queries.
package chart

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
)

var ErrNotPlanar = errors.New("only two-dimensional points can be plotted")

// Query is a classified query point.
type Query struct {
	Point geom.Point
	Label string
}

// Save renders the set, one color per label, with queries drawn as crosses
// colored by their predicted label. The image format follows the file extension.
func Save(path, title string, set *dataset.LabeledPointSet, queries ...Query) error {
	dims, err := set.Dimensions()
	if err != nil {
		return err
	}
	if dims != 2 {
		return fmt.Errorf("%w: got %d dimensions", ErrNotPlanar, dims)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	colors := map[string]color.Color{}
	for i, c := range set.Classes() {
		colors[c.Label] = plotutil.Color(i)
		s, err := plotter.NewScatter(xys(c.Points))
		if err != nil {
			return fmt.Errorf("scatter for %q: %w", c.Label, err)
		}
		s.GlyphStyle.Color = colors[c.Label]
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add(c.Label, s)
	}

	for _, q := range queries {
		if q.Point.Dimensions() != 2 {
			return fmt.Errorf("%w: query %v", ErrNotPlanar, q.Point)
		}
		s, err := plotter.NewScatter(xys([]geom.Point{q.Point}))
		if err != nil {
			return fmt.Errorf("scatter for query %v: %w", q.Point, err)
		}
		s.GlyphStyle.Color = colors[q.Label]
		s.GlyphStyle.Shape = draw.CrossGlyph{}
		s.GlyphStyle.Radius = vg.Points(7)
		p.Add(s)
	}

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot to %s: %w", path, err)
	}
	return nil
}

func xys(points []geom.Point) plotter.XYs {
	out := make(plotter.XYs, len(points))
	for i, p := range points {
		out[i].X = p[0]
		out[i].Y = p[1]
	}
	return out
}
