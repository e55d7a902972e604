package dataset

import (
	"fmt"
	"math"

	"github.com/valyala/fastrand"

	"github.com/go-sod/knn/internal/geom"
)

// Center is the middle of a synthetic class blob.
type Center struct {
	Label string
	Point geom.Point
}

// Blobs scatters perClass points uniformly within spread of every center.
func Blobs(perClass int, spread float64, centers ...Center) *LabeledPointSet {
	set := New()
	for _, c := range centers {
		points := make([]geom.Point, perClass)
		for i := range points {
			points[i] = c.Point.Map(func(x float64) float64 {
				return x + spread*(2*unit()-1)
			})
		}
		set.Add(c.Label, points...)
	}
	return set
}

// RingCenters places n two-dimensional centers evenly on a circle of the given radius.
func RingCenters(n int, radius float64) []Center {
	centers := make([]Center, n)
	for i := range centers {
		angle := 2 * math.Pi * float64(i) / float64(n)
		centers[i] = Center{
			Label: fmt.Sprintf("class-%d", i),
			Point: geom.Point{radius * math.Cos(angle), radius * math.Sin(angle)},
		}
	}
	return centers
}

func unit() float64 {
	return float64(fastrand.Uint32()) / math.MaxUint32
}
