// Package classifier implements a brute-force k-nearest-neighbours classifier.
//
// A Classifier is constructed with k, bound to a LabeledPointSet with Fit and
// queried with Predict. Predict only reads the fitted state and may run
// concurrently with other Predict calls. Fit is not safe to call concurrently
// with Fit or Predict; callers that refit a shared classifier must serialise
// access themselves, for example with a sync.RWMutex.
package classifier

import (
	"errors"
	"fmt"

	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/pkg/pqueue"
)

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFitted         = errors.New("classifier is not fitted")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

type Option func(*Classifier)

// WithDistance replaces the default Euclidean distance.
func WithDistance(fn geom.DistanceFn) Option {
	return func(c *Classifier) {
		c.distFunc = fn
	}
}

func New(k int, opts ...Option) (*Classifier, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidParameter, k)
	}
	c := &Classifier{k: k, distFunc: geom.EuclideanDistance}
	for _, f := range opts {
		f(c)
	}
	if c.distFunc == nil {
		return nil, fmt.Errorf("%w: distance function is nil", ErrInvalidParameter)
	}
	return c, nil
}

type Classifier struct {
	k        int
	distFunc geom.DistanceFn

	// flattened copy of the fitted set in insertion order
	points []neighbour
	dims   int
}

type neighbour struct {
	label string
	point geom.Point
}

// Fit binds the training data, replacing anything fitted before. The set is
// copied, later changes to it do not affect the classifier.
func (c *Classifier) Fit(data *dataset.LabeledPointSet) error {
	dims, err := data.Dimensions()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	points := make([]neighbour, 0, data.Len())
	_ = data.Each(func(label string, p geom.Point) error {
		points = append(points, neighbour{label: label, point: p.Copy()})
		return nil
	})
	c.points = points
	c.dims = dims
	return nil
}

// Predict returns the majority label among the k nearest fitted points. Equal
// distances keep the insertion order of the fitted set, equal vote counts go
// to the label seen first in distance order.
func (c *Classifier) Predict(query geom.Point) (string, error) {
	if len(c.points) == 0 {
		return "", ErrNotFitted
	}
	if query.Dimensions() != c.dims {
		return "", fmt.Errorf("%w: query has %d dimensions, fitted data has %d",
			ErrDimensionMismatch, query.Dimensions(), c.dims)
	}
	if !dataset.Finite(query) {
		return "", fmt.Errorf("%w: query %v has a NaN or infinite coordinate", ErrInvalidInput, []float64(query))
	}

	pq := pqueue.New[string](pqueue.WithCap(uint(c.k)))
	for _, n := range c.points {
		distance, err := c.distFunc(query, n.point)
		if err != nil {
			return "", fmt.Errorf("unable to compute distance between %v and %v: %w", query, n.point, err)
		}
		pq.Push(n.label, distance)
	}

	return vote(pq.PopAll()), nil
}

// vote picks the most frequent label, resolving count ties by first occurrence.
func vote(labels []string) string {
	counts := make(map[string]int, len(labels))
	var (
		best      string
		bestCount int
	)
	for _, l := range labels {
		counts[l]++
	}
	for _, l := range labels {
		if counts[l] > bestCount {
			best, bestCount = l, counts[l]
		}
	}
	return best
}
