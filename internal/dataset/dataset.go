// Package dataset holds labeled training points grouped by class.
package dataset

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-sod/knn/internal/geom"
)

var (
	ErrEmpty            = errors.New("dataset has no points")
	ErrInconsistentDims = errors.New("dataset points have inconsistent dimensions")
	ErrZeroDims         = errors.New("dataset points have zero dimensions")
	ErrNotFinite        = errors.New("dataset point has a NaN or infinite coordinate")
)

// Class is a label with its points in insertion order.
type Class struct {
	Label  string       `json:"label"`
	Points []geom.Point `json:"points"`
}

// LabeledPointSet maps labels to ordered point sequences. The order of classes
// and of points inside a class is the insertion order of the set.
type LabeledPointSet struct {
	classes []Class
	index   map[string]int
}

func New() *LabeledPointSet {
	return &LabeledPointSet{index: map[string]int{}}
}

// FromClasses builds a set from classes in order, merging repeated labels into
// their first occurrence.
func FromClasses(classes ...Class) *LabeledPointSet {
	s := New()
	for _, c := range classes {
		s.Add(c.Label, c.Points...)
	}
	return s
}

// Add appends points to the label, creating the class on first use.
func (s *LabeledPointSet) Add(label string, points ...geom.Point) {
	if s.index == nil {
		s.index = map[string]int{}
	}
	idx, ok := s.index[label]
	if !ok {
		idx = len(s.classes)
		s.index[label] = idx
		s.classes = append(s.classes, Class{Label: label})
	}
	for _, p := range points {
		s.classes[idx].Points = append(s.classes[idx].Points, p.Copy())
	}
}

// Len returns the number of points across all classes.
func (s *LabeledPointSet) Len() int {
	if s == nil {
		return 0
	}
	var n int
	for _, c := range s.classes {
		n += len(c.Points)
	}
	return n
}

func (s *LabeledPointSet) Labels() []string {
	if s == nil {
		return nil
	}
	labels := make([]string, len(s.classes))
	for i, c := range s.classes {
		labels[i] = c.Label
	}
	return labels
}

func (s *LabeledPointSet) Classes() []Class {
	if s == nil {
		return nil
	}
	return s.Copy().classes
}

func (s *LabeledPointSet) Points(label string) []geom.Point {
	if s == nil {
		return nil
	}
	idx, ok := s.index[label]
	if !ok {
		return nil
	}
	return s.classes[idx].Points
}

// Each walks every point in insertion order, stopping at the first error.
func (s *LabeledPointSet) Each(fn func(label string, p geom.Point) error) error {
	if s == nil {
		return nil
	}
	for _, c := range s.classes {
		for _, p := range c.Points {
			if err := fn(c.Label, p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dimensions validates the set and returns the shared dimensionality.
func (s *LabeledPointSet) Dimensions() (int, error) {
	if s.Len() == 0 {
		return 0, ErrEmpty
	}
	dims := -1
	err := s.Each(func(label string, p geom.Point) error {
		if !Finite(p) {
			return fmt.Errorf("%w: label %q point %v", ErrNotFinite, label, []float64(p))
		}
		if dims < 0 {
			dims = p.Dimensions()
			return nil
		}
		if p.Dimensions() != dims {
			return fmt.Errorf("%w: label %q has a %d-dimensional point, expected %d",
				ErrInconsistentDims, label, p.Dimensions(), dims)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if dims == 0 {
		return 0, ErrZeroDims
	}
	return dims, nil
}

// Finite reports whether every coordinate of p is neither NaN nor infinite.
func Finite(p geom.Point) bool {
	for _, x := range p {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func (s *LabeledPointSet) Validate() error {
	_, err := s.Dimensions()
	return err
}

// Copy returns a deep copy, so the caller's set can change without touching it.
func (s *LabeledPointSet) Copy() *LabeledPointSet {
	cp := New()
	if s == nil {
		return cp
	}
	for _, c := range s.classes {
		cp.Add(c.Label, c.Points...)
	}
	return cp
}
