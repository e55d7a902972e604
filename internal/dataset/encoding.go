package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/go-sod/knn/internal/geom"
)

var (
	_ json.Marshaler   = (*LabeledPointSet)(nil)
	_ json.Unmarshaler = (*LabeledPointSet)(nil)
)

// MarshalJSON writes the set as an object of label to points, labels in insertion order.
func (s *LabeledPointSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s.classes {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		points := c.Points
		if points == nil {
			points = []geom.Point{}
		}
		vec, err := json.Marshal(points)
		if err != nil {
			return nil, err
		}
		buf.Write(label)
		buf.WriteByte(':')
		buf.Write(vec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of label to points keeping the document order of labels.
func (s *LabeledPointSet) UnmarshalJSON(data []byte) error {
	d := json.NewDecoder(bytes.NewReader(data))
	tok, err := d.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("dataset must be a json object of label to points")
	}
	set := New()
	for d.More() {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var points []geom.Point
		if err := d.Decode(&points); err != nil {
			return fmt.Errorf("decoding points of label %q: %w", label, err)
		}
		set.Add(label, points...)
	}
	if _, err := d.Token(); err != nil {
		return err
	}
	*s = *set
	return nil
}

// DecodeTOML reads top level `label = [[x, y], ...]` keys in document order.
func DecodeTOML(r io.Reader) (*LabeledPointSet, error) {
	var raw map[string]interface{}
	md, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decoding toml: %w", err)
	}
	set := New()
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		label := key[0]
		points, err := tomlPoints(raw[label])
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", label, err)
		}
		set.Add(label, points...)
	}
	return set, nil
}

func tomlPoints(v interface{}) ([]geom.Point, error) {
	rows, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an array of points, got %T", v)
	}
	points := make([]geom.Point, 0, len(rows))
	for i, row := range rows {
		coords, ok := row.([]interface{})
		if !ok {
			return nil, fmt.Errorf("point %d: expected an array of numbers, got %T", i, row)
		}
		p := make(geom.Point, len(coords))
		for j, c := range coords {
			switch n := c.(type) {
			case int64:
				p[j] = float64(n)
			case float64:
				p[j] = n
			default:
				return nil, fmt.Errorf("point %d: coordinate %d is %T, not a number", i, j, c)
			}
		}
		points = append(points, p)
	}
	return points, nil
}
