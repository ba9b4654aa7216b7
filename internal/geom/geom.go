// Package geom holds the small geometric vocabulary shared by the editor,
// the dependency graph, and the persistence layer.
package geom

import (
	"encoding/json"
	"fmt"
)

// Point is a 2D coordinate in a figure's data space (not pixel space).
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as a two-element array, which keeps the
// on-disk annotation files compact and line-diffable.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element array into the point.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("point must have exactly 2 coordinates, got %d", len(pair))
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// ClonePoints returns an independent copy of the given point sequence.
func ClonePoints(pts []Point) []Point {
	if pts == nil {
		return nil
	}
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}
