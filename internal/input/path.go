package input

import "time"

// Point is a screen coordinate.
type Point struct {
	X, Y int
}

// GlidePath returns the intermediate pointer positions for a linear move from
// `from` to `to` lasting d, one position per step. The last point is always
// `to`. A zero duration yields just the destination.
func GlidePath(from, to Point, d, step time.Duration) []Point {
	if step <= 0 || d < step {
		return []Point{to}
	}

	steps := int(d / step)
	path := make([]Point, 0, steps)
	for i := 1; i <= steps; i++ {
		path = append(path, Point{
			X: from.X + (to.X-from.X)*i/steps,
			Y: from.Y + (to.Y-from.Y)*i/steps,
		})
	}
	return path
}
