package geometry

import (
	"fmt"
	"math"
)

const fillEps = 1e-9

// FillPoses returns primitives that start at from and end at to with
// matching headings (G1). Collinear poses give a single line, intersecting
// tangents a line-arc-line and parallel offset tangents a symmetric S-curve
// of two opposite arcs.
func FillPoses(from, to Pose) ([]Primitive, error) {
	dx, dy := to.X-from.X, to.Y-from.Y
	u0x, u0y := math.Cos(from.Heading), math.Sin(from.Heading)
	u1x, u1y := math.Cos(to.Heading), math.Sin(to.Heading)
	turn := NormalizeAngle(to.Heading - from.Heading)

	if math.Abs(turn) < fillEps {
		along := u0x*dx + u0y*dy
		lateral := u0x*dy - u0y*dx
		if along <= fillEps {
			return nil, fmt.Errorf("%w: target lies behind start", ErrUnsolvable)
		}
		if math.Abs(lateral) < fillEps {
			return []Primitive{NewLine(along)}, nil
		}
		theta := 2 * math.Atan(math.Abs(lateral)/along)
		r := along / (2 * math.Sin(theta))
		k := math.Copysign(1/r, lateral)
		return []Primitive{NewArc(r*theta, k), NewArc(r*theta, -k)}, nil
	}
	if math.Abs(math.Abs(turn)-math.Pi) < fillEps {
		return nil, fmt.Errorf("%w: opposite headings", ErrUnsolvable)
	}

	det := u0x*u1y - u0y*u1x
	t0 := (dx*u1y - dy*u1x) / det
	t1 := (u0x*dy - u0y*dx) / det
	if t0 < -fillEps || t1 < -fillEps {
		return nil, fmt.Errorf("%w: tangents meet behind a pose (t0=%.3f, t1=%.3f)", ErrUnsolvable, t0, t1)
	}

	tangent := math.Min(t0, t1)
	if tangent < fillEps {
		return nil, fmt.Errorf("%w: no room for a turn", ErrUnsolvable)
	}
	r := tangent / math.Tan(math.Abs(turn)/2)

	var prims []Primitive
	if lead := t0 - tangent; lead > fillEps {
		prims = append(prims, NewLine(lead))
	}
	prims = append(prims, NewArc(r*math.Abs(turn), math.Copysign(1/r, turn)))
	if tail := t1 - tangent; tail > fillEps {
		prims = append(prims, NewLine(tail))
	}
	return prims, nil
}
