package geometry

import (
	"errors"
	"fmt"
	"math"
)

// Kind enumerates reference-line primitives.
type Kind uint8

const (
	Line Kind = iota
	Arc
	Spiral
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Arc:
		return "arc"
	case Spiral:
		return "spiral"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ErrUnsolvable is returned when no connecting curve exists between two poses.
var ErrUnsolvable = errors.New("no connecting curve between poses")

// straightCurvature is the magnitude below which a curvature is treated as zero.
const straightCurvature = 1e-15

// Primitive is one piece of a reference line. Curvature is positive for
// left turns. For a line both curvatures are zero and for an arc they are
// equal; a spiral varies linearly from CurvStart to CurvEnd.
type Primitive struct {
	Kind      Kind
	Length    float64
	CurvStart float64
	CurvEnd   float64
}

// NewLine returns a straight primitive.
func NewLine(length float64) Primitive {
	return Primitive{Kind: Line, Length: length}
}

// NewArc returns a constant curvature primitive.
func NewArc(length, curvature float64) Primitive {
	return Primitive{Kind: Arc, Length: length, CurvStart: curvature, CurvEnd: curvature}
}

// NewSpiral returns a clothoid whose curvature runs from cs to ce.
func NewSpiral(length, cs, ce float64) Primitive {
	return Primitive{Kind: Spiral, Length: length, CurvStart: cs, CurvEnd: ce}
}

// CurvatureAt returns the curvature ds into the primitive.
func (p Primitive) CurvatureAt(ds float64) float64 {
	if p.Kind != Spiral || p.Length == 0 {
		return p.CurvStart
	}
	return p.CurvStart + (p.CurvEnd-p.CurvStart)*ds/p.Length
}

// PoseAt evaluates the primitive ds along its length, starting from start.
func (p Primitive) PoseAt(start Pose, ds float64) Pose {
	switch p.Kind {
	case Arc:
		return arcPose(start, p.CurvStart, ds)
	case Spiral:
		if p.Length == 0 {
			return start
		}
		return spiralPose(start, p.CurvStart, (p.CurvEnd-p.CurvStart)/p.Length, ds)
	default:
		return linePose(start, ds)
	}
}

// End evaluates the pose at the end of the primitive.
func (p Primitive) End(start Pose) Pose {
	return p.PoseAt(start, p.Length)
}

// Reverse returns the primitive traversed in the opposite direction.
func (p Primitive) Reverse() Primitive {
	return Primitive{Kind: p.Kind, Length: p.Length, CurvStart: -p.CurvEnd, CurvEnd: -p.CurvStart}
}

// Split cuts the primitive ds into its length.
func (p Primitive) Split(ds float64) (Primitive, Primitive) {
	mid := p.CurvatureAt(ds)
	head := Primitive{Kind: p.Kind, Length: ds, CurvStart: p.CurvStart, CurvEnd: mid}
	tail := Primitive{Kind: p.Kind, Length: p.Length - ds, CurvStart: mid, CurvEnd: p.CurvEnd}
	if p.Kind != Spiral {
		head.CurvEnd, tail.CurvStart = p.CurvStart, p.CurvStart
	}
	return head, tail
}

// Chain evaluates consecutive primitives and returns the start pose of each
// one followed by the end pose of the last. Every start pose is exactly the
// previous end pose.
func Chain(start Pose, prims []Primitive) []Pose {
	poses := make([]Pose, 0, len(prims)+1)
	cur := start
	poses = append(poses, cur)
	for _, p := range prims {
		cur = p.End(cur)
		poses = append(poses, cur)
	}
	return poses
}

// TotalLength sums primitive lengths.
func TotalLength(prims []Primitive) float64 {
	var sum float64
	for _, p := range prims {
		sum += p.Length
	}
	return sum
}

// PoseAlong evaluates a chain of primitives at arc length s from start.
// Values outside the chain are extrapolated along the first or last piece.
func PoseAlong(start Pose, prims []Primitive, s float64) Pose {
	cur := start
	for i, p := range prims {
		if s <= p.Length || i == len(prims)-1 {
			return p.PoseAt(cur, s)
		}
		s -= p.Length
		cur = p.End(cur)
	}
	return linePose(start, s)
}

func linePose(start Pose, ds float64) Pose {
	return Pose{
		X:       start.X + ds*math.Cos(start.Heading),
		Y:       start.Y + ds*math.Sin(start.Heading),
		Heading: start.Heading,
	}
}

func arcPose(start Pose, k, ds float64) Pose {
	if math.Abs(k) < straightCurvature {
		return linePose(start, ds)
	}
	h := start.Heading + k*ds
	return Pose{
		X:       start.X + (math.Sin(h)-math.Sin(start.Heading))/k,
		Y:       start.Y - (math.Cos(h)-math.Cos(start.Heading))/k,
		Heading: NormalizeAngle(h),
	}
}

// Gauss-Legendre nodes and weights on [-1, 1], five points.
var (
	glNodes   = [5]float64{-0.9061798459386640, -0.5384693101056831, 0, 0.5384693101056831, 0.9061798459386640}
	glWeights = [5]float64{0.2369268850561891, 0.4786286704993665, 0.5688888888888889, 0.4786286704993665, 0.2369268850561891}
)

// spiralPose integrates the clothoid heading h(u) = h0 + k0*u + dk*u²/2.
// The number of panels depends only on the inputs, so the result is
// deterministic.
func spiralPose(start Pose, k0, dk, ds float64) Pose {
	if math.Abs(dk) < straightCurvature {
		return arcPose(start, k0, ds)
	}
	heading := func(u float64) float64 { return start.Heading + k0*u + 0.5*dk*u*u }
	turn := math.Abs(k0*ds) + math.Abs(0.5*dk*ds*ds)
	panels := 4 + int(math.Ceil(ds/2)) + int(math.Ceil(turn*16))
	h := ds / float64(panels)

	var x, y float64
	for i := 0; i < panels; i++ {
		mid := (float64(i) + 0.5) * h
		for j, n := range glNodes {
			u := mid + 0.5*h*n
			w := 0.5 * h * glWeights[j]
			th := heading(u)
			x += w * math.Cos(th)
			y += w * math.Sin(th)
		}
	}
	return Pose{X: start.X + x, Y: start.Y + y, Heading: NormalizeAngle(heading(ds))}
}
