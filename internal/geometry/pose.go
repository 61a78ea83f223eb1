package geometry

import "math"

// Pose is a position on the plane together with a heading in radians,
// measured counter-clockwise from the x axis.
type Pose struct {
	X, Y    float64
	Heading float64
}

// Normal returns the unit vector pointing to the left of the heading.
func (p Pose) Normal() (float64, float64) {
	return -math.Sin(p.Heading), math.Cos(p.Heading)
}

// Offset moves the pose laterally by t (positive to the left).
func (p Pose) Offset(t float64) Pose {
	nx, ny := p.Normal()
	return Pose{X: p.X + t*nx, Y: p.Y + t*ny, Heading: p.Heading}
}

// Flip returns the same point facing the opposite direction.
func (p Pose) Flip() Pose {
	return Pose{X: p.X, Y: p.Y, Heading: NormalizeAngle(p.Heading + math.Pi)}
}

// Distance returns the planar distance between two poses.
func (p Pose) Distance(q Pose) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Near reports whether two poses agree in position and heading within tol.
func (p Pose) Near(q Pose, tol float64) bool {
	return p.Distance(q) <= tol && math.Abs(NormalizeAngle(p.Heading-q.Heading)) <= tol
}

// NormalizeAngle maps an angle into (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// CCW maps an angle into [0, 2π).
func CCW(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// Motion is the rigid transformation that carries one pose onto another.
type Motion struct {
	from, to Pose
	cos, sin float64
	rot      float64
}

// MotionBetween returns the motion mapping from onto to.
func MotionBetween(from, to Pose) Motion {
	rot := to.Heading - from.Heading
	return Motion{from: from, to: to, rot: rot, cos: math.Cos(rot), sin: math.Sin(rot)}
}

// Apply transforms p.
func (m Motion) Apply(p Pose) Pose {
	dx, dy := p.X-m.from.X, p.Y-m.from.Y
	return Pose{
		X:       m.to.X + m.cos*dx - m.sin*dy,
		Y:       m.to.Y + m.sin*dx + m.cos*dy,
		Heading: NormalizeAngle(p.Heading + m.rot),
	}
}
