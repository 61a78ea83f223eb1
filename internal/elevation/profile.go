package elevation

import (
	"fmt"
	"math"

	"github.com/specialistvlad/roadweaver/internal/geometry"
	"github.com/specialistvlad/roadweaver/internal/roadnet"
)

// Profile computes the elevation polynomials of a road of the given length
// from finalized key points. Each consecutive pair contributes three pieces.
// A constant piece pads the profile before the first and after the last key
// point when they do not sit on the road ends.
func Profile(points []roadnet.ElevationKeyPoint, length float64) ([]roadnet.ElevationPolynomial, error) {
	if len(points) == 0 {
		return nil, nil
	}
	first, last := points[0], points[len(points)-1]
	var out []roadnet.ElevationPolynomial
	if first.S > roadnet.Tolerance || len(points) == 1 {
		out = append(out, flat(0, first.Height))
	}
	for i := 0; i+1 < len(points); i++ {
		pieces, err := blend(points[i], points[i+1])
		if err != nil {
			return nil, fmt.Errorf("key points %d and %d: %w", i, i+1, err)
		}
		out = append(out, pieces[:]...)
	}
	if len(points) > 1 && last.S < length-roadnet.Tolerance {
		out = append(out, flat(last.S, last.Height))
	}
	return out, nil
}

func flat(s, h float64) roadnet.ElevationPolynomial {
	return roadnet.ElevationPolynomial{S: s, Poly3: geometry.Const(h)}
}

// blend returns the clamp, connector and clamp between p1 and p2.
func blend(p1, p2 roadnet.ElevationKeyPoint) ([3]roadnet.ElevationPolynomial, error) {
	var out [3]roadnet.ElevationPolynomial
	o1, o2 := p1.S, p2.S
	y1, y2 := p1.Height, p2.Height
	switch {
	case p1.Radius <= 0 || p2.Radius <= 0:
		return out, fmt.Errorf("%w: blend radius must be positive (%g, %g)", roadnet.ErrElevation, p1.Radius, p2.Radius)
	case y1 == y2:
		return out, fmt.Errorf("%w: equal heights %g at s=%g and s=%g", roadnet.ErrElevation, y1, o1, o2)
	case o2 <= o1:
		return out, fmt.Errorf("%w: offsets %g and %g are not increasing", roadnet.ErrElevation, o1, o2)
	}

	c1, c2 := 1/(2*p1.Radius), 1/(2*p2.Radius)
	if y1 > y2 {
		c1 = -c1
	} else {
		c2 = -c2
	}

	do := 2*o1 - 2*o2
	disc := c1*c1*c2*c2*do*do + 4*c1*c2*(c2-c1)*(y1-y2)
	if disc < 0 {
		return out, fmt.Errorf("%w: height difference %g cannot be bridged over %g m with radii %g and %g",
			roadnet.ErrElevation, y2-y1, o2-o1, p1.Radius, p2.Radius)
	}
	x1 := (math.Sqrt(disc) - c1*c2*do) / (2 * c1 * (c2 - c1))
	x2 := c1 * x1 / c2
	if x1 < -roadnet.Tolerance || x2 > roadnet.Tolerance || o1+x1 > o2+x2+roadnet.Tolerance {
		return out, fmt.Errorf("%w: blend cutoffs %g and %g fall outside [%g, %g]",
			roadnet.ErrElevation, o1+x1, o2+x2, o1, o2)
	}

	out[0] = roadnet.ElevationPolynomial{S: o1, Poly3: geometry.Poly3{A: y1, C: c1}}
	out[1] = roadnet.ElevationPolynomial{S: o1 + x1, Poly3: geometry.Poly3{A: y1 + c1*x1*x1, B: 2 * c1 * x1}}
	out[2] = roadnet.ElevationPolynomial{S: o2 + x2, Poly3: geometry.Poly3{A: y2 + c2*x2*x2, B: 2 * c2 * x2, C: c2}}
	return out, nil
}

// HeightAt evaluates a profile at s. It returns 0 for an empty profile.
func HeightAt(profile []roadnet.ElevationPolynomial, s float64) float64 {
	for i := len(profile) - 1; i >= 0; i-- {
		if s >= profile[i].S || i == 0 {
			return profile[i].Eval(s - profile[i].S)
		}
	}
	return 0
}

// SlopeAt evaluates the profile derivative at s.
func SlopeAt(profile []roadnet.ElevationPolynomial, s float64) float64 {
	for i := len(profile) - 1; i >= 0; i-- {
		if s >= profile[i].S || i == 0 {
			return profile[i].Deriv(s - profile[i].S)
		}
	}
	return 0
}
