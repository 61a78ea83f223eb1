// Package elevation blends declared elevation key points into a piecewise
// polynomial height profile with continuous value and slope.
//
// Between two key points the profile is a parabolic clamp leaving the first
// point, a straight connector tangent to it, and a mirrored clamp arriving at
// the second point. The clamp curvature follows from each point's blend
// radius and the cutoff offsets are solved in closed form.
package elevation
