package geometry

// Poly3 is the cubic a + b·s + c·s² + d·s³ used for lane widths, lane
// offsets and elevation, always expressed relative to its own start.
type Poly3 struct {
	A, B, C, D float64
}

// Const returns a constant polynomial.
func Const(a float64) Poly3 { return Poly3{A: a} }

// Eval returns the value at s.
func (p Poly3) Eval(s float64) float64 {
	return p.A + s*(p.B+s*(p.C+s*p.D))
}

// Deriv returns the first derivative at s.
func (p Poly3) Deriv(s float64) float64 {
	return p.B + s*(2*p.C+3*s*p.D)
}

// Shift re-expands the polynomial about s = delta, so that
// p.Shift(δ).Eval(u) == p.Eval(u+δ).
func (p Poly3) Shift(delta float64) Poly3 {
	return Poly3{
		A: p.Eval(delta),
		B: p.Deriv(delta),
		C: p.C + 3*p.D*delta,
		D: p.D,
	}
}

// Mirror re-expands the polynomial for traversal in the opposite direction
// over a domain of length l, so that p.Mirror(l).Eval(u) == p.Eval(l-u).
func (p Poly3) Mirror(l float64) Poly3 {
	return Poly3{
		A: p.Eval(l),
		B: -p.Deriv(l),
		C: p.C + 3*p.D*l,
		D: -p.D,
	}
}

// Add sums two polynomials coefficient-wise.
func (p Poly3) Add(q Poly3) Poly3 {
	return Poly3{A: p.A + q.A, B: p.B + q.B, C: p.C + q.C, D: p.D + q.D}
}

// IsZero reports whether all coefficients vanish.
func (p Poly3) IsZero() bool {
	return p == Poly3{}
}
