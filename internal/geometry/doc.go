// Package geometry holds the pure functions behind every reference line and
// profile the generator emits: poses, line/arc/spiral primitives, cubic
// polynomials and the connecting-curve solver used inside junctions.
//
// Nothing in this package keeps state. Evaluating the same primitive from the
// same pose always yields the same bits, which is what makes regeneration of
// an unchanged network reproducible.
package geometry
