package roadnet

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance is the absolute tolerance for arc lengths and poses.
const Tolerance = 1e-9

// Validate checks the guarantees the exporters rely on. All violations are
// collected and returned together.
func (n *Network) Validate() error {
	var errs []error
	for i := range n.Roads {
		r := &n.Roads[i]
		if err := r.validateGeometry(); err != nil {
			errs = append(errs, err)
		}
		if err := r.validateSections(); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, n.validateLinks(r)...)
	}
	for _, j := range n.Junctions {
		for _, c := range j.Connections {
			if !n.HasRoad(c.FromRoad) || !n.HasRoad(c.ToRoad) {
				errs = append(errs, &Error{Segment: None, Road: None, Junction: j.ID,
					Err: fmt.Errorf("%w: connection %d references road %d -> %d", ErrUnresolved, c.ID, c.FromRoad, c.ToRoad)})
			}
		}
	}
	signals := make(map[int]bool)
	for i := range n.Roads {
		for _, s := range n.Roads[i].Signals {
			signals[s.ID] = true
		}
	}
	for _, c := range n.Controllers {
		for _, id := range c.SignalIDs {
			if !signals[id] {
				errs = append(errs, fmt.Errorf("%w: controller %d references signal %d", ErrUnresolved, c.ID, id))
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Road) roadError(err error) error {
	return &Error{Segment: r.InputSegmentID, Road: r.ID, Junction: None, Err: err}
}

func (r *Road) validateGeometry() error {
	if len(r.Geometries) == 0 {
		return r.roadError(fmt.Errorf("%w: road has no geometry", ErrGeometry))
	}
	var s float64
	for i, g := range r.Geometries {
		if math.Abs(g.S-s) > Tolerance {
			return r.roadError(fmt.Errorf("%w: geometry %d starts at s=%g, expected %g", ErrGeometry, i, g.S, s))
		}
		if i > 0 && !r.Geometries[i-1].End().Near(g.Pose(), Tolerance*math.Max(1, s)) {
			return r.roadError(fmt.Errorf("%w: geometry %d does not continue geometry %d", ErrGeometry, i, i-1))
		}
		s += g.Length
	}
	if math.Abs(s-r.Length) > Tolerance*math.Max(1, s) {
		return r.roadError(fmt.Errorf("%w: geometry length %g differs from road length %g", ErrGeometry, s, r.Length))
	}
	return nil
}

func (r *Road) validateSections() error {
	if len(r.LaneSections) == 0 {
		return r.roadError(fmt.Errorf("%w: road has no lane section", ErrInvalid))
	}
	if r.LaneSections[0].S != 0 {
		return r.roadError(fmt.Errorf("%w: first lane section starts at %g", ErrInvalid, r.LaneSections[0].S))
	}
	for i := range r.LaneSections {
		ls := &r.LaneSections[i]
		if i > 0 && ls.S <= r.LaneSections[i-1].S {
			return r.roadError(fmt.Errorf("%w: lane section %d is not after its predecessor", ErrInvalid, i))
		}
		if ls.S >= r.Length {
			return r.roadError(fmt.Errorf("%w: lane section %d starts beyond the road end", ErrInvalid, i))
		}
		if err := ls.ValidateLanes(); err != nil {
			return r.roadError(err)
		}
	}
	return nil
}

func (n *Network) validateLinks(r *Road) []error {
	var errs []error
	for _, l := range []Link{r.Predecessor, r.Successor} {
		if !l.Valid() {
			continue
		}
		switch l.ElementType {
		case ElementRoad:
			if !n.HasRoad(l.ElementID) {
				errs = append(errs, r.roadError(fmt.Errorf("%w: linked road %d", ErrUnresolved, l.ElementID)))
			}
		case ElementJunction:
			if _, ok := n.Junction(l.ElementID); !ok {
				errs = append(errs, r.roadError(fmt.Errorf("%w: linked junction %d", ErrUnresolved, l.ElementID)))
			}
		}
	}
	if r.InJunction() {
		if _, ok := n.Junction(r.JunctionID); !ok {
			errs = append(errs, r.roadError(fmt.Errorf("%w: junction %d", ErrUnresolved, r.JunctionID)))
		}
	}
	return errs
}
