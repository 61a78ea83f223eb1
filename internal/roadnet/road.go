package roadnet

import (
	"math"

	"github.com/specialistvlad/roadweaver/internal/geometry"
)

// ContactPoint names the end of a road a link attaches to.
type ContactPoint string

const (
	Start ContactPoint = "start"
	End   ContactPoint = "end"
)

// Opposite returns the other end.
func (c ContactPoint) Opposite() ContactPoint {
	if c == Start {
		return End
	}
	return Start
}

// ElementType is the kind of element a link points to.
type ElementType string

const (
	ElementRoad     ElementType = "road"
	ElementJunction ElementType = "junction"
)

// Link is a predecessor or successor reference. ElementID is None when the
// road is not linked at that end.
type Link struct {
	ElementType  ElementType
	ElementID    int
	ContactPoint ContactPoint
}

// NoLink is the zero value used for unlinked ends.
var NoLink = Link{ElementType: ElementRoad, ElementID: None, ContactPoint: Start}

// Valid reports whether the link points anywhere.
func (l Link) Valid() bool { return l.ElementID != None }

// Geometry is one placed reference-line primitive.
type Geometry struct {
	Kind      geometry.Kind
	S         float64
	X, Y      float64
	Heading   float64
	Length    float64
	CurvStart float64
	CurvEnd   float64
}

// Pose returns the start pose of the primitive.
func (g Geometry) Pose() geometry.Pose {
	return geometry.Pose{X: g.X, Y: g.Y, Heading: g.Heading}
}

// Primitive drops the placement.
func (g Geometry) Primitive() geometry.Primitive {
	return geometry.Primitive{Kind: g.Kind, Length: g.Length, CurvStart: g.CurvStart, CurvEnd: g.CurvEnd}
}

// End returns the pose at the end of the primitive.
func (g Geometry) End() geometry.Pose {
	return g.Primitive().End(g.Pose())
}

// ElevationKeyPoint is a declared height at an arc-length offset together
// with the radius used to blend into and out of it.
type ElevationKeyPoint struct {
	S      float64
	Height float64
	Radius float64
}

// ElevationPolynomial is one piece of the synthesized elevation profile,
// valid from S until the next piece.
type ElevationPolynomial struct {
	S float64
	geometry.Poly3
}

// Object is a road-side object placed in road coordinates.
type Object struct {
	ID           int
	Type         string
	S, T, Z      float64
	Heading      float64
	Orientation  string
	Length       float64
	Width        float64
	Height       float64
	Repeat       bool
	RepeatLength float64
	Distance     float64
}

// Signal is a traffic sign or light placed in road coordinates.
type Signal struct {
	ID          int
	Type        string
	Subtype     string
	Value       float64
	S, T, Z     float64
	Orientation string
	Width       float64
	Height      float64
	Dynamic     bool
	Country     string
	Controller  int
}

// Road is one generated road with its reference line, lanes and profile.
type Road struct {
	ID int
	// InputSegmentID, InputID and InputPos trace the road back to the
	// declaration it came from. InputPos tells apart the two approach roads
	// a junction cuts from one declared main road.
	InputSegmentID int
	InputID        int
	InputPos       ContactPoint

	Type        string
	Length      float64
	Predecessor Link
	Successor   Link

	Geometries         []Geometry
	LaneSections       []LaneSection
	ElevationKeyPoints []ElevationKeyPoint
	Elevation          []ElevationPolynomial
	Objects            []Object
	Signals            []Signal

	// JunctionID is the owning junction, or the grouping segment id when
	// IsConnectingRoad is set; None otherwise.
	JunctionID        int
	IsConnectingRoad  bool
	IsLinkedToNetwork bool
	ElevationOffset   float64
}

// NewRoad returns an empty, unlinked road.
func NewRoad(id int) *Road {
	return &Road{
		ID:             id,
		InputSegmentID: None,
		InputID:        None,
		InputPos:       Start,
		Type:           "town",
		Predecessor:    NoLink,
		Successor:      NoLink,
		JunctionID:     None,
	}
}

// InJunction reports whether the road belongs to a real junction. Roads of a
// connecting-road segment reuse the junction field as a grouping id and are
// not junction members.
func (r *Road) InJunction() bool {
	return r.JunctionID != None && !r.IsConnectingRoad
}

// SetGeometry lays out primitives from start and sets the road length.
func (r *Road) SetGeometry(start geometry.Pose, prims []geometry.Primitive) {
	r.Geometries = r.Geometries[:0]
	poses := geometry.Chain(start, prims)
	var s float64
	for i, p := range prims {
		r.Geometries = append(r.Geometries, Geometry{
			Kind:      p.Kind,
			S:         s,
			X:         poses[i].X,
			Y:         poses[i].Y,
			Heading:   poses[i].Heading,
			Length:    p.Length,
			CurvStart: p.CurvStart,
			CurvEnd:   p.CurvEnd,
		})
		s += p.Length
	}
	r.Length = s
}

// StartPose returns the pose at s = 0.
func (r *Road) StartPose() geometry.Pose {
	if len(r.Geometries) == 0 {
		return geometry.Pose{}
	}
	return r.Geometries[0].Pose()
}

// EndPose returns the pose at s = Length.
func (r *Road) EndPose() geometry.Pose {
	if len(r.Geometries) == 0 {
		return geometry.Pose{}
	}
	return r.Geometries[len(r.Geometries)-1].End()
}

// PoseAt evaluates the reference line at s.
func (r *Road) PoseAt(s float64) geometry.Pose {
	if len(r.Geometries) == 0 {
		return geometry.Pose{}
	}
	for i := len(r.Geometries) - 1; i >= 0; i-- {
		g := r.Geometries[i]
		if s >= g.S || i == 0 {
			return g.Primitive().PoseAt(g.Pose(), math.Min(s-g.S, g.Length))
		}
	}
	return r.Geometries[0].Pose()
}

// ContactPose returns the pose at the given end, facing out of the road.
func (r *Road) ContactPose(c ContactPoint) geometry.Pose {
	if c == Start {
		return r.StartPose().Flip()
	}
	return r.EndPose()
}

// SectionAt returns the index of the lane section containing s.
func (r *Road) SectionAt(s float64) int {
	for i := len(r.LaneSections) - 1; i > 0; i-- {
		if s >= r.LaneSections[i].S {
			return i
		}
	}
	return 0
}

// Transform moves the road rigidly. Road coordinates (s, t) are unaffected.
func (r *Road) Transform(m geometry.Motion) {
	for i := range r.Geometries {
		p := m.Apply(r.Geometries[i].Pose())
		r.Geometries[i].X, r.Geometries[i].Y, r.Geometries[i].Heading = p.X, p.Y, p.Heading
	}
}

// Link returns the link at the given end.
func (r *Road) Link(c ContactPoint) Link {
	if c == Start {
		return r.Predecessor
	}
	return r.Successor
}

// SetLink replaces the link at the given end.
func (r *Road) SetLink(c ContactPoint, l Link) {
	if c == Start {
		r.Predecessor = l
	} else {
		r.Successor = l
	}
}
