package roadnet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissing     = errors.New("missing required description node")
	ErrUnresolved  = errors.New("unresolvable id reference")
	ErrUnsupported = errors.New("unsupported segment type")
	ErrElevation   = errors.New("invalid elevation profile")
	ErrGeometry    = errors.New("inconsistent geometry")
	ErrInvalid     = errors.New("invalid network")
)

// None marks an absent id.
const None = -1

// Error is a fatal structural error. It names the segment, road and junction
// the failure belongs to; ids that do not apply are None.
type Error struct {
	Segment  int
	Road     int
	Junction int
	Err      error
}

// Errorf builds an Error for the given segment and wraps a formatted cause.
func Errorf(segment int, format string, args ...any) *Error {
	return &Error{Segment: segment, Road: None, Junction: None, Err: fmt.Errorf(format, args...)}
}

// WithRoad sets the road id and returns the receiver.
func (e *Error) WithRoad(id int) *Error {
	e.Road = id
	return e
}

// WithJunction sets the junction id and returns the receiver.
func (e *Error) WithJunction(id int) *Error {
	e.Junction = id
	return e
}

func (e *Error) Error() string {
	var ctx []string
	if e.Segment != None {
		ctx = append(ctx, fmt.Sprintf("segment %d", e.Segment))
	}
	if e.Junction != None {
		ctx = append(ctx, fmt.Sprintf("junction %d", e.Junction))
	}
	if e.Road != None {
		ctx = append(ctx, fmt.Sprintf("road %d", e.Road))
	}
	if len(ctx) == 0 {
		return e.Err.Error()
	}
	return strings.Join(ctx, ", ") + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Warning is an advisory finding that does not stop generation.
type Warning struct {
	Segment  int
	Road     int
	Junction int
	Message  string
}

func (w Warning) String() string {
	return (&Error{Segment: w.Segment, Road: w.Road, Junction: w.Junction, Err: errors.New(w.Message)}).Error()
}
