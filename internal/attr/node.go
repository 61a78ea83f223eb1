package attr

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing is returned when a required attribute or child node is absent.
	ErrMissing = errors.New("missing required attribute")
	// ErrInvalid is returned when an attribute exists but cannot be read as
	// the requested type.
	ErrInvalid = errors.New("invalid attribute value")
)

// Node is a single element of the attribute tree.
type Node interface {
	// Name returns the element or block type, e.g. "road".
	Name() string
	// Path returns a human readable location used in error messages.
	Path() string
	// Child returns the first child with the given name.
	Child(name string) (Node, bool)
	// Children returns the children with the given name in document order.
	// An empty name selects every child.
	Children(name string) []Node

	Has(key string) bool
	Int(key string) (int, error)
	Float(key string) (float64, error)
	String(key string) (string, error)
}

// IntOr reads an integer attribute, falling back to def when it is absent.
// A present but malformed value is still an error.
func IntOr(n Node, key string, def int) (int, error) {
	if !n.Has(key) {
		return def, nil
	}
	return n.Int(key)
}

// FloatOr reads a float attribute, falling back to def when it is absent.
func FloatOr(n Node, key string, def float64) (float64, error) {
	if !n.Has(key) {
		return def, nil
	}
	return n.Float(key)
}

// StringOr reads a string attribute, falling back to def when it is absent.
func StringOr(n Node, key string, def string) (string, error) {
	if !n.Has(key) {
		return def, nil
	}
	return n.String(key)
}

// BoolOr reads a boolean attribute written as true/false (or 1/0).
func BoolOr(n Node, key string, def bool) (bool, error) {
	if !n.Has(key) {
		return def, nil
	}
	s, err := n.String(key)
	if err != nil {
		return def, err
	}
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return def, fmt.Errorf("%s: attribute %q: %w: %q is not a boolean", n.Path(), key, ErrInvalid, s)
}

// RequireChild returns the named child or an ErrMissing error naming the parent.
func RequireChild(n Node, name string) (Node, error) {
	c, ok := n.Child(name)
	if !ok {
		return nil, fmt.Errorf("%s: child %q: %w", n.Path(), name, ErrMissing)
	}
	return c, nil
}

// MissingError builds the error returned for an absent attribute.
func MissingError(n Node, key string) error {
	return fmt.Errorf("%s: attribute %q: %w", n.Path(), key, ErrMissing)
}

// InvalidError builds the error returned for an unreadable attribute.
func InvalidError(n Node, key string, cause error) error {
	return fmt.Errorf("%s: attribute %q: %w: %v", n.Path(), key, ErrInvalid, cause)
}
