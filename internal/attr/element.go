package attr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Element is an in-memory Node. Attribute values are stored as the strings
// they would have in a document and converted on read, so an Element built
// by hand behaves exactly like one produced by an adapter.
type Element struct {
	name     string
	parent   *Element
	index    int
	keys     []string
	values   map[string]string
	children []*Element
}

// New creates a detached element with the given name.
func New(name string) *Element {
	return &Element{name: name, values: make(map[string]string)}
}

// Set stores an attribute. Numbers are formatted losslessly.
func (e *Element) Set(key string, value any) *Element {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case int:
		s = strconv.Itoa(v)
	case float64:
		s = strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	default:
		s = fmt.Sprint(v)
	}
	if _, exists := e.values[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.values[key] = s
	return e
}

// Add appends children and returns the receiver for chaining.
func (e *Element) Add(children ...*Element) *Element {
	for _, c := range children {
		c.parent = e
		c.index = len(e.Children(c.name))
		e.children = append(e.children, c)
	}
	return e
}

// Keys returns attribute names in insertion order.
func (e *Element) Keys() []string {
	return append([]string(nil), e.keys...)
}

func (e *Element) Name() string { return e.name }

func (e *Element) Path() string {
	var parts []string
	for cur := e; cur != nil; cur = cur.parent {
		part := cur.name
		if cur.parent != nil {
			part = fmt.Sprintf("%s[%d]", cur.name, cur.index)
		}
		if id, ok := cur.values["id"]; ok {
			part = fmt.Sprintf("%s(id=%s)", part, id)
		}
		parts = append(parts, part)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (e *Element) Child(name string) (Node, bool) {
	for _, c := range e.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (e *Element) Children(name string) []Node {
	var out []Node
	for _, c := range e.children {
		if name == "" || c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (e *Element) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

func (e *Element) String(key string) (string, error) {
	v, ok := e.values[key]
	if !ok {
		return "", MissingError(e, key)
	}
	return v, nil
}

func (e *Element) Float(key string) (float64, error) {
	v, err := e.String(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, InvalidError(e, key, err)
	}
	return f, nil
}

func (e *Element) Int(key string) (int, error) {
	f, err := e.Float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, InvalidError(e, key, fmt.Errorf("%v is not an integer", f))
	}
	return int(f), nil
}
