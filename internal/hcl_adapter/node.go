package hcl_adapter

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/zclconf/go-cty/cty"
)

// Node is one HCL block presented as an attr.Node. The synthetic root has no
// source range.
type Node struct {
	name     string
	path     string
	rng      hcl.Range
	values   map[string]cty.Value
	children []*Node
}

var _ attr.Node = (*Node)(nil)

func newNode(name, path string, rng hcl.Range) *Node {
	return &Node{name: name, path: path, rng: rng, values: make(map[string]cty.Value)}
}

func (n *Node) Name() string { return n.name }

// Path returns the block path followed by its position in the source file.
func (n *Node) Path() string {
	if n.rng.Filename == "" {
		return n.path
	}
	return fmt.Sprintf("%s (%s:%d,%d)", n.path, n.rng.Filename, n.rng.Start.Line, n.rng.Start.Column)
}

func (n *Node) Child(name string) (attr.Node, bool) {
	for _, c := range n.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

func (n *Node) Children(name string) []attr.Node {
	var out []attr.Node
	for _, c := range n.children {
		if name == "" || c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) Has(key string) bool {
	v, ok := n.values[key]
	return ok && !v.IsNull()
}

func (n *Node) String(key string) (string, error) {
	if !n.Has(key) {
		return "", attr.MissingError(n, key)
	}
	s, err := toString(n.values[key])
	if err != nil {
		return "", attr.InvalidError(n, key, err)
	}
	return s, nil
}

func (n *Node) Float(key string) (float64, error) {
	if !n.Has(key) {
		return 0, attr.MissingError(n, key)
	}
	f, err := toFloat(n.values[key])
	if err != nil {
		return 0, attr.InvalidError(n, key, err)
	}
	return f, nil
}

func (n *Node) Int(key string) (int, error) {
	f, err := n.Float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, attr.InvalidError(n, key, fmt.Errorf("%v is not an integer", f))
	}
	return int(f), nil
}
