package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// RootName is the name of the synthetic node that holds every file's
// top-level content.
const RootName = "roadNetwork"

// ErrNoFiles is returned when none of the given paths yields an .hcl file.
var ErrNoFiles = errors.New("no .hcl files found")

// Loader reads road network descriptions written in HCL.
type Loader struct{}

// NewLoader creates a new HCL description loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their top-level
// content into one root node. Unlabeled top-level blocks of the same type,
// such as segments, are merged across files; attributes may be set only once.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Node, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoFiles, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	root := newNode(RootName, RootName, hcl.Range{})
	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := l.merge(root, hclFile); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "blocks", len(root.children))
	return root, nil
}

// LoadSource parses a single in-memory document. filename is only used in
// diagnostics and node paths.
func (l *Loader) LoadSource(ctx context.Context, filename string, src []byte) (*Node, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL source %s: %w", filename, diags)
	}
	root := newNode(RootName, RootName, hcl.Range{})
	if err := l.merge(root, hclFile); err != nil {
		return nil, fmt.Errorf("failed to decode HCL source %s: %w", filename, err)
	}
	ctxlog.FromContext(ctx).Debug("HCL source loaded.", "file", filename, "blocks", len(root.children))
	return root, nil
}

func (l *Loader) merge(root *Node, f *hcl.File) error {
	body, ok := f.Body.(*hclsyntax.Body)
	if !ok {
		return fmt.Errorf("unexpected body type %T", f.Body)
	}
	if err := l.decodeAttributes(root, body); err != nil {
		return err
	}
	for _, b := range body.Blocks {
		if len(b.Labels) == 0 {
			if existing := root.child(b.Type); existing != nil {
				if err := l.decodeBody(existing, b.Body); err != nil {
					return err
				}
				continue
			}
		}
		child, err := l.decodeBlock(root, b)
		if err != nil {
			return err
		}
		root.children = append(root.children, child)
	}
	return nil
}

// decodeBlock turns a block into a node. The single allowed label becomes
// the id attribute.
func (l *Loader) decodeBlock(parent *Node, b *hclsyntax.Block) (*Node, error) {
	if len(b.Labels) > 1 {
		return nil, fmt.Errorf("%s: block %q takes at most one label, got %d", b.DefRange(), b.Type, len(b.Labels))
	}
	path := parent.path + "/" + b.Type
	if len(b.Labels) == 1 {
		path = fmt.Sprintf("%s(id=%s)", path, b.Labels[0])
	}
	n := newNode(b.Type, path, b.DefRange())
	if len(b.Labels) == 1 {
		n.values["id"] = cty.StringVal(b.Labels[0])
	}
	if err := l.decodeBody(n, b.Body); err != nil {
		return nil, err
	}
	return n, nil
}

func (l *Loader) decodeBody(n *Node, body *hclsyntax.Body) error {
	if err := l.decodeAttributes(n, body); err != nil {
		return err
	}
	for _, b := range body.Blocks {
		child, err := l.decodeBlock(n, b)
		if err != nil {
			return err
		}
		n.children = append(n.children, child)
	}
	return nil
}

// decodeAttributes evaluates attributes without variables or functions, so
// only literal values and constant expressions are accepted.
func (l *Loader) decodeAttributes(n *Node, body *hclsyntax.Body) error {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte })

	for _, a := range attrs {
		if _, exists := n.values[a.Name]; exists {
			return fmt.Errorf("%s: attribute %q is already set for %s", a.SrcRange, a.Name, n.path)
		}
		val, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("invalid value for attribute %q: %w", a.Name, diags)
		}
		n.values[a.Name] = val
	}
	return nil
}

func (n *Node) child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
