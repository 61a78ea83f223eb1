// Package xml_adapter reads road network descriptions in the XML input
// format. Elements become nodes and XML attributes become node attributes;
// namespace declarations and namespaced attributes are dropped.
package xml_adapter

import (
	"context"
	"fmt"

	"github.com/beevik/etree"
	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
)

// RootName is the required name of the document element.
const RootName = "roadNetwork"

// Load reads and converts the document at path.
func Load(ctx context.Context, path string) (*attr.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read XML file %s: %w", path, err)
	}
	root, err := convert(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("XML description loaded.", "path", path, "segments", countSegments(root))
	return root, nil
}

// LoadString converts an in-memory document.
func LoadString(ctx context.Context, s string) (*attr.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	root, err := convert(doc)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("XML description loaded.", "segments", countSegments(root))
	return root, nil
}

func convert(doc *etree.Document) (*attr.Element, error) {
	el := doc.Root()
	if el == nil {
		return nil, fmt.Errorf("%w: document has no root element", attr.ErrMissing)
	}
	if el.Tag != RootName {
		return nil, fmt.Errorf("%w: root element is <%s>, want <%s>", attr.ErrInvalid, el.Tag, RootName)
	}
	return element(el), nil
}

func element(el *etree.Element) *attr.Element {
	out := attr.New(el.Tag)
	for _, a := range el.Attr {
		if a.Space != "" || a.Key == "xmlns" {
			continue
		}
		out.Set(a.Key, a.Value)
	}
	for _, c := range el.ChildElements() {
		out.Add(element(c))
	}
	return out
}

func countSegments(root *attr.Element) int {
	segs, ok := root.Child("segments")
	if !ok {
		return 0
	}
	return len(segs.Children(""))
}
