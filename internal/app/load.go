package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/roadweaver/internal/attr"
	"github.com/specialistvlad/roadweaver/internal/ctxlog"
	"github.com/specialistvlad/roadweaver/internal/hcl_adapter"
	"github.com/specialistvlad/roadweaver/internal/xml_adapter"
)

// load reads the description with the adapter chosen by the configured
// format. In auto mode a file ending in .xml is read as XML and anything
// else as HCL.
func (a *App) load(ctx context.Context) (attr.Node, error) {
	logger := ctxlog.FromContext(ctx)
	format := a.config.Format
	if format == FormatAuto {
		format = detectFormat(a.config.InputPath)
	}
	logger.Debug("Loading description.", "path", a.config.InputPath, "format", format)

	switch format {
	case FormatXML:
		root, err := xml_adapter.Load(ctx, a.config.InputPath)
		if err != nil {
			return nil, err
		}
		return root, nil
	case FormatHCL:
		root, err := hcl_adapter.NewLoader().Load(ctx, a.config.InputPath)
		if err != nil {
			return nil, err
		}
		return root, nil
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

func detectFormat(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return FormatHCL
	}
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return FormatXML
	}
	return FormatHCL
}
