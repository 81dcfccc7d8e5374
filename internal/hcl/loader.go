package hcl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/fsutil"
	"github.com/specialistvlad/flowgrid/internal/graph"
)

// ErrNoFiles is returned when the given paths hold no .hcl file.
var ErrNoFiles = errors.New("no .hcl files found")

// Load reads every .hcl file under paths into a single graph. Directories are
// walked recursively and files are read in lexical order, so node and edge
// order is stable across runs.
func Load(ctx context.Context, paths ...string) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Program loader started.", "path_count", len(paths))

	files, err := FindFiles(paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, strings.Join(paths, ", "))
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	g := graph.New()
	for _, file := range files {
		f, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		if err := decodeInto(g, f.Body); err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
	}

	logger.Debug("Program loaded.", "files", len(files), "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

// Parse decodes a program held in memory. filename only labels diagnostics.
func Parse(src []byte, filename string) (*graph.Graph, error) {
	f, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	g := graph.New()
	if err := decodeInto(g, f.Body); err != nil {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, err)
	}
	return g, nil
}

// FindFiles expands paths into a sorted, de-duplicated list of .hcl files.
// A path that is itself a file is taken as is, whatever its extension.
func FindFiles(paths ...string) ([]string, error) {
	return fsutil.Expand(".hcl", paths...)
}
