// Package hcladapter is the HCL implementation of the config.Loader
// interface. It discovers .hcl files under the workspace paths, parses
// them, and translates every recognized block into the format-agnostic
// configuration model.
package hcladapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cortexmark/cortexmark/internal/config"
	"github.com/cortexmark/cortexmark/internal/ctxlog"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

var topSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "init"},
		{Type: "display"},
		{Type: "figures"},
		{Type: "target", LabelNames: []string{"name"}},
		{Type: "annotation", LabelNames: []string{"name"}},
		{Type: "figure", LabelNames: []string{"name"}},
	},
}

// Load orchestrates the workspace loading process. Files are processed in
// sorted path order so that target key declaration order is deterministic
// across runs.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Annotations: make(map[string]*config.Annotation),
		Figures: &config.FigureSet{
			Hooks: make(map[string]string),
		},
	}

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %s", file, diags.Error())
		}
		content, diags := hclFile.Body.Content(topSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %s", file, diags.Error())
		}
		// Blocks arrive in source order, which is what gives target keys
		// their declaration order.
		for _, block := range content.Blocks {
			if err := l.translateBlock(block, model); err != nil {
				return nil, err
			}
		}
	}

	if model.Display == nil {
		model.Display = defaultDisplay()
	}
	logger.Debug("HCL loading complete.",
		"targets", len(model.Targets),
		"annotations", len(model.Annotations),
		"figures", len(model.Figures.Hooks))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a sorted, de-duplicated
// list of the .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // A configured path that does not exist is not an error.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	sort.Strings(allFiles)
	return allFiles, nil
}

func defaultDisplay() *config.Display {
	return &config.Display{
		FigSize: [2]float64{4, 4},
		DPI:     128,
	}
}
