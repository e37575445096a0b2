// Package hcl_adapter implements config.Loader for HCL manifests.
package hcl_adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/fsutil"
	"github.com/vk/catalogplan/internal/schema"
)

// Extension is the file extension of manifest files.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every manifest under the given paths, translates all blocks
// into one model and validates it. Files are read in path order and blocks
// keep their declaration order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s manifests found in %v", Extension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		m, err := translate(ctxlog.WithLogger(ctx, logger.With("file", file)), &root)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		model.Merge(m)
	}

	if err := config.Validate(model); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"units", len(model.Units),
		"applications", len(model.Applications),
		"modules", len(model.Modules),
		"assemblies", len(model.Assemblies),
	)
	return model, nil
}

// findAllHCLFiles expands the given paths into a flat, de-duplicated list
// of manifest files. Paths that do not exist are skipped.
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
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == Extension {
				add(path)
			}
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, Extension)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return allFiles, nil
}
