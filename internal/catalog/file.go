package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk format for seeding a catalog store.
type File struct {
	Objects []Entry `yaml:"objects"`
}

// LoadFile reads catalog entries from a YAML file.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	var errs []error
	for i, e := range f.Objects {
		if !Valid(e.Collection) {
			errs = append(errs, fmt.Errorf("object %d: %w '%s'", i, ErrUnknownCollection, e.Collection))
		}
		if e.ID == "" || e.Name == "" {
			errs = append(errs, fmt.Errorf("object %d: id and name are required", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return f.Objects, nil
}
