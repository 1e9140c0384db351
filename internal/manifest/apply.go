package manifest

import (
	"fmt"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

// Override records a component declared by more than one manifest file. The
// later file wins.
type Override struct {
	Name         string
	PreviousPath string
	Path         string
}

// Apply registers every component of files in order.
func Apply(reg *component.Registry, files ...File) ([]Override, error) {
	if reg == nil {
		return nil, fmt.Errorf("manifest: registry is required")
	}
	var overrides []Override
	origin := make(map[string]string)
	for _, file := range files {
		for _, def := range file.Manifest.Components {
			if previous, ok := origin[def.Name]; ok {
				overrides = append(overrides, Override{Name: def.Name, PreviousPath: previous, Path: file.Path})
			}
			origin[def.Name] = file.Path
			if err := reg.Register(def.Definition()); err != nil {
				return overrides, fmt.Errorf("manifest: register %s from %s: %w", def.Name, file.Path, err)
			}
		}
	}
	return overrides, nil
}

// Build loads paths into a new registry.
func Build(paths ...string) (*component.Registry, []Override, error) {
	files, err := LoadPaths(paths...)
	if err != nil {
		return nil, nil, err
	}
	reg := component.NewRegistry()
	overrides, err := Apply(reg, files...)
	if err != nil {
		return nil, nil, err
	}
	return reg, overrides, nil
}
