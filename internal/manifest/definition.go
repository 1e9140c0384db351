package manifest

import (
	"fmt"
	"strings"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

// Manifest is the on-disk schema of a components file.
type Manifest struct {
	Components []ComponentDefinition `json:"components" yaml:"components"`
}

// ComponentDefinition is one entry of a manifest. An omitted or null parent
// declares a root component.
type ComponentDefinition struct {
	Name      string `json:"name" yaml:"name"`
	Parent    string `json:"parent,omitempty" yaml:"parent,omitempty"`
	Container string `json:"container,omitempty" yaml:"container,omitempty"`
	View      any    `json:"view,omitempty" yaml:"view,omitempty"`
}

// Normalized returns a trimmed copy of the manifest.
func (m Manifest) Normalized() Manifest {
	if len(m.Components) == 0 {
		return Manifest{}
	}
	clone := Manifest{Components: make([]ComponentDefinition, len(m.Components))}
	for i, def := range m.Components {
		clone.Components[i] = ComponentDefinition{
			Name:      strings.TrimSpace(def.Name),
			Parent:    strings.TrimSpace(def.Parent),
			Container: strings.TrimSpace(def.Container),
			View:      def.View,
		}
	}
	return clone
}

// Validate ensures every entry is well-formed and names are unique within the
// manifest. Parents are not checked: they may live in another file.
func (m Manifest) Validate() error {
	normalized := m.Normalized()
	seen := make(map[string]int, len(normalized.Components))
	for idx, def := range normalized.Components {
		if def.Name == "" {
			return fmt.Errorf("manifest: components[%d]: name is required", idx)
		}
		if def.Parent == def.Name {
			return fmt.Errorf("manifest: components[%d]: %w: %s", idx, component.ErrSelfParent, def.Name)
		}
		if first, exists := seen[def.Name]; exists {
			return fmt.Errorf("manifest: components[%d]: duplicate name %s (first declared at components[%d])", idx, def.Name, first)
		}
		seen[def.Name] = idx
	}
	return nil
}

// Definition converts the entry into a registry definition.
func (def ComponentDefinition) Definition() component.Definition {
	return component.Definition{
		Name:      def.Name,
		Parent:    def.Parent,
		Container: def.Container,
		View:      def.View,
	}
}
