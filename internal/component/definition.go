package component

import (
	"fmt"
	"strings"
)

// NoParent marks a root component.
const NoParent = ""

// Definition describes a named component, the parent it mounts into and the
// container inside the parent's output where it is attached.
type Definition struct {
	Name      string
	Parent    string
	Container string
	// View is whatever renders the component. The resolver hands it back
	// unchanged and never looks inside.
	View any
}

// IsRoot reports whether the definition has no parent.
func (d Definition) IsRoot() bool {
	return d.Parent == NoParent
}

// Normalized returns a trimmed copy of the definition.
func (d Definition) Normalized() Definition {
	return Definition{
		Name:      strings.TrimSpace(d.Name),
		Parent:    strings.TrimSpace(d.Parent),
		Container: strings.TrimSpace(d.Container),
		View:      d.View,
	}
}

// Validate ensures the definition can be registered.
func (d Definition) Validate() error {
	normalized := d.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("component: name is required")
	}
	if normalized.Parent == normalized.Name {
		return fmt.Errorf("%w: %s", ErrSelfParent, normalized.Name)
	}
	return nil
}
