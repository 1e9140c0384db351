package component

import (
	"errors"
	"fmt"
)

// Check resolves every registered component on its own and returns all
// failures joined together, or nil when each component can be mounted.
func Check(src Lister) error {
	var errs []error
	for _, name := range src.Names() {
		if _, err := Resolve(src, []string{name}); err != nil {
			errs = append(errs, fmt.Errorf("component %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
