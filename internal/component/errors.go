package component

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyRequest is returned when Resolve is called without names.
	ErrEmptyRequest = errors.New("Calculated components tree is empty")
	// ErrUnknownComponent matches every UnknownComponentError.
	ErrUnknownComponent = errors.New("unknown component")
	// ErrNoRootNode is returned when an ancestor chain never reaches a root.
	ErrNoRootNode = errors.New("Calculated components tree should have at least one root node")
	// ErrRootHasContainer is returned when a root of the resolved forest
	// declares a container.
	ErrRootHasContainer = errors.New("Root component could not have a container")
	// ErrSelfParent is returned by Register for a definition naming itself as
	// parent.
	ErrSelfParent = errors.New("component: parent must differ from name")
)

// UnknownComponentError reports a requested or ancestor name missing from the
// registry.
type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("Unknown component with name %q", e.Name)
}

// Is lets errors.Is(err, ErrUnknownComponent) match.
func (e *UnknownComponentError) Is(target error) bool {
	return target == ErrUnknownComponent
}

// Kind classifies resolver failures for transports that need a stable label.
type Kind string

const (
	KindNone             Kind = ""
	KindEmptyRequest     Kind = "empty_request"
	KindUnknownComponent Kind = "unknown_component"
	KindNoRootNode       Kind = "no_root_node"
	KindRootHasContainer Kind = "root_has_container"
	KindOther            Kind = "other"
)

// KindOf returns the resolver error kind carried by err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptyRequest):
		return KindEmptyRequest
	case errors.Is(err, ErrUnknownComponent):
		return KindUnknownComponent
	case errors.Is(err, ErrNoRootNode):
		return KindNoRootNode
	case errors.Is(err, ErrRootHasContainer):
		return KindRootHasContainer
	default:
		return KindOther
	}
}
