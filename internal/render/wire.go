// Package render turns resolved forests into terminal trees, JSON and YAML.
package render

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

// Node is the serialized shape of a resolved node.
type Node struct {
	Name      string `json:"name" yaml:"name"`
	Container string `json:"container" yaml:"container"`
	View      any    `json:"view,omitempty" yaml:"view,omitempty"`
	Children  []Node `json:"children" yaml:"children,omitempty"`
}

// Nodes converts a forest into its serialized shape. Children is never nil so
// JSON always carries an array.
func Nodes(forest component.Forest) []Node {
	out := make([]Node, 0, len(forest))
	for _, n := range forest {
		out = append(out, toNode(n))
	}
	return out
}

func toNode(n *component.Node) Node {
	children := make([]Node, 0, len(n.Children))
	for _, child := range n.Children {
		children = append(children, toNode(child))
	}
	return Node{
		Name:      n.Component.Name,
		Container: n.Component.Container,
		View:      n.Component.View,
		Children:  children,
	}
}

// JSON encodes the forest as indented JSON.
func JSON(forest component.Forest) ([]byte, error) {
	data, err := json.MarshalIndent(Nodes(forest), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML encodes the forest as YAML.
func YAML(forest component.Forest) ([]byte, error) {
	data, err := yaml.Marshal(Nodes(forest))
	if err != nil {
		return nil, fmt.Errorf("render: encode yaml: %w", err)
	}
	return data, nil
}

// Compact renders the forest on one line, e.g. "A[B, C], F[G]".
func Compact(forest component.Forest) string {
	return forest.String()
}
