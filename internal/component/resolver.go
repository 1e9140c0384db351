package component

import "fmt"

// Node is one component in a resolved forest.
type Node struct {
	Component Definition
	Children  []*Node
}

// Name returns the component name of the node.
func (n *Node) Name() string {
	return n.Component.Name
}

// Resolve builds the forest required to mount the requested components. Each
// name is walked up to its root; chains that meet share the node where they
// meet, so every component appears once. Roots and children keep the order in
// which they were first reached while processing names in order.
func Resolve(src Source, names []string) (Forest, error) {
	if len(names) == 0 {
		return nil, ErrEmptyRequest
	}
	seen := make(map[string]*Node, len(names))
	var roots Forest
	for _, name := range names {
		leaf, ok := src.Lookup(name)
		if !ok {
			return nil, &UnknownComponentError{Name: name}
		}
		chain, err := ancestorChain(src, leaf, seen)
		if err != nil {
			return nil, err
		}
		for i := len(chain) - 1; i >= 0; i-- {
			def := chain[i]
			node := &Node{Component: def}
			seen[def.Name] = node
			if def.IsRoot() {
				roots = append(roots, node)
				continue
			}
			parent := seen[def.Parent]
			parent.Children = append(parent.Children, node)
		}
	}
	if len(roots) == 0 {
		return nil, ErrNoRootNode
	}
	for _, root := range roots {
		if root.Component.Container != "" {
			return nil, fmt.Errorf("%w: %s declares %q", ErrRootHasContainer, root.Name(), root.Component.Container)
		}
	}
	return roots, nil
}

// ancestorChain returns the definitions from leaf upwards that still need a
// node. It stops at a root or below the first ancestor already in seen. The
// walk is bounded by the registry size.
func ancestorChain(src Source, leaf Definition, seen map[string]*Node) ([]Definition, error) {
	var chain []Definition
	onChain := map[string]struct{}{}
	limit := src.Len()
	current := leaf
	for {
		if _, done := seen[current.Name]; done {
			return chain, nil
		}
		chain = append(chain, current)
		onChain[current.Name] = struct{}{}
		if current.IsRoot() {
			return chain, nil
		}
		if _, loop := onChain[current.Parent]; loop || len(chain) > limit {
			return nil, fmt.Errorf("%w: ancestors of %q loop through %q", ErrNoRootNode, leaf.Name, current.Parent)
		}
		parent, ok := src.Lookup(current.Parent)
		if !ok {
			return nil, &UnknownComponentError{Name: current.Parent}
		}
		current = parent
	}
}
