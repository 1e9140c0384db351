package component

import "strings"

// Forest is the ordered list of root nodes produced by Resolve.
type Forest []*Node

// Walk visits nodes depth-first in order. Returning false from fn skips the
// children of that node.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, node := range nodes {
			if fn(node, depth) {
				visit(node.Children, depth+1)
			}
		}
	}
	visit(f, 0)
}

// Flatten returns every node in walk order.
func (f Forest) Flatten() []*Node {
	var out []*Node
	f.Walk(func(n *Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// Names returns every component name in walk order.
func (f Forest) Names() []string {
	var names []string
	f.Walk(func(n *Node, _ int) bool {
		names = append(names, n.Name())
		return true
	})
	return names
}

// Find returns the node for a component name.
func (f Forest) Find(name string) (*Node, bool) {
	var found *Node
	f.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Leaves returns the nodes without children in walk order.
func (f Forest) Leaves() []*Node {
	var leaves []*Node
	f.Walk(func(n *Node, _ int) bool {
		if len(n.Children) == 0 {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// Clone returns a deep copy of the node structure. Definitions are copied by
// value; views are shared.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i, node := range f {
		out[i] = node.clone()
	}
	return out
}

func (n *Node) clone() *Node {
	clone := &Node{Component: n.Component}
	if len(n.Children) > 0 {
		clone.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			clone.Children[i] = child.clone()
		}
	}
	return clone
}

// String renders the forest as A[B[D], C], F[G].
func (f Forest) String() string {
	var b strings.Builder
	writeNodes(&b, f)
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []*Node) {
	for i, node := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(node.Name())
		if len(node.Children) > 0 {
			b.WriteByte('[')
			writeNodes(b, node.Children)
			b.WriteByte(']')
		}
	}
}
