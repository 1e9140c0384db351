package component

import (
	"errors"
	"strings"
	"testing"
)

// Components hierarchy used by most tests:
//
//	     A (root)      F (root)
//	    / \            \
//	   B   C            G
//	  /     \
//	 D       E
func buildHierarchy(t *testing.T) *Registry {
	t.Helper()
	return buildRegistry(t,
		Definition{Name: "A"},
		Definition{Name: "B", Parent: "A", Container: "#b"},
		Definition{Name: "C", Parent: "A", Container: "#c"},
		Definition{Name: "D", Parent: "B", Container: "#d"},
		Definition{Name: "E", Parent: "C", Container: "#e"},
		Definition{Name: "F"},
		Definition{Name: "G", Parent: "F", Container: "#g"},
	)
}

func buildRegistry(t *testing.T, defs ...Definition) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			t.Fatalf("register %s: %v", def.Name, err)
		}
	}
	return reg
}

func mustResolve(t *testing.T, reg *Registry, names ...string) Forest {
	t.Helper()
	forest, err := reg.Resolve(names...)
	if err != nil {
		t.Fatalf("resolve %v: %v", names, err)
	}
	return forest
}

func expectResolveError(t *testing.T, reg *Registry, target error, names ...string) error {
	t.Helper()
	forest, err := reg.Resolve(names...)
	if !errors.Is(err, target) {
		t.Fatalf("resolve %v: expected %v, got %v", names, target, err)
	}
	if forest != nil {
		t.Fatalf("resolve %v: expected no forest on error, got %s", names, forest)
	}
	return err
}

func TestResolveEmptyRequest(t *testing.T) {
	err := expectResolveError(t, NewRegistry(), ErrEmptyRequest)
	if err.Error() != "Calculated components tree is empty" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if kind := KindOf(err); kind != KindEmptyRequest {
		t.Fatalf("expected kind %s, got %s", KindEmptyRequest, kind)
	}
}

func TestResolveUnknownComponent(t *testing.T) {
	err := expectResolveError(t, NewRegistry(), ErrUnknownComponent, "A")
	if err.Error() != `Unknown component with name "A"` {
		t.Fatalf("unexpected message %q", err.Error())
	}
	var unknown *UnknownComponentError
	if !errors.As(err, &unknown) || unknown.Name != "A" {
		t.Fatalf("expected UnknownComponentError for A, got %#v", err)
	}
	if kind := KindOf(err); kind != KindUnknownComponent {
		t.Fatalf("expected kind %s, got %s", KindUnknownComponent, kind)
	}
}

func TestResolveUnknownAncestor(t *testing.T) {
	reg := buildRegistry(t,
		Definition{Name: "leaf", Parent: "middle"},
		Definition{Name: "middle", Parent: "ghost"},
	)
	err := expectResolveError(t, reg, ErrUnknownComponent, "leaf")
	if err.Error() != `Unknown component with name "ghost"` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestResolveCycleHasNoRoot(t *testing.T) {
	//  A
	// / \
	// B - C
	reg := buildRegistry(t,
		Definition{Name: "A", Parent: "C"},
		Definition{Name: "C", Parent: "B"},
		Definition{Name: "B", Parent: "A"},
	)
	err := expectResolveError(t, reg, ErrNoRootNode, "A")
	if !strings.Contains(err.Error(), "Calculated components tree should have at least one root node") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if kind := KindOf(err); kind != KindNoRootNode {
		t.Fatalf("expected kind %s, got %s", KindNoRootNode, kind)
	}
}

func TestResolveCycleFailsWholeRequest(t *testing.T) {
	reg := buildHierarchy(t)
	reg.MustRegister(Definition{Name: "X", Parent: "Y"})
	reg.MustRegister(Definition{Name: "Y", Parent: "X"})

	expectResolveError(t, reg, ErrNoRootNode, "D", "X")
}

func TestResolveCycleAboveLeaf(t *testing.T) {
	reg := buildRegistry(t,
		Definition{Name: "leaf", Parent: "P"},
		Definition{Name: "P", Parent: "Q"},
		Definition{Name: "Q", Parent: "P"},
	)
	expectResolveError(t, reg, ErrNoRootNode, "leaf")
}

func TestResolveRootWithContainer(t *testing.T) {
	reg := buildRegistry(t, Definition{Name: "A", Container: "#a"})

	err := expectResolveError(t, reg, ErrRootHasContainer, "A")
	if !strings.Contains(err.Error(), "Root component could not have a container") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if kind := KindOf(err); kind != KindRootHasContainer {
		t.Fatalf("expected kind %s, got %s", KindRootHasContainer, kind)
	}
}

func TestResolveRootContainerOnlyCheckedForOutputRoots(t *testing.T) {
	reg := buildHierarchy(t)
	reg.MustRegister(Definition{Name: "Z", Container: "#z"})

	if got := mustResolve(t, reg, "D").String(); got != "A[B[D]]" {
		t.Fatalf("expected A[B[D]], got %s", got)
	}
}

func TestResolveTrees(t *testing.T) {
	reg := buildHierarchy(t)
	cases := []struct {
		name  string
		names []string
		want  string
	}{
		{name: "single root component", names: []string{"A"}, want: "A"},
		{name: "single component", names: []string{"D"}, want: "A[B[D]]"},
		{name: "same branch", names: []string{"C", "E"}, want: "A[C[E]]"},
		{name: "same level", names: []string{"D", "E"}, want: "A[B[D], C[E]]"},
		{name: "different levels", names: []string{"D", "C"}, want: "A[B[D], C]"},
		{name: "different roots", names: []string{"C", "G"}, want: "A[C], F[G]"},
		{name: "ancestor requested after leaf", names: []string{"D", "B", "A"}, want: "A[B[D]]"},
		{name: "duplicate names", names: []string{"E", "E"}, want: "A[C[E]]"},
		{name: "first encounter order", names: []string{"G", "E", "D"}, want: "F[G], A[C[E], B[D]]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			forest := mustResolve(t, reg, tc.names...)
			if got := forest.String(); got != tc.want {
				t.Fatalf("resolve %v: expected %s, got %s", tc.names, tc.want, got)
			}
			assertStructure(t, forest)
		})
	}
}

func TestResolveSharesAncestorNodes(t *testing.T) {
	forest := mustResolve(t, buildHierarchy(t), "D", "E")

	if len(forest) != 1 {
		t.Fatalf("expected a single root, got %d", len(forest))
	}
	root := forest[0]
	if root.Name() != "A" || len(root.Children) != 2 {
		t.Fatalf("expected A with two children, got %s", forest)
	}
	if root.Children[0].Name() != "B" || root.Children[1].Name() != "C" {
		t.Fatalf("unexpected children order: %s", forest)
	}
	if root.Children[0].Component.Container != "#b" {
		t.Fatalf("expected container #b, got %q", root.Children[0].Component.Container)
	}
}

func TestResolvePassesViewThrough(t *testing.T) {
	type view struct{ template string }
	v := &view{template: "page.tmpl"}
	reg := buildRegistry(t, Definition{Name: "page", View: v})

	forest := mustResolve(t, reg, "page")
	if got, ok := forest[0].Component.View.(*view); !ok || got != v {
		t.Fatalf("expected the registered view pointer, got %#v", forest[0].Component.View)
	}
}

func TestResolveDoesNotMutateRegistry(t *testing.T) {
	reg := buildHierarchy(t)
	generation := reg.Generation()
	names := strings.Join(reg.Names(), ",")

	_ = mustResolve(t, reg, "D", "G")
	_, _ = reg.Resolve("missing")

	if reg.Generation() != generation {
		t.Fatalf("generation moved from %d to %d", generation, reg.Generation())
	}
	if got := strings.Join(reg.Names(), ","); got != names {
		t.Fatalf("names changed from %s to %s", names, got)
	}
}

func TestResolveReturnsFreshForests(t *testing.T) {
	reg := buildHierarchy(t)
	first := mustResolve(t, reg, "D")
	second := mustResolve(t, reg, "D")

	if first.String() != second.String() {
		t.Fatalf("resolves differ: %s vs %s", first, second)
	}
	if first[0] == second[0] {
		t.Fatal("expected distinct root nodes per resolve")
	}
	first[0].Children = nil
	if got := second.String(); got != "A[B[D]]" {
		t.Fatalf("second forest changed through the first: %s", got)
	}
}

func TestResolveAgainstPlainSource(t *testing.T) {
	src := mapSource{
		"root": {Name: "root"},
		"leaf": {Name: "leaf", Parent: "root", Container: "#leaf"},
	}
	forest, err := Resolve(src, []string{"leaf"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := forest.String(); got != "root[leaf]" {
		t.Fatalf("expected root[leaf], got %s", got)
	}
}

func TestResolveVersionedMatchesGeneration(t *testing.T) {
	reg := buildHierarchy(t)
	forest, generation, err := reg.ResolveVersioned("D")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if generation != reg.Generation() {
		t.Fatalf("expected generation %d, got %d", reg.Generation(), generation)
	}
	if got := forest.String(); got != "A[B[D]]" {
		t.Fatalf("expected A[B[D]], got %s", got)
	}

	reg.MustRegister(Definition{Name: "D", Parent: "C", Container: "#d"})
	forest, next, err := reg.ResolveVersioned("D")
	if err != nil {
		t.Fatalf("resolve after register: %v", err)
	}
	if next <= generation || forest.String() != "A[C[D]]" {
		t.Fatalf("expected a newer generation with A[C[D]], got %d %s", next, forest)
	}
}

func assertStructure(t *testing.T, forest Forest) {
	t.Helper()
	for _, root := range forest {
		if !root.Component.IsRoot() {
			t.Fatalf("forest root %s has parent %q", root.Name(), root.Component.Parent)
		}
		if root.Component.Container != "" {
			t.Fatalf("forest root %s has a container", root.Name())
		}
	}
	var check func(parent *Node)
	check = func(parent *Node) {
		for _, child := range parent.Children {
			if child.Component.Parent != parent.Name() {
				t.Fatalf("child %s has parent %q but sits under %s", child.Name(), child.Component.Parent, parent.Name())
			}
			check(child)
		}
	}
	for _, root := range forest {
		check(root)
	}
}

type mapSource map[string]Definition

func (m mapSource) Lookup(name string) (Definition, bool) {
	def, ok := m[name]
	return def, ok
}

func (m mapSource) Len() int { return len(m) }
