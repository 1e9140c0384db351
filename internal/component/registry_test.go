package component

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

func mustLookup(t *testing.T, reg *Registry, name string) Definition {
	t.Helper()
	def, ok := reg.Lookup(name)
	if !ok {
		t.Fatalf("expected %s to be registered", name)
	}
	return def
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := buildRegistry(t,
		Definition{Name: "layout"},
		Definition{Name: " sidebar ", Parent: " layout ", Container: " #side ", View: "sidebar.tmpl"},
	)

	def := mustLookup(t, reg, "sidebar")
	if def.Parent != "layout" || def.Container != "#side" || def.View != "sidebar.tmpl" {
		t.Fatalf("unexpected definition %+v", def)
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Fatal("missing should not be registered")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 components, got %d", reg.Len())
	}
	if got := strings.Join(reg.Names(), ","); got != "layout,sidebar" {
		t.Fatalf("unexpected names %s", got)
	}
}

func TestRegistryOverwriteKeepsSlot(t *testing.T) {
	reg := buildRegistry(t,
		Definition{Name: "A"},
		Definition{Name: "B", Parent: "A"},
		Definition{Name: "C", Parent: "A"},
	)
	before := reg.Generation()

	reg.MustRegister(Definition{Name: "B", Parent: "C", Container: "#b"})

	if got := strings.Join(reg.Names(), ","); got != "A,B,C" {
		t.Fatalf("overwrite moved the entry: %s", got)
	}
	def := mustLookup(t, reg, "B")
	if def.Parent != "C" || def.Container != "#b" {
		t.Fatalf("overwrite not applied: %+v", def)
	}
	if reg.Generation() <= before {
		t.Fatalf("expected generation to grow past %d, got %d", before, reg.Generation())
	}
}

func TestRegistryAcceptsMissingParents(t *testing.T) {
	reg := buildRegistry(t,
		Definition{Name: "child", Parent: "not-yet"},
		Definition{Name: "not-yet"},
	)
	if got := mustResolve(t, reg, "child").String(); got != "not-yet[child]" {
		t.Fatalf("expected not-yet[child], got %s", got)
	}
}

func TestRegistryRejectsInvalidDefinitions(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Definition{Name: "  "}); err == nil {
		t.Fatal("expected blank name to be rejected")
	}
	if err := reg.Register(Definition{Name: "A", Parent: "A"}); !errors.Is(err, ErrSelfParent) {
		t.Fatalf("expected ErrSelfParent, got %v", err)
	}
	if reg.Len() != 0 || reg.Generation() != 0 {
		t.Fatalf("rejected definitions changed the registry: len=%d generation=%d", reg.Len(), reg.Generation())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("MustRegister should panic on an invalid definition")
		}
	}()
	reg.MustRegister(Definition{})
}

func TestRegistryDefinitionsReturnsCopy(t *testing.T) {
	reg := buildRegistry(t, Definition{Name: "A"})
	defs := reg.Definitions()
	defs[0].Name = "changed"

	mustLookup(t, reg, "A")
}

func TestRegistryIDsAreDistinct(t *testing.T) {
	if NewRegistry().ID() == NewRegistry().ID() {
		t.Fatal("expected distinct registry ids")
	}
}

func TestRegistryConcurrentRegisterAndResolve(t *testing.T) {
	reg := buildRegistry(t, Definition{Name: "root"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				reg.MustRegister(Definition{Name: "leaf", Parent: "root", Container: "#leaf"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				forest, err := reg.Resolve("root")
				if err != nil || forest.String() != "root" {
					t.Errorf("resolve root: %v %s", err, forest)
					return
				}
			}
		}()
	}
	wg.Wait()
	if reg.Len() != 2 {
		t.Fatalf("expected 2 components, got %d", reg.Len())
	}
}
