package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

func sampleForest(t *testing.T) component.Forest {
	t.Helper()
	reg := component.NewRegistry()
	reg.MustRegister(component.Definition{Name: "A", View: "a.html"})
	reg.MustRegister(component.Definition{Name: "B", Parent: "A", Container: "main"})
	reg.MustRegister(component.Definition{Name: "D", Parent: "B", Container: "body"})
	reg.MustRegister(component.Definition{Name: "C", Parent: "A", Container: "side"})
	reg.MustRegister(component.Definition{Name: "F"})
	forest, err := reg.Resolve("D", "C", "F")
	require.NoError(t, err)
	return forest
}

func TestJSONShape(t *testing.T) {
	data, err := JSON(sampleForest(t))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "A", decoded[0]["name"])
	require.Equal(t, "", decoded[0]["container"])
	require.Equal(t, "a.html", decoded[0]["view"])

	children := decoded[0]["children"].([]any)
	require.Len(t, children, 2)
	require.Equal(t, "main", children[0].(map[string]any)["container"])

	f := decoded[1]
	require.Equal(t, []any{}, f["children"], "leaves carry an empty array")
	_, hasView := f["view"]
	require.False(t, hasView)
}

func TestYAMLRoundTrip(t *testing.T) {
	data, err := YAML(sampleForest(t))
	require.NoError(t, err)

	var decoded []Node
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "B", decoded[0].Children[0].Name)
	require.Equal(t, "D", decoded[0].Children[0].Children[0].Name)
	require.Equal(t, "body", decoded[0].Children[0].Children[0].Container)
}

func TestCompact(t *testing.T) {
	require.Equal(t, "A[B[D], C], F", Compact(sampleForest(t)))
	require.Equal(t, "", Compact(nil))
}

func TestTreeOneLinePerNode(t *testing.T) {
	forest := sampleForest(t)
	out := Tree(forest, PlainStyles())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, len(forest.Flatten()))
	require.Contains(t, lines[0], "A")
	require.Contains(t, lines[1], "B (main)")
	require.Contains(t, lines[2], "D (body)")
	require.Contains(t, lines[3], "C (side)")
	require.Contains(t, lines[4], "F")

	indent := func(s string) int { return strings.Index(s, strings.TrimLeft(s, " │├└─")) }
	require.Less(t, indent(lines[1]), indent(lines[2]), "grandchildren are nested deeper")
}

func TestLabel(t *testing.T) {
	require.Equal(t, "A", Label(component.Definition{Name: "A"}, PlainStyles()))
	require.Equal(t, "B (main)", Label(component.Definition{Name: "B", Parent: "A", Container: "main"}, PlainStyles()))
}

func TestTableListsDefinitions(t *testing.T) {
	out := Table([]component.Definition{
		{Name: "A"},
		{Name: "B", Parent: "A", Container: "main"},
	}, PlainStyles())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, []string{"NAME", "PARENT", "CONTAINER"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"A", "-", "-"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"B", "A", "main"}, strings.Fields(lines[2]))
}
