package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := run(t, "init", "-p", dir)
	require.NoError(t, err)
	require.Contains(t, out, "Initialized")
	return dir
}

func writeComponents(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, ".esencia", "components", name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestInitCreatesLayout(t *testing.T) {
	dir := initProject(t)
	for _, rel := range []string{".esencia/config.yaml", ".esencia/components/example.yaml", ".esencia/logs", ".esencia/traces"} {
		_, err := os.Stat(filepath.Join(dir, rel))
		require.NoError(t, err, rel)
	}
}

func TestResolveFormats(t *testing.T) {
	dir := initProject(t)

	out, err := run(t, "resolve", "-p", dir, "--format", "compact", "content", "header")
	require.NoError(t, err)
	require.Equal(t, "layout[content, header]\n", out)

	out, err = run(t, "resolve", "-p", dir, "header")
	require.NoError(t, err)
	require.Contains(t, out, "layout")
	require.Contains(t, out, "header (#header)")

	out, err = run(t, "resolve", "-p", dir, "-f", "json", "header")
	require.NoError(t, err)
	var nodes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	require.Equal(t, "layout", nodes[0]["name"])

	out, err = run(t, "resolve", "-p", dir, "-f", "yaml", "header")
	require.NoError(t, err)
	require.Contains(t, out, "name: layout")
	require.Contains(t, out, "#header")
}

func TestResolveErrors(t *testing.T) {
	dir := initProject(t)

	_, err := run(t, "resolve", "-p", dir)
	require.EqualError(t, err, "Calculated components tree is empty")

	_, err = run(t, "resolve", "-p", dir, "missing")
	require.EqualError(t, err, `Unknown component with name "missing"`)

	_, err = run(t, "resolve", "-p", dir, "-f", "xml", "header")
	require.ErrorContains(t, err, `unknown format "xml"`)
}

func TestResolveWritesProjectLog(t *testing.T) {
	dir := initProject(t)
	_, err := run(t, "resolve", "-p", dir, "--log-level", "debug", "header")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".esencia", "logs", "esencia.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "[DEBUG] [config] config loaded")
	require.Contains(t, string(data), "[resolve] resolved names=1 roots=1")
}

func TestResolveTracesToFile(t *testing.T) {
	dir := initProject(t)
	t.Setenv("ESENCIA_TRACING_ENABLED", "true")

	_, err := run(t, "resolve", "-p", dir, "header")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".esencia", "traces", "traces.jsonl"))
	require.NoError(t, err)
	require.Contains(t, string(data), "component.resolve")
}

func TestListShowsRegistrationOrder(t *testing.T) {
	dir := initProject(t)
	out, err := run(t, "list", "-p", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, []string{"layout", "-", "-"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"header", "layout", "#header"}, strings.Fields(lines[2]))
}

func TestListEmptyProject(t *testing.T) {
	out, err := run(t, "list", "-p", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "No components registered.\n", out)
}

func TestValidate(t *testing.T) {
	dir := initProject(t)
	out, err := run(t, "validate", "-p", dir)
	require.NoError(t, err)
	require.Contains(t, out, "OK: 3 components")

	writeComponents(t, dir, "broken.yaml", `
components:
  - name: widget
    container: "#side"
  - name: orphan
    parent: ghost
    container: "#x"
`)
	out, err = run(t, "validate", "-p", dir)
	require.ErrorIs(t, err, errInvalidManifests)
	require.Contains(t, out, "Invalid:")
	require.Contains(t, out, "- component widget: Root component could not have a container")
	require.Contains(t, out, `- component orphan: Unknown component with name "ghost"`)
}

func TestValidateReportsLoadErrors(t *testing.T) {
	dir := initProject(t)
	writeComponents(t, dir, "bad.yaml", "components: [")

	out, err := run(t, "validate", "-p", dir)
	require.ErrorIs(t, err, errInvalidManifests)
	require.Contains(t, out, "Validation failed:")
}

func TestExplicitConfigFile(t *testing.T) {
	dir := initProject(t)
	cfgPath := filepath.Join(t.TempDir(), "alt.yaml")
	manifests := filepath.Join(t.TempDir(), "manifests")
	require.NoError(t, os.MkdirAll(manifests, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(manifests, "m.yaml"), []byte("components:\n  - name: solo\n"), 0o644))
	require.NoError(t, os.WriteFile(cfgPath, []byte("manifests:\n  paths:\n    - "+manifests+"\n"), 0o644))

	out, err := run(t, "resolve", "-p", dir, "-c", cfgPath, "-f", "compact", "solo")
	require.NoError(t, err)
	require.Equal(t, "solo\n", out)

	_, err = run(t, "resolve", "-p", dir, "-c", filepath.Join(dir, "nope.yaml"), "solo")
	require.Error(t, err)
}
