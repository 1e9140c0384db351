package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/vladimir-polyakov/esencia/internal/component"
)

const (
	colorName      = "#7DCFFF"
	colorContainer = "#9ECE6A"
	colorBranch    = "#565F89"
	colorHeader    = "#BB9AF7"
)

// Styles controls the look of terminal output.
type Styles struct {
	Name      lipgloss.Style
	Container lipgloss.Style
	Branch    lipgloss.Style
	Header    lipgloss.Style
}

// DefaultStyles returns the colored styles used on terminals.
func DefaultStyles() Styles {
	return Styles{
		Name:      lipgloss.NewStyle().Foreground(lipgloss.Color(colorName)).Bold(true),
		Container: lipgloss.NewStyle().Foreground(lipgloss.Color(colorContainer)),
		Branch:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorBranch)),
		Header:    lipgloss.NewStyle().Foreground(lipgloss.Color(colorHeader)).Bold(true).Padding(0, 2, 0, 0),
	}
}

// PlainStyles renders without any styling.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Name: plain, Container: plain, Branch: plain, Header: plain.Padding(0, 2, 0, 0)}
}

// Label is the one-line text of a node: its name, followed by its container
// in parentheses when it has one.
func Label(def component.Definition, styles Styles) string {
	label := styles.Name.Render(def.Name)
	if def.Container != "" {
		label += " " + styles.Container.Render("("+def.Container+")")
	}
	return label
}

// Tree renders the forest with one line per node.
func Tree(forest component.Forest, styles Styles) string {
	root := tree.New().EnumeratorStyle(styles.Branch)
	for _, n := range forest {
		root.Child(buildTree(n, styles))
	}
	return root.String()
}

func buildTree(n *component.Node, styles Styles) any {
	label := Label(n.Component, styles)
	if len(n.Children) == 0 {
		return label
	}
	t := tree.Root(label).EnumeratorStyle(styles.Branch)
	for _, child := range n.Children {
		t.Child(buildTree(child, styles))
	}
	return t
}

// Table renders definitions in registration order.
func Table(defs []component.Definition, styles Styles) string {
	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		parent := def.Parent
		if def.IsRoot() {
			parent = "-"
		}
		container := def.Container
		if container == "" {
			container = "-"
		}
		rows = append(rows, []string{def.Name, parent, container})
	}
	cell := lipgloss.NewStyle().Padding(0, 2, 0, 0)
	t := table.New().
		Headers("NAME", "PARENT", "CONTAINER").
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Header
			}
			return cell
		})
	return t.String()
}
