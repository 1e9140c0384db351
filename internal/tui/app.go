// Package tui is an interactive browser for resolved component trees.
//
// It uses bubbletea: key presses become messages, Update folds them into the
// App state and View renders that state.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/vladimir-polyakov/esencia/internal/component"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/render"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
)

// ReloadFunc rebuilds the registry, e.g. (*manifest.Catalog).Reload.
type ReloadFunc func() (*component.Registry, error)

// AppOption customizes App construction.
type AppOption func(*App)

// WithReload enables the reload key.
func WithReload(fn ReloadFunc) AppOption {
	return func(a *App) {
		a.reload = fn
	}
}

// WithLogger records reloads and resolve failures.
func WithLogger(l *logging.Logger) AppOption {
	return func(a *App) {
		a.logger = l
	}
}

// WithStyles overrides the tree styles.
func WithStyles(s render.Styles) AppOption {
	return func(a *App) {
		a.styles = s
	}
}

type row struct {
	node  *component.Node
	depth int
}

type reloadedMsg struct {
	registry *component.Registry
	err      error
}

// App is the browser model.
type App struct {
	names    []string
	registry *component.Registry
	reload   ReloadFunc
	logger   *logging.Logger
	styles   render.Styles

	forest    component.Forest
	rows      []row
	cursor    int
	err       error
	statusMsg string

	keys    keyMap
	help    help.Model
	details viewport.Model

	width  int
	height int
}

// NewApp resolves names against reg and prepares the browser.
func NewApp(reg *component.Registry, names []string, opts ...AppOption) *App {
	a := &App{
		names:    append([]string(nil), names...),
		registry: reg,
		styles:   render.DefaultStyles(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		details:  viewport.New(defaultWidth/2, defaultHeight-6),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	a.details.KeyMap = viewport.KeyMap{
		PageUp:   a.keys.PageUp,
		PageDown: a.keys.PageDown,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.resolve()
	return a
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(a *App) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}

func (a *App) resolve() {
	a.forest, a.err = a.registry.Resolve(a.names...)
	a.rows = a.rows[:0]
	if a.err != nil {
		a.logger.Warn(logging.CatTUI, "resolve failed", "error", a.err.Error())
	}
	a.forest.Walk(func(n *component.Node, depth int) bool {
		a.rows = append(a.rows, row{node: n, depth: depth})
		return true
	})
	if a.cursor >= len(a.rows) {
		a.cursor = max(0, len(a.rows)-1)
	}
	a.refreshDetails()
}

// Selected returns the node under the cursor, or nil when nothing resolved.
func (a *App) Selected() *component.Node {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return nil
	}
	return a.rows[a.cursor].node
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.details.Width = max(20, msg.Width/2-4)
		a.details.Height = max(3, msg.Height-8)
		a.refreshDetails()
		return a, nil

	case reloadedMsg:
		if msg.err != nil {
			a.statusMsg = "reload failed: " + msg.err.Error()
			a.logger.ErrorErr(logging.CatTUI, "reload failed", msg.err)
			return a, nil
		}
		a.registry = msg.registry
		a.resolve()
		a.statusMsg = fmt.Sprintf("reloaded %d components", a.registry.Len())
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Up):
			a.moveCursor(-1)
		case key.Matches(msg, a.keys.Down):
			a.moveCursor(1)
		case key.Matches(msg, a.keys.Top):
			a.moveCursor(-len(a.rows))
		case key.Matches(msg, a.keys.Bottom):
			a.moveCursor(len(a.rows))
		case key.Matches(msg, a.keys.Help):
			a.help.ShowAll = !a.help.ShowAll
		case key.Matches(msg, a.keys.Reload):
			if a.reload == nil {
				a.statusMsg = "reload unavailable"
				return a, nil
			}
			a.statusMsg = "reloading..."
			return a, a.reloadCmd()
		default:
			var cmd tea.Cmd
			a.details, cmd = a.details.Update(msg)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) reloadCmd() tea.Cmd {
	reload := a.reload
	return func() tea.Msg {
		reg, err := reload()
		return reloadedMsg{registry: reg, err: err}
	}
}

func (a *App) moveCursor(delta int) {
	if len(a.rows) == 0 {
		return
	}
	a.cursor = min(max(a.cursor+delta, 0), len(a.rows)-1)
	a.refreshDetails()
}

func (a *App) refreshDetails() {
	a.details.SetContent(a.detailsContent())
	a.details.GotoTop()
}

func (a *App) detailsContent() string {
	node := a.Selected()
	if node == nil {
		return "Nothing selected"
	}
	def := node.Component
	parent := def.Parent
	if def.IsRoot() {
		parent = "(root)"
	}
	container := def.Container
	if container == "" {
		container = "-"
	}
	lines := []string{
		"name:      " + def.Name,
		"parent:    " + parent,
		"container: " + container,
		fmt.Sprintf("children:  %d", len(node.Children)),
	}
	if def.View != nil {
		lines = append(lines, "", "view:", formatView(def.View))
	}
	return strings.Join(lines, "\n")
}

func formatView(view any) string {
	if s, ok := view.(string); ok {
		return "  " + s
	}
	data, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Sprintf("  %v", view)
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = defaultWidth
	}
	leftWidth := max(20, width/2-2)

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("◆ ESENCIA · " + strings.Join(a.names, ", "))

	var left string
	if a.err != nil {
		left = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Width(leftWidth).
			Render(a.err.Error())
	} else {
		left = a.renderRows(leftWidth)
	}
	leftBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(leftWidth).
		Render(left)
	rightBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#5B8DEF")).
		Padding(0, 1).
		Render(a.details.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, leftBox, " ", rightBox)
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(a.statusMsg)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer, a.help.View(a.keys))
}

func (a *App) renderRows(width int) string {
	if len(a.rows) == 0 {
		return "No components"
	}
	selected := lipgloss.NewStyle().Reverse(true)
	lines := make([]string, 0, len(a.rows))
	for i, r := range a.rows {
		line := strings.Repeat("  ", r.depth) + render.Label(r.node.Component, a.styles)
		if i == a.cursor {
			line = selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}
