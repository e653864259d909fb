package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/stabletrace/symbolicate"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	unknownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous frame"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next frame"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "b"),
		key.WithHelp("pgup/b", "scroll details up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "f"),
		key.WithHelp("pgdn/f", "scroll details down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// frame list rows shown before the terminal size is known
const defaultListHeight = 10

type interactiveModel struct {
	trace      *symbolicate.SymbolicatedTrace
	details    viewport.Model
	help       help.Model
	selected   int
	top        int
	listHeight int
}

func newInteractiveModel(trace *symbolicate.SymbolicatedTrace) *interactiveModel {
	m := &interactiveModel{
		trace:      trace,
		details:    viewport.New(80, defaultListHeight),
		help:       help.New(),
		listHeight: defaultListHeight,
	}
	m.details.KeyMap = viewport.KeyMap{PageUp: keys.PageUp, PageDown: keys.PageDown}
	m.details.SetContent(m.frameDetails())
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// title, blank line, rule and help
		const chrome = 4
		avail := max(msg.Height-chrome, 2)
		m.listHeight = min(max(avail/2, 1), max(len(m.trace.Frames), 1))
		m.details.Width = msg.Width
		m.details.Height = max(avail-m.listHeight, 1)
		m.help.Width = msg.Width
		m.scrollList()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.selectFrame(m.selected - 1)
			return m, nil
		case key.Matches(msg, keys.Down):
			m.selectFrame(m.selected + 1)
			return m, nil
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.details, cmd = m.details.Update(msg)
	return m, cmd
}

func (m *interactiveModel) selectFrame(i int) {
	if i < 0 || i >= len(m.trace.Frames) {
		return
	}
	m.selected = i
	m.scrollList()
	m.details.SetContent(m.frameDetails())
	m.details.GotoTop()
}

// scrollList keeps the selected frame inside the visible window.
func (m *interactiveModel) scrollList() {
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+m.listHeight {
		m.top = m.selected - m.listHeight + 1
	}
}

func (m *interactiveModel) frameDetails() string {
	if len(m.trace.Frames) == 0 {
		return "The trace has no frames."
	}
	f := m.trace.Frames[m.selected]
	if len(f.Locations) == 0 {
		return unknownStyle.Render(fmt.Sprintf("%s is outside every known function.", symbolicate.FormatAddr(f.Addr)))
	}

	var b strings.Builder
	for i, loc := range f.Locations {
		if i > 0 {
			b.WriteString("\n  inlined into\n\n")
		}
		b.WriteString(funcStyle.Render(loc.DemangledName))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "  %s:%d\n", pathStyle.Render(loc.FullPath), loc.Line)
		fmt.Fprintf(&b, "  symbol   %s\n", loc.Name)
		fmt.Fprintf(&b, "  language %s\n", loc.Language)
	}
	return b.String()
}

func (m *interactiveModel) frameRow(i int) string {
	f := m.trace.Frames[i]
	name := "??"
	if len(f.Locations) > 0 {
		name = f.Locations[0].DemangledName
	}
	row := fmt.Sprintf("#%-3d %-18s %s", i, symbolicate.FormatAddr(f.Addr), name)
	switch {
	case i == m.selected:
		return selectedStyle.Render("> " + row)
	case len(f.Locations) == 0:
		return "  " + unknownStyle.Render(row)
	default:
		return "  " + row
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	h := m.trace.Header
	b.WriteString(titleStyle.Render("Stack Trace"))
	fmt.Fprintf(&b, " %s  %d frames\n\n", h.BuildKey(), len(m.trace.Frames))

	end := min(m.top+m.listHeight, len(m.trace.Frames))
	for i := m.top; i < end; i++ {
		b.WriteString(m.frameRow(i))
		b.WriteByte('\n')
	}

	b.WriteString(ruleStyle.Render(strings.Repeat("─", max(m.details.Width, 1))))
	b.WriteByte('\n')
	b.WriteString(m.details.View())
	b.WriteByte('\n')
	b.WriteString(m.help.View(keys))

	return b.String()
}

func runInteractive(trace *symbolicate.SymbolicatedTrace) error {
	p := tea.NewProgram(newInteractiveModel(trace), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
