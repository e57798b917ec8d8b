// Package tui is a terminal front end for a running game state: it shows the
// object tree, the event log and any pending choice, and steps the engine on
// key presses.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gamestate/internal/game"
	"gamestate/internal/snapshot"
	"gamestate/internal/steps"
)

type model struct {
	title    string
	state    game.State
	history  *snapshot.Timeline[game.State]
	saves    *snapshot.MemoryStore[game.State]
	lastSave string
	viewport viewport.Model
	cursor   int
	picked   map[int]bool
	status   string
	err      error
	width    int
	height   int
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	treeStyle = lipgloss.NewStyle().
			PaddingRight(2)

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	choiceStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true)

	disabledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Strikethrough(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F"))
)

// NewModel wraps s. undoDepth bounds the undo history (0 is unbounded).
func NewModel(title string, s game.State, undoDepth int) model {
	m := model{
		title:    title,
		state:    s,
		history:  snapshot.NewTimeline(s, undoDepth),
		saves:    snapshot.NewMemoryStore[game.State](),
		viewport: viewport.New(80, 8),
		picked:   map[int]bool{},
	}
	m.refreshLog()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "n":
			return m.advance("step", m.state.ProcessNextAction)
		case "a":
			return m.advance("run", m.state.ProcessAllActions)
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if ch, ok := m.state.PendingChoice(); ok && m.cursor < len(ch.Options)-1 {
				m.cursor++
			}
		case " ", "space":
			m.toggle()
		case "enter":
			return m.resolve()
		case "u":
			prev, ok := m.history.Undo()
			if !ok {
				m.status = "nothing to undo"
				return m, nil
			}
			m.state = prev
			m.resetChoice()
			m.refreshLog()
			m.status = "undone"
		case "c":
			if len(m.state.Events()) == 0 {
				m.status = "no events to clear"
				return m, nil
			}
			return m.apply("events cleared", func() (game.State, error) {
				return m.state.ClearEvents(), nil
			})
		case "s":
			m.save()
		case "r":
			m.restore()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height/3, 4)
		m.refreshLog()
	}
	return m, nil
}

// advance runs an engine step. The engine only moves in PhaseReady, so in
// any other phase nothing runs and no undo entry is recorded.
func (m model) advance(label string, op func() (game.State, error)) (tea.Model, tea.Cmd) {
	if phase := m.state.Phase(); phase != game.PhaseReady {
		m.err = nil
		m.status = fmt.Sprintf("%s: nothing to run (%s)", label, phase)
		return m, nil
	}
	return m.apply(label, op)
}

// apply runs op and, on success, makes its result the current state.
func (m model) apply(label string, op func() (game.State, error)) (tea.Model, tea.Cmd) {
	next, err := op()
	if err != nil {
		m.err = err
		m.status = ""
		return m, nil
	}
	m.err = nil
	m.state = next
	m.history.Push(next)
	m.resetChoice()
	m.refreshLog()
	m.status = fmt.Sprintf("%s: %s", label, next.Phase())
	return m, nil
}

func (m *model) toggle() {
	ch, ok := m.state.PendingChoice()
	if !ok || m.cursor >= len(ch.Options) {
		return
	}
	opt := ch.Options[m.cursor]
	if opt.Disabled {
		return
	}
	m.picked[opt.ID] = !m.picked[opt.ID]
}

// selection lists the toggled options in display order. With nothing
// toggled, the option under the cursor is used.
func (m model) selection(ch game.Choice) []int {
	var ids []int
	for _, o := range ch.Options {
		if m.picked[o.ID] {
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 && m.cursor < len(ch.Options) {
		ids = append(ids, ch.Options[m.cursor].ID)
	}
	return ids
}

func (m model) resolve() (tea.Model, tea.Cmd) {
	ch, ok := m.state.PendingChoice()
	if !ok {
		m.status = "no choice pending"
		return m, nil
	}
	ids := m.selection(ch)
	return m.apply(fmt.Sprintf("picked %v", ids), func() (game.State, error) {
		return m.state.ResolveChoice(ids...)
	})
}

func (m *model) save() {
	id, err := m.saves.Save(context.Background(), m.state)
	if err != nil {
		m.err = err
		return
	}
	m.lastSave = id
	m.status = "saved branch " + id[:8]
}

func (m *model) restore() {
	if m.lastSave == "" {
		m.status = "no saved branch"
		return
	}
	s, ok, err := m.saves.Get(context.Background(), m.lastSave)
	if err != nil {
		m.err = err
		return
	}
	if !ok {
		m.status = "saved branch is gone"
		return
	}
	m.state = s
	m.history.Push(s)
	m.resetChoice()
	m.refreshLog()
	m.status = "restored branch " + m.lastSave[:8]
}

func (m *model) resetChoice() {
	m.cursor = 0
	m.picked = map[int]bool{}
}

func (m *model) refreshLog() {
	var b strings.Builder
	for _, e := range m.state.Events() {
		b.WriteString("• " + steps.Describe(e) + "\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m model) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		treeStyle.Render(m.renderTree()),
		choiceStyle.Render(m.renderChoice()),
	)

	status := fmt.Sprintf("%s | %d pending | %s", m.state.Phase(), m.state.PendingActions(), m.status)
	if m.err != nil {
		status = errorStyle.Render("error: " + m.err.Error())
	}
	help := helpStyle.Render("n step · a run · ↑/↓ move · space toggle · enter pick · u undo · s save · r restore · c clear · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		"",
		body,
		"",
		titleStyle.Render("EVENTS"),
		m.viewport.View(),
		status,
		help,
	) + "\n"
}

func (m model) renderTree() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("OBJECTS") + "\n")
	roots := m.state.Roots()
	if len(roots) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, id := range roots {
		root, err := m.state.LoadHierarchy(id)
		if err != nil {
			continue
		}
		writeTree(&b, root, 0)
	}
	return b.String()
}

func writeTree(b *strings.Builder, obj game.Object, depth int) {
	meta := obj.Meta()
	line := fmt.Sprintf("%s%s #%d", strings.Repeat("  ", depth), meta.Name, meta.ID)
	if s, ok := obj.(interface{ Summary() string }); ok {
		line += " " + summaryStyle.Render(s.Summary())
	}
	b.WriteString(line + "\n")
	for _, c := range meta.Children {
		writeTree(b, c, depth+1)
	}
}

func (m model) renderChoice() string {
	ch, ok := m.state.PendingChoice()
	if !ok {
		return titleStyle.Render("CHOICE") + "\n(none)"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("CHOICE") + "\n")
	b.WriteString(ch.Prompt + "\n")
	lo, hi := ch.Bounds()
	b.WriteString(summaryStyle.Render(fmt.Sprintf("pick %d to %d", lo, hi)) + "\n\n")
	if len(ch.Options) == 0 {
		b.WriteString("(no options)\n")
	}
	for i, o := range ch.Options {
		box := "[ ]"
		if m.picked[o.ID] {
			box = "[x]"
		}
		text := o.Text
		if text == "" {
			text = fmt.Sprintf("#%d", o.ID)
		}
		line := fmt.Sprintf("%s %s", box, text)
		switch {
		case o.Disabled:
			line = disabledStyle.Render(line)
		case i == m.cursor:
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// Run opens the TUI on s and returns the state it was left in.
func Run(title string, s game.State, undoDepth int) (game.State, error) {
	p := tea.NewProgram(NewModel(title, s, undoDepth), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return s, err
	}
	if fm, ok := final.(model); ok {
		return fm.state, nil
	}
	return s, nil
}
