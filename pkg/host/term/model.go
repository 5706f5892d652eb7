package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/ghostchat/pkg/types"
)

// refreshMsg tells the model the host changed.
type refreshMsg struct{}

type model struct {
	host  *Host
	keys  keyMap
	help  help.Model
	width int
}

func newModel(h *Host) *model {
	hm := help.New()
	hm.Styles.ShortKey = lipgloss.NewStyle().Foreground(salmonPink).Bold(true)
	hm.Styles.ShortDesc = lipgloss.NewStyle().Foreground(mutedGray)
	hm.Styles.FullKey = hm.Styles.ShortKey
	hm.Styles.FullDesc = hm.Styles.ShortDesc
	return &model{
		host: h,
		keys: defaultKeyMap(),
		help: hm,
	}
}

func (m *model) Init() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		if m.host.quitting() {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if fn := m.host.hotkey(msg.String()); fn != nil {
		fn()
		return nil
	}

	engine := m.host.attached()
	if engine == nil {
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		engine.Post(types.Exit{})
	case key.Matches(msg, m.keys.Settings):
		engine.Post(types.OpenSettings{})
	case key.Matches(msg, m.keys.ClickThrough):
		engine.Post(types.SetClickThrough{})
	case key.Matches(msg, m.keys.Minimize):
		engine.Post(types.Minimize{})
	case key.Matches(msg, m.keys.Updates):
		engine.Post(types.CheckForUpdates{})
	case key.Matches(msg, m.keys.NextWindow):
		engine.Do(m.host.focusNext)
	case key.Matches(msg, m.keys.CloseWindow):
		engine.Do(m.host.closeFocused)
	case key.Matches(msg, m.keys.Up):
		engine.Do(func() { m.host.moveFocused(0, -moveStep) })
	case key.Matches(msg, m.keys.Down):
		engine.Do(func() { m.host.moveFocused(0, moveStep) })
	case key.Matches(msg, m.keys.Left):
		engine.Do(func() { m.host.moveFocused(-moveStep, 0) })
	case key.Matches(msg, m.keys.Right):
		engine.Do(func() { m.host.moveFocused(moveStep, 0) })
	case key.Matches(msg, m.keys.Tray):
		engine.ActivateTray(int(msg.Runes[0] - '0'))
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *model) View() string {
	f := m.host.snapshot()

	var b strings.Builder
	b.WriteString(headerStyle.Render("👻 Ghost Chat"))
	b.WriteString("\n\n")

	var rendered []string
	for _, p := range f.panels {
		if !p.shown || p.minimized {
			continue
		}
		rendered = append(rendered, renderPanel(p))
	}
	if len(rendered) == 0 {
		b.WriteString(labelStyle.Render("No windows open"))
	} else {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	b.WriteString("\n")

	if f.hasTray {
		b.WriteString(renderTray(f))
		b.WriteString("\n")
	}

	status := f.status
	if f.dockHidden {
		status = strings.TrimSpace(status + "  (dock hidden)")
	}
	if status != "" {
		b.WriteString(statusBarStyle.Render(status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderPanel(p panel) string {
	var lines []string
	lines = append(lines, titleStyle.Render(p.title))
	lines = append(lines, labelStyle.Render(shortID(p.id)))
	lines = append(lines, field("at", fmt.Sprintf("%d,%d", p.bounds.X, p.bounds.Y)))
	lines = append(lines, field("size", fmt.Sprintf("%dx%d", p.bounds.Width, p.bounds.Height)))
	if p.location != "" {
		lines = append(lines, field("page", p.location))
	}

	var flags []string
	if p.onTop {
		flags = append(flags, onStyle.Render("on top ("+string(p.level)+")"))
	}
	if p.ignoreMouse {
		flags = append(flags, onStyle.Render("click-through"))
	}
	if p.devTools {
		flags = append(flags, onStyle.Render("devtools"))
	}
	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, labelStyle.Render(" · ")))
	}

	for _, n := range p.notes {
		lines = append(lines, noticeStyle.Render("← "+n.String()))
	}

	style := windowStyle
	switch {
	case p.ignoreMouse:
		style = vanishedWindowStyle
	case p.focused:
		style = focusedWindowStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func renderTray(f frame) string {
	var lines []string
	for i, item := range f.menu.Items {
		if !item.Enabled {
			lines = append(lines, disabledItemStyle.Render(item.Label))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("[%d]", i)), valueStyle.Render(item.Label)))
	}
	return trayStyle.Render(strings.Join(lines, "\n"))
}

func field(label, value string) string {
	return labelStyle.Render(label+" ") + valueStyle.Render(value)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
