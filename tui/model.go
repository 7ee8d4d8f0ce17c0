package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-midiplayer/midi"
	"go-midiplayer/sequencer"
	"go-midiplayer/theme"
	"go-midiplayer/widgets"
)

const refreshRate = 100 * time.Millisecond

type keyMap struct {
	Rewind key.Binding
	Loop   key.Binding
	Stop   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Rewind: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rewind")),
		Loop:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "toggle loop")),
		Stop:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop all")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Rewind, k.Loop, k.Stop, k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Rewind, k.Loop}, {k.Stop, k.Quit, k.Help}}
}

// Model is the now-playing view
type Model struct {
	Player    *sequencer.Player
	Ports     *midi.PortManager // optional
	Theme     *theme.Theme
	Listeners *sequencer.Listeners
	OnPort    func(midi.PortEvent) // optional

	keys     keyMap
	help     help.Model
	status   string
	quitting bool
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

type refreshMsg time.Time

func NewModel(player *sequencer.Player, listeners *sequencer.Listeners, ports *midi.PortManager, th *theme.Theme) Model {
	if th == nil {
		th = theme.New(nil)
	}
	return Model{
		Player:    player,
		Ports:     ports,
		Theme:     th,
		Listeners: listeners,
		keys:      newKeyMap(),
		help:      help.New(),
	}
}

func ListenForUpdates(player *sequencer.Player) tea.Cmd {
	return func() tea.Msg {
		<-player.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPorts(ports *midi.PortManager) tea.Cmd {
	if ports == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-ports.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Player),
		ListenForPorts(m.Ports),
		refresh(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.Player.StopAll()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Stop):
			m.Player.StopAll()
			m.status = "stopped"

		case key.Matches(msg, m.keys.Rewind):
			for _, st := range m.Player.Status() {
				if s, ok := m.Player.Session(st.ID); ok {
					s.Rewind()
				}
			}
			m.status = "rewound"

		case key.Matches(msg, m.keys.Loop):
			for _, st := range m.Player.Status() {
				if s, ok := m.Player.Session(st.ID); ok {
					s.SetLooping(!st.Looping)
					m.status = fmt.Sprintf("loop %v", !st.Looping)
				}
			}

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.Player)

	case refreshMsg:
		return m, refresh()

	case PortEventMsg:
		event := midi.PortEvent(msg)
		if m.OnPort != nil {
			m.OnPort(event)
		}
		if event.Type == midi.PortConnected {
			m.status = "port connected: " + event.Name
		} else {
			m.status = "port gone: " + event.Name
		}
		return m, ListenForPorts(m.Ports)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	sessions := m.Player.Status()

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("go-midiplayer  %d playing", len(sessions))))
	out.WriteString("\n\n")

	if len(sessions) == 0 {
		out.WriteString(dimStyle.Render("  nothing playing"))
		out.WriteString("\n")
	}

	bar := widgets.Bar{
		Width:     32,
		Full:      m.Theme.Symbols.BarFull,
		Empty:     m.Theme.Symbols.BarEmpty,
		FullColor: m.Theme.RGB(theme.RoleActive),
		RestColor: m.Theme.RGB(theme.RoleMuted),
	}
	for _, st := range sessions {
		out.WriteString(m.renderSession(st, bar, nameStyle, dimStyle, warnStyle))
		out.WriteString("\n")
	}

	if m.Listeners != nil {
		out.WriteString("\n")
		out.WriteString(m.renderListeners(dimStyle))
		out.WriteString("\n")
	}

	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.help.View(m.keys))
	return out.String()
}

func (m Model) renderSession(st sequencer.SessionStatus, bar widgets.Bar, name, dim, warn lipgloss.Style) string {
	symbol := m.Theme.Symbols.Playing
	switch {
	case st.Finished:
		symbol = m.Theme.Symbols.Finished
	case st.Looping:
		symbol = m.Theme.Symbols.Looping
	}

	frac := 0.0
	if st.Duration > 0 {
		frac = float64(st.Elapsed) / float64(st.Duration)
	}

	title := st.Name
	if title == "" {
		title = st.ID
	}

	line := fmt.Sprintf("  %c %s\n    %s %s / %s  frame %d/%d",
		symbol, name.Render(title),
		bar.Render(frac),
		widgets.FormatMillis(st.Elapsed), widgets.FormatMillis(st.Duration),
		st.Position, st.Frames)

	stats := dim.Render(fmt.Sprintf("  %d sounds", st.Fired))
	if st.Failed > 0 {
		stats += warn.Render(fmt.Sprintf("  %d failed", st.Failed))
	}
	return line + stats
}

func (m Model) renderListeners(dim lipgloss.Style) string {
	var parts []string
	for _, l := range m.Listeners.Snapshot() {
		color := m.Theme.RGB(theme.RoleSuccess)
		symbol := m.Theme.Symbols.Online
		if !l.Online() {
			color = m.Theme.RGB(theme.RoleWarning)
			symbol = m.Theme.Symbols.Offline
		}
		parts = append(parts, widgets.RenderPad(color, symbol)+" "+dim.Render(l.ID()))
	}
	if len(parts) == 0 {
		return dim.Render("  no listeners")
	}
	return "  " + strings.Join(parts, "   ")
}
