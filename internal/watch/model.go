// Package watch is a read-only live view of one session: it re-captures the
// pane on an interval and shows the result in a scrollable viewport. Keys
// typed into the view are never forwarded to the session.
package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/steveyegge/shelluse/internal/style"
)

// DefaultInterval is the refresh period when Options.Interval is zero.
const DefaultInterval = time.Second

// Capturer is the slice of the gateway the view needs.
type Capturer interface {
	Capture(ctx context.Context, session string, scrollBack int) (string, error)
}

// Options configure a watch view.
type Options struct {
	Session    string
	ScrollBack int
	Interval   time.Duration
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
)

// Model is the bubbletea model for the watch view.
type Model struct {
	ctx      context.Context
	capturer Capturer
	opts     Options

	width  int
	height int
	ready  bool

	viewport viewport.Model
	keys     KeyMap
	help     help.Model
	showHelp bool

	content    string
	err        error
	lastUpdate time.Time
	captures   int
	paused     bool
	following  bool
	inFlight   bool
}

// NewModel creates a watch model. ctx bounds every capture.
func NewModel(ctx context.Context, c Capturer, opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Model{
		ctx:       ctx,
		capturer:  c,
		opts:      opts,
		viewport:  viewport.New(0, 0),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		following: true,
	}
}

// captureMsg carries the result of one capture.
type captureMsg struct {
	content string
	err     error
	at      time.Time
}

// tickMsg schedules the next capture.
type tickMsg time.Time

// Init starts the first capture.
func (m *Model) Init() tea.Cmd {
	m.inFlight = true
	return tea.Batch(
		m.capture(),
		tea.SetWindowTitle("shelluse watch: "+m.opts.Session),
	)
}

func (m *Model) capture() tea.Cmd {
	ctx, c, opts := m.ctx, m.capturer, m.opts
	return func() tea.Msg {
		out, err := c.Capture(ctx, opts.Session, opts.ScrollBack)
		return captureMsg{content: out, err: err, at: time.Now()}
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case captureMsg:
		m.inFlight = false
		m.lastUpdate = msg.at
		m.err = msg.err
		if msg.err == nil {
			m.captures++
			m.setContent(msg.content)
		}
		if m.paused {
			return m, nil
		}
		return m, m.tick()

	case tickMsg:
		if m.paused || m.inFlight {
			return m, nil
		}
		m.inFlight = true
		return m, m.capture()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		if !m.paused && !m.inFlight {
			m.inFlight = true
			return m, m.capture()
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		if m.inFlight {
			return m, nil
		}
		m.inFlight = true
		return m, m.capture()

	case key.Matches(msg, m.keys.Follow):
		m.following = true
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.following = false
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.following = m.viewport.AtBottom()
	return m, cmd
}

func (m *Model) setContent(content string) {
	m.content = content
	m.viewport.SetContent(strings.TrimRight(content, "\n"))
	if m.following {
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// header + status line + help
	chrome := 2 + lipgloss.Height(m.help.View(m.keys))
	h := m.height - chrome
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	m.ready = true
	if m.following {
		m.viewport.GotoBottom()
	}
}

// View renders the model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading " + m.opts.Session + "..."
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(m.opts.Session))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *Model) statusLine() string {
	if m.err != nil {
		return style.Error.Render("capture failed: " + m.err.Error())
	}
	var parts []string
	if m.paused {
		parts = append(parts, "paused")
	} else {
		parts = append(parts, fmt.Sprintf("every %s", m.opts.Interval))
	}
	if !m.lastUpdate.IsZero() {
		parts = append(parts, "updated "+m.lastUpdate.Format("15:04:05"))
	}
	if !m.following {
		parts = append(parts, fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	}
	return statusStyle.Render(strings.Join(parts, " · "))
}

// Run shows the watch view until the user quits or ctx is canceled.
func Run(ctx context.Context, c Capturer, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, c, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
