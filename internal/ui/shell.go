package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrShellClosed = errors.New("shell is closed")

type Reply struct {
	Text   string
	Status string
}

type RouteFunc func(ctx context.Context, text string) Reply

type ShellOptions struct {
	Title       string
	Placeholder string
	// Loader returns the busy line for animation frame i.
	Loader func(i int) string
	Route  RouteFunc
}

type exchange struct {
	input string
	reply Reply
	done  bool
}

type shellTickMsg struct{}

type shellReplyMsg struct {
	reply Reply
}

type confirmRequestMsg struct {
	prompt Prompt
	answer chan bool
}

var exitCommands = map[string]struct{}{":q": {}, "/exit": {}, "/keluar": {}}

const shellTranscriptSize = 8

type shellModel struct {
	ctx        context.Context
	opts       ShellOptions
	input      textinput.Model
	transcript []exchange
	busy       bool
	frame      int
	pending    *confirmRequestMsg
}

func newShellModel(ctx context.Context, opts ShellOptions) shellModel {
	if opts.Loader == nil {
		opts.Loader = func(int) string { return "..." }
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "jarvis"
	}
	input := textinput.New()
	input.Placeholder = opts.Placeholder
	input.CharLimit = 400
	input.Width = 72
	input.Prompt = "› "
	input.Focus()
	return shellModel{ctx: ctx, opts: opts, input: input}
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case shellTickMsg:
		if !m.busy {
			return m, nil
		}
		m.frame++
		return m, shellTickCmd()
	case shellReplyMsg:
		m.busy = false
		if n := len(m.transcript); n > 0 {
			m.transcript[n-1].reply = msg.reply
			m.transcript[n-1].done = true
		}
		return m, nil
	case confirmRequestMsg:
		m.pending = &msg
		return m, nil
	case tea.KeyMsg:
		if m.pending != nil {
			return m.answerPending(msg), nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) answerPending(msg tea.KeyMsg) shellModel {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.pending.answer <- true
	case "n", "esc", "enter", "ctrl+c":
		m.pending.answer <- false
	default:
		return m
	}
	m.pending = nil
	return m
}

func (m shellModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return m, nil
	}
	if _, ok := exitCommands[strings.ToLower(text)]; ok {
		return m, tea.Quit
	}
	m.input.Reset()
	m.transcript = append(m.transcript, exchange{input: text})
	if len(m.transcript) > shellTranscriptSize {
		m.transcript = m.transcript[len(m.transcript)-shellTranscriptSize:]
	}
	m.busy = true
	m.frame = 0

	route, ctx := m.opts.Route, m.ctx
	routeCmd := func() tea.Msg {
		if route == nil {
			return shellReplyMsg{}
		}
		return shellReplyMsg{reply: route(ctx, text)}
	}
	return m, tea.Batch(routeCmd, shellTickCmd())
}

func (m shellModel) View() string {
	lines := []string{shellTitleStyle.Render(m.opts.Title), ""}
	for _, ex := range m.transcript {
		lines = append(lines, shellInputStyle.Render("› "+ex.input))
		if ex.done {
			lines = append(lines, statusStyle(ex.reply.Status).Render("  "+ex.reply.Text))
		}
	}
	if m.busy {
		dots := strings.Repeat(".", m.frame%3+1)
		lines = append(lines, shellSubtleStyle.Render(m.opts.Loader(m.frame/3)+dots))
	}
	if m.pending != nil {
		p := m.pending.prompt
		lines = append(lines, "",
			shellTitleStyle.Render(p.Title),
			p.Summary,
			"risiko: "+renderRisk(p.Risk),
			shellHintStyle.Render(fmt.Sprintf("[y] %s  [n] %s", p.Accept, p.Decline)),
		)
	}
	lines = append(lines, "", m.input.View(), "", shellHintStyle.Render("[enter] kirim  [esc] keluar"))
	return shellCardStyle.Render(strings.Join(lines, "\n"))
}

func shellTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return shellTickMsg{}
	})
}

type Shell struct {
	program *tea.Program
	done    chan struct{}
}

func NewShell(ctx context.Context, opts ShellOptions, programOpts ...tea.ProgramOption) *Shell {
	return &Shell{
		program: tea.NewProgram(newShellModel(ctx, opts), programOpts...),
		done:    make(chan struct{}),
	}
}

func (s *Shell) Run() error {
	defer close(s.done)
	_, err := s.program.Run()
	return err
}

// Confirm asks inside the running shell. It is safe to call from a route.
func (s *Shell) Confirm(prompt Prompt) (bool, error) {
	answer := make(chan bool, 1)
	go s.program.Send(confirmRequestMsg{prompt: prompt.withDefaults(), answer: answer})
	select {
	case ok := <-answer:
		return ok, nil
	case <-s.done:
		return false, ErrShellClosed
	}
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "success":
		return shellSuccessStyle
	case "failed", "unsupported":
		return shellErrorStyle
	default:
		return shellBodyStyle
	}
}

var (
	shellCardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(1, 2)

	shellTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("87"))

	shellInputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("153"))

	shellSubtleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("248"))

	shellBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	shellSuccessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("78"))

	shellErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	shellHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))
)
