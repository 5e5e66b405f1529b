package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rivo/tview"
)

type Prompt struct {
	Title   string
	Summary string
	Risk    string
	Accept  string
	Decline string
}

func (p Prompt) withDefaults() Prompt {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = "Jalankan tindakan ini?"
	}
	if strings.TrimSpace(p.Accept) == "" {
		p.Accept = "Jalankan"
	}
	if strings.TrimSpace(p.Decline) == "" {
		p.Decline = "Batal"
	}
	p.Summary = strings.TrimSpace(p.Summary)
	p.Risk = strings.ToLower(strings.TrimSpace(p.Risk))
	return p
}

func Confirm(backend string, prompt Prompt) (approved bool, used bool, err error) {
	prompt = prompt.withDefaults()
	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		var ok bool
		switch candidate {
		case BackendBubbleTea:
			ok, err = confirmWithBubbleTea(prompt)
		case BackendHuh:
			ok, err = confirmWithHuh(prompt)
		case BackendTView:
			ok, err = confirmWithTView(prompt)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return ok, true, nil
	}
	return false, false, firstErr
}

var riskStyles = map[string]lipgloss.Style{
	"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
	"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"high":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
}

func renderRisk(risk string) string {
	style, ok := riskStyles[risk]
	if !ok {
		return risk
	}
	return style.Render(risk)
}

type bubbleConfirmModel struct {
	prompt   Prompt
	approved bool
	done     bool
}

func (m bubbleConfirmModel) Init() tea.Cmd { return nil }

func (m bubbleConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(k.String()) {
	case "y":
		m.approved = true
		m.done = true
		return m, tea.Quit
	case "n", "esc", "ctrl+c", "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m bubbleConfirmModel) View() string {
	return shellCardStyle.Render(fmt.Sprintf(
		"%s\n\n%s\n\nrisiko: %s\n\n%s",
		shellTitleStyle.Render(m.prompt.Title),
		m.prompt.Summary,
		renderRisk(m.prompt.Risk),
		shellHintStyle.Render(fmt.Sprintf("[y] %s  [n] %s", m.prompt.Accept, m.prompt.Decline)),
	))
}

func confirmWithBubbleTea(prompt Prompt) (bool, error) {
	final, err := tea.NewProgram(bubbleConfirmModel{prompt: prompt}).Run()
	if err != nil {
		return false, err
	}
	out, ok := final.(bubbleConfirmModel)
	if !ok || !out.done {
		return false, nil
	}
	return out.approved, nil
}

func confirmWithHuh(prompt Prompt) (bool, error) {
	approved := false
	err := huh.NewConfirm().
		Title(prompt.Title).
		Description(fmt.Sprintf("%s\nrisiko: %s", prompt.Summary, prompt.Risk)).
		Affirmative(prompt.Accept).
		Negative(prompt.Decline).
		Value(&approved).
		WithTheme(huh.ThemeCharm()).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func confirmWithTView(prompt Prompt) (bool, error) {
	app := tview.NewApplication()
	approved := false

	modal := tview.NewModal().
		SetText(fmt.Sprintf("%s\n\n%s\n\nrisiko: %s", prompt.Title, prompt.Summary, prompt.Risk)).
		AddButtons([]string{prompt.Accept, prompt.Decline}).
		SetDoneFunc(func(index int, _ string) {
			approved = index == 0
			app.Stop()
		})

	if err := app.SetRoot(modal, true).Run(); err != nil {
		return false, err
	}
	return approved, nil
}
