package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rivo/tview"
)

func Pick(backend, title string, options []string) (choice string, used bool, err error) {
	options = dedupeOptions(options)
	if len(options) == 0 {
		return "", false, nil
	}

	var firstErr error
	for _, candidate := range backendCandidates(backend) {
		switch candidate {
		case BackendBubbleTea:
			choice, err = pickWithBubbleTea(title, options)
		case BackendHuh:
			choice, err = pickWithHuh(title, options)
		case BackendTView:
			choice, err = pickWithTView(title, options)
		default:
			continue
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return choice, true, nil
	}
	return "", false, firstErr
}

func dedupeOptions(options []string) []string {
	out := make([]string, 0, len(options))
	seen := map[string]struct{}{}
	for _, option := range options {
		option = strings.TrimSpace(option)
		key := strings.ToLower(option)
		if option == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, option)
	}
	return out
}

func pickWithHuh(title string, options []string) (string, error) {
	huhOptions := make([]huh.Option[string], 0, len(options))
	for _, option := range options {
		huhOptions = append(huhOptions, huh.NewOption(option, option))
	}
	choice := options[0]
	err := huh.NewSelect[string]().
		Title(title).
		Options(huhOptions...).
		Filtering(true).
		Height(huhSelectHeight(len(huhOptions))).
		Value(&choice).
		WithTheme(huh.ThemeCharm()).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return choice, nil
}

type pickerItem string

func (i pickerItem) Title() string       { return string(i) }
func (i pickerItem) Description() string { return "" }
func (i pickerItem) FilterValue() string { return string(i) }

type pickerModel struct {
	list      list.Model
	selection string
	options   int
}

func newPickerModel(title string, options []string) pickerModel {
	items := make([]list.Item, 0, len(options))
	for _, option := range options {
		items = append(items, pickerItem(option))
	}
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	width, height := pickerSize(80, 24, len(items))
	picker := list.New(items, delegate, width, height)
	picker.Title = title
	picker.SetShowHelp(false)
	picker.SetFilteringEnabled(true)
	return pickerModel{list: picker, options: len(items)}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch k := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(pickerSize(k.Width, k.Height, m.options))
		return m, nil
	case tea.KeyMsg:
		switch k.String() {
		case "q", "esc", "ctrl+c":
			m.selection = ""
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(pickerItem); ok {
				m.selection = string(item)
			}
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	return m.list.View()
}

func pickWithBubbleTea(title string, options []string) (string, error) {
	final, err := tea.NewProgram(newPickerModel(title, options), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	out, ok := final.(pickerModel)
	if !ok {
		return "", nil
	}
	return out.selection, nil
}

func pickWithTView(title string, options []string) (string, error) {
	app := tview.NewApplication()
	listView := tview.NewList()
	listView.SetBorder(true)
	listView.SetTitle(title)
	listView.ShowSecondaryText(false)

	selected := ""
	for _, option := range options {
		current := option
		listView.AddItem(current, "", 0, func() {
			selected = current
			app.Stop()
		})
	}
	listView.SetDoneFunc(app.Stop)

	if err := app.SetRoot(listView, true).SetFocus(listView).Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func pickerSize(termWidth, termHeight, optionCount int) (int, int) {
	if termWidth <= 0 {
		termWidth = 80
	}
	if termHeight <= 0 {
		termHeight = 24
	}
	if optionCount < 1 {
		optionCount = 1
	}

	minWidth := min(32, termWidth)
	width := clampInt(termWidth-4, minWidth, termWidth)

	maxHeight := termHeight - 2
	if maxHeight <= 0 {
		maxHeight = max(termHeight, 1)
	}
	minHeight := min(8, maxHeight)
	height := clampInt(clampInt(optionCount, 3, 12)+6, minHeight, maxHeight)
	return width, height
}

func huhSelectHeight(optionCount int) int {
	return clampInt(max(optionCount, 1)+1, 4, 10)
}
