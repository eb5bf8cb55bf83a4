package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type Option struct {
	Title string
	Desc  string
}

type optionItem struct {
	title string
	desc  string
}

func (o optionItem) Title() string       { return o.title }
func (o optionItem) Description() string { return o.desc }
func (o optionItem) FilterValue() string { return o.title }

type model struct {
	list      list.Model
	chosen    int
	cancelled bool
}

func newModel(title string, options []Option, defaultIndex int) model {
	items := make([]list.Item, 0, len(options))
	for _, o := range options {
		items = append(items, optionItem{title: o.Title, desc: o.Desc})
	}

	l := list.New(items, list.NewDefaultDelegate(), 60, len(options)*3+6)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle
	l.Styles.TitleBar = titleStyle

	if defaultIndex >= 0 && defaultIndex < len(options) {
		l.Select(defaultIndex)
	}

	return model{list: l, chosen: -1}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.chosen = m.list.Index()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.chosen >= 0 || m.cancelled {
		return ""
	}
	return focusedStyle.Render(m.list.View()) + "\n" +
		hintStyle.Render("↑/↓ 选择 • enter 确认 • esc 取消") + "\n"
}
