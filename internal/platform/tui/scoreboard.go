package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bastion/internal/storage"
)

// Scoreboard layout constants
const (
	tableMinWidth = 50  // Minimum table width
	maxScores     = 100 // Max rows to load
)

// Scoreboard tabs.
const (
	tabTopScores = iota
	tabSessions
	tabCount
)

var tabTitles = [tabCount]string{"Top scores", "Recent matches"}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next view"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev view"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the high score screen.
type ScoreboardModel struct {
	store     *storage.Store
	profile   string // Whose matches the sessions tab lists; empty lists everyone
	tab       int
	rows      []table.Row
	loadErr   error
	table     table.Model
	help      help.Model
	keys      ScoreboardKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool // True if user pressed back (not quit)
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, profile string, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		store:   store,
		profile: profile,
		keys:    DefaultScoreboardKeyMap(),
		help:    h,
		width:   width,
		height:  height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// columns returns the table columns for the current tab.
func (m *ScoreboardModel) columns() []table.Column {
	tableWidth := max(m.width-8, tableMinWidth) // Margins and border
	if m.tab == tabSessions {
		return []table.Column{
			{Title: "Outcome", Width: 10},
			{Title: "Score", Width: 8},
			{Title: "Wave", Width: 6},
			{Title: "Kills", Width: 6},
			{Title: "Level", Width: 7},
			{Title: "Date", Width: min(max(tableWidth-37, 12), 20)},
		}
	}
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Profile", Width: 14},
		{Title: "Score", Width: 8},
		{Title: "Wave", Width: 6},
		{Title: "Date", Width: min(max(tableWidth-34, 12), 20)},
	}
}

// createTable creates a new table with appropriate columns.
func (m *ScoreboardModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)), // Leave room for header, tabs, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load fetches the rows for the current tab.
func (m *ScoreboardModel) load() {
	m.rows = nil
	m.loadErr = nil
	if m.store != nil {
		if m.tab == tabSessions {
			m.rows, m.loadErr = m.sessionRows()
		} else {
			m.rows, m.loadErr = m.scoreRows()
		}
	}
	// Columns change between tabs; clear rows first so they never mismatch.
	m.table.SetRows(nil)
	m.table.SetColumns(m.columns())
	m.table.SetRows(m.rows)
	m.table.GotoTop()
}

func (m *ScoreboardModel) scoreRows() ([]table.Row, error) {
	scores, err := m.store.TopScores(maxScores)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(scores))
	for i, s := range scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.Profile,
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.Wave),
			s.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}
	return rows, nil
}

func (m *ScoreboardModel) sessionRows() ([]table.Row, error) {
	sessions, err := m.store.Sessions(m.profile, maxScores)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(sessions))
	for i, s := range sessions {
		rows[i] = table.Row{
			s.Outcome,
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%d", s.WaveReached),
			fmt.Sprintf("%d", s.Kills),
			fmt.Sprintf("%d→%d", s.StartLevel, s.EndLevel),
			s.EndedAt.Local().Format("Jan 02 15:04"),
		}
	}
	return rows, nil
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (ScoreboardModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, nil

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			m.tab = (m.tab + 1) % tabCount
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.tab = (m.tab + tabCount - 1) % tabCount
			m.load()
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.load()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	b.WriteString(titleStyle.Render(centerText("HIGH SCORES", m.width)))
	b.WriteString("\n\n")

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)
	tabs := make([]string, tabCount)
	for i, title := range tabTitles {
		if i == tabSessions && m.profile != "" {
			title = m.profile + "'s matches"
		}
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(title)
		} else {
			tabs[i] = tabStyle.Render(title)
		}
	}
	b.WriteString(centerText(lipgloss.JoinHorizontal(lipgloss.Top, tabs...), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	if m.loadErr != nil {
		return emptyStyle.Render("Could not load scores:\n" + m.loadErr.Error())
	}
	if len(m.rows) == 0 {
		return emptyStyle.Render("No matches recorded yet.\nHold the castle to set a high score!")
	}

	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// scoreboardProgram adapts ScoreboardModel to tea.Model for standalone use.
type scoreboardProgram struct{ ScoreboardModel }

func (p scoreboardProgram) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := p.ScoreboardModel.Update(msg)
	p.ScoreboardModel = m
	if m.IsGoingBack() || m.IsQuitting() {
		return p, tea.Quit
	}
	return p, cmd
}

// RunScoreboard runs the scoreboard as its own program.
func RunScoreboard(store *storage.Store, profile string, width, height int) error {
	p := tea.NewProgram(
		scoreboardProgram{NewScoreboardModel(store, profile, width, height)},
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
