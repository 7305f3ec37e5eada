package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bastion/internal/game"
	"github.com/vovakirdan/bastion/internal/storage"
)

// menuChoice identifies a menu entry.
type menuChoice int

const (
	choiceNewGame menuChoice = iota
	choiceContinue
	choiceScores
	choiceQuit
	choiceResume
	choiceSaveQuit
	choiceAbandon
)

// MenuItem is one selectable menu entry.
type MenuItem struct {
	Choice menuChoice
	Title  string
}

// choiceMenu is a vertical list with a cursor.
type choiceMenu struct {
	items  []MenuItem
	cursor int
}

func (c *choiceMenu) up() {
	if c.cursor > 0 {
		c.cursor--
	}
}

func (c *choiceMenu) down() {
	if c.cursor < len(c.items)-1 {
		c.cursor++
	}
}

// selected returns the choice under the cursor.
func (c choiceMenu) selected() (menuChoice, bool) {
	if len(c.items) == 0 {
		return 0, false
	}
	return c.items[c.cursor].Choice, true
}

func (c choiceMenu) view(width int) string {
	var b strings.Builder
	for i, item := range c.items {
		line := "  " + item.Title
		if i == c.cursor {
			line = menuCursorStyle.Render("> " + item.Title)
		}
		b.WriteString(centerText(line, width))
		b.WriteString("\n")
	}
	return b.String()
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	menuCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	cardStyle       = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// menuData is what the main menu shows about the profile.
type menuData struct {
	prog      game.Progression
	save      *storage.SaveInfo
	highScore int
}

// mainMenu builds the main menu; Continue is offered only with a save.
func mainMenu(hasSave bool) choiceMenu {
	items := []MenuItem{{choiceNewGame, "New game"}}
	if hasSave {
		items = append(items, MenuItem{choiceContinue, "Continue"})
	}
	items = append(items,
		MenuItem{choiceScores, "High scores"},
		MenuItem{choiceQuit, "Quit"},
	)
	m := choiceMenu{items: items}
	if hasSave {
		m.cursor = 1
	}
	return m
}

// pauseMenu builds the in-match pause menu.
func pauseMenu() choiceMenu {
	return choiceMenu{items: []MenuItem{
		{choiceResume, "Resume"},
		{choiceSaveQuit, "Save & quit"},
		{choiceAbandon, "Quit without saving"},
	}}
}

// profileCard renders the character record shown on the main menu.
func profileCard(d menuData) string {
	p := d.prog
	lines := []string{
		nameStyle.Render(p.Name) + " " + field("Level", p.Level),
		field("Exp", fmt.Sprintf("%d (total %d)", p.Exp, p.TotalExp)),
		field("Matches", p.GamesPlayed) + "  " + field("Kills", p.EnemiesKilled),
		field("Waves cleared", p.WavesCompleted) + "  " + field("Towers built", p.TowersBuilt),
		field("High score", d.highScore),
	}
	if s := d.save; s != nil {
		lines = append(lines, "",
			labelStyle.Render("Saved match"),
			field("Wave", s.Wave)+"  "+field("Score", s.Score)+"  "+field("Essence", s.Essence),
			field("Castle", s.CastleHealth)+"  "+field("Time", formatElapsed(s.Elapsed)),
			labelStyle.Render("saved "+s.SavedAt.Local().Format("Jan 02 15:04")),
		)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderMainMenu renders the title screen.
func renderMainMenu(menu choiceMenu, data *menuData, errMsg string, width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("B A S T I O N"), width))
	b.WriteString("\n")
	b.WriteString(centerText(labelStyle.Render("Hold the castle against the endless horde"), width))
	b.WriteString("\n\n")

	if data != nil {
		for _, line := range strings.Split(profileCard(*data), "\n") {
			b.WriteString(centerText(line, width))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	} else {
		b.WriteString(centerText(labelStyle.Render("Loading profile..."), width))
		b.WriteString("\n\n")
	}

	b.WriteString(menu.view(width))

	if errMsg != "" {
		b.WriteString("\n")
		b.WriteString(centerText(errorStyle.Render(errMsg), width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	controls := "Up/Down: Navigate  |  Enter: Select  |  Q: Quit"
	b.WriteString(centerText(labelStyle.Render(controls), width))
	b.WriteString("\n")
	return b.String()
}

// renderPauseMenu renders the pause overlay.
func renderPauseMenu(menu choiceMenu, hud game.HUD, width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centerText(titleStyle.Render("P A U S E D"), width))
	b.WriteString("\n\n")
	summary := fmt.Sprintf("Wave %d  |  Score %d  |  Castle %d/%d", hud.Wave, hud.Score, hud.CastleHealth, hud.CastleMax)
	b.WriteString(centerText(labelStyle.Render(summary), width))
	b.WriteString("\n\n")
	b.WriteString(menu.view(width))
	return b.String()
}

// renderDefeat renders the defeat screen for a finished match.
func renderDefeat(r game.SessionRecord, recorded bool, errMsg string, width int) string {
	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(centerText(badStyle.Bold(true).Render("THE CASTLE HAS FALLEN"), width))
	b.WriteString("\n\n")
	lines := []string{
		field("Score", r.Score),
		field("Wave reached", r.WaveReached),
		field("Enemies slain", r.Kills),
		field("Towers built", r.TowersBuilt) + "  " + field("Allies summoned", r.AlliesSummoned),
		field("Time", formatElapsed(r.Elapsed)),
		field("Level", fmt.Sprintf("%d → %d", r.StartLevel, r.EndLevel)),
	}
	for _, line := range strings.Split(cardStyle.Render(strings.Join(lines, "\n")), "\n") {
		b.WriteString(centerText(line, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if errMsg != "" {
		b.WriteString(centerText(errorStyle.Render(errMsg), width))
		b.WriteString("\n")
	}
	if recorded {
		b.WriteString(centerText(labelStyle.Render("Press Enter to return to the menu"), width))
	} else {
		b.WriteString(centerText(labelStyle.Render("Recording match..."), width))
	}
	b.WriteString("\n")
	return b.String()
}
