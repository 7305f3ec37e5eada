package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
)

// colorStyles maps core.Color to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorDefault:       lipgloss.NewStyle(),
	core.ColorRed:           lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta:       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:          lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:         lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorBrightRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	core.ColorBrightGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.ColorBrightYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.ColorBrightBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	core.ColorBrightMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	core.ColorBrightCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	core.ColorBrightWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
	core.ColorOrange:        lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:          lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// Layout rows around the battlefield.
const (
	hudRows    = 3
	footerRows = 2
	borderSize = 2
)

var (
	fieldStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	nameStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("229"))
)

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same color to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		// Group consecutive cells with the same color for efficiency
		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			startColor := cell.Color

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if cell.Color != startColor {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			style, ok := colorStyles[startColor]
			if !ok {
				style = colorStyles[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// projector maps world coordinates onto screen cells.
type projector struct {
	sx, sy float64
	w, h   int
}

func newProjector(s *core.Screen, v game.View) projector {
	p := projector{w: s.Width(), h: s.Height()}
	if v.Width > 0 && v.Height > 0 {
		p.sx = float64(p.w) / v.Width
		p.sy = float64(p.h) / v.Height
	}
	return p
}

func (p projector) cell(pos core.Vec2) (int, int) {
	x := core.Clamp(int(math.Floor(pos.X*p.sx)), 0, p.w-1)
	y := core.Clamp(int(math.Floor(pos.Y*p.sy)), 0, p.h-1)
	return x, y
}

// DrawView paints the battlefield of v into s: paths, the castle, then
// entities in view order so later entities draw on top. The selected tower
// is bracketed.
func DrawView(s *core.Screen, v game.View) {
	s.Clear()
	if s.Width() == 0 || s.Height() == 0 {
		return
	}
	p := newProjector(s, v)
	if p.sx == 0 {
		return
	}

	// Sample each path segment at half-cell steps.
	step := 0.5 / math.Max(p.sx, p.sy)
	for _, path := range v.Paths {
		for i := 1; i < len(path); i++ {
			a, b := path[i-1], path[i]
			n := int(a.Dist(b)/step) + 1
			for j := 0; j <= n; j++ {
				t := float64(j) / float64(n)
				x, y := p.cell(a.Add(b.Sub(a).Scale(t)))
				s.SetColored(x, y, '.', core.ColorGray)
			}
		}
	}

	castle := game.FallbackSprite(game.SpriteKey{Kind: game.SpriteCastle})
	for _, d := range v.Entities {
		if d.Kind == game.SpriteCastle {
			castle = d.Appearance
			break
		}
	}
	x0, y0 := p.cell(core.V(v.Castle.X, v.Castle.Y))
	x1, y1 := p.cell(core.V(v.Castle.X+v.Castle.W, v.Castle.Y+v.Castle.H))
	walls := core.Rect{X: x0, Y: y0, W: x1 - x0 + 1, H: y1 - y0 + 1}
	s.FillRect(walls, core.Cell{Rune: castle.Glyph, Color: castle.Color})
	if walls.W >= 5 && walls.H >= 5 {
		s.DrawBox(walls, castle.Color)
	}

	for _, d := range v.Entities {
		if d.Kind == game.SpriteCastle {
			continue
		}
		x, y := p.cell(d.Pos)
		s.SetColored(x, y, d.Appearance.Glyph, d.Appearance.Color)
		if d.Kind == game.SpriteTower && d.ID == v.HUD.Selected {
			s.DrawText(x-1, y, "[", core.ColorBrightWhite)
			s.DrawText(x+1, y, "]", core.ColorBrightWhite)
		}
	}
}

// bar renders a fixed-width gauge.
func bar(cur, maxVal, width int) string {
	if maxVal <= 0 || width <= 0 {
		return ""
	}
	filled := core.Clamp(cur*width/maxVal, 0, width)
	if cur > 0 && filled == 0 {
		filled = 1
	}
	style := goodStyle
	switch {
	case cur*4 <= maxVal:
		style = badStyle
	case cur*2 <= maxVal:
		style = warnStyle
	}
	return style.Render(strings.Repeat("█", filled)) + labelStyle.Render(strings.Repeat("░", width-filled))
}

func field(label string, value any) string {
	return labelStyle.Render(label+" ") + valueStyle.Render(fmt.Sprint(value))
}

// waveLine describes the wave director's phase.
func waveLine(h game.HUD) string {
	switch h.WavePhase {
	case game.PhaseCountdown:
		return fmt.Sprintf("Wave %d in %.0fs", h.Wave+1, math.Ceil(h.Countdown))
	case game.PhaseSpawning:
		return fmt.Sprintf("Wave %d: %d incoming", h.Wave, h.EnemiesLeft)
	default:
		return fmt.Sprintf("Wave %d: %d left", h.Wave, h.EnemiesLeft)
	}
}

// RenderHUD formats the HUD rows shown above the battlefield.
func RenderHUD(h game.HUD, width int) string {
	sep := labelStyle.Render("  |  ")

	player := nameStyle.Render(h.Character) + " " + field("Lv", h.Level) + " " +
		labelStyle.Render(fmt.Sprintf("exp %d/%d", h.Exp, h.ExpToNext))
	health := labelStyle.Render("HP ") + bar(h.PlayerHealth, h.PlayerMax, 10) +
		" " + valueStyle.Render(fmt.Sprintf("%d/%d", h.PlayerHealth, h.PlayerMax))
	if h.Downed > 0 {
		health = badStyle.Render(fmt.Sprintf("DOWN %.1fs", h.Downed))
	}
	row1 := strings.Join([]string{
		player,
		health,
		field("Essence", h.Essence),
		field("Score", h.Score),
		field("Time", formatElapsed(h.Elapsed)),
	}, sep)

	castle := labelStyle.Render("Castle ") + bar(h.CastleHealth, h.CastleMax, 16) +
		" " + valueStyle.Render(fmt.Sprintf("%d/%d", h.CastleHealth, h.CastleMax))
	row2 := strings.Join([]string{
		valueStyle.Render(waveLine(h)),
		castle,
		field("Towers", h.Towers),
		field("Allies", h.Allies),
		labelStyle.Render(fmt.Sprintf("tower %d  ally %d", h.TowerCost, h.AllyCost)),
	}, sep)

	row3 := labelStyle.Render("No tower selected (tab)")
	if h.Selected != 0 {
		upgrade := "max level"
		if h.UpgradeCost > 0 {
			upgrade = fmt.Sprintf("upgrade %d", h.UpgradeCost)
		}
		repair := "repaired"
		if h.RepairCost > 0 {
			repair = fmt.Sprintf("repair %d", h.RepairCost)
		}
		row3 = strings.Join([]string{
			field("Tower", fmt.Sprintf("#%d L%d", h.Selected, h.SelectedLevel)),
			labelStyle.Render("HP ") + bar(h.SelectedHealth, h.SelectedMax, 10),
			labelStyle.Render(upgrade),
			labelStyle.Render(repair),
		}, sep)
	}

	style := lipgloss.NewStyle().MaxWidth(width)
	return lipgloss.JoinVertical(lipgloss.Left, style.Render(row1), style.Render(row2), style.Render(row3))
}

func formatElapsed(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
