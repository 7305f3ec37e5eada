package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/bastion/internal/config"
	"github.com/vovakirdan/bastion/internal/core"
	"github.com/vovakirdan/bastion/internal/game"
	"github.com/vovakirdan/bastion/internal/storage"
)

// moveHold is how long a movement key keeps the character walking.
// Terminals report key repeats, not releases.
const moveHold = 0.18

// statusTTL is how long a status message stays on screen, seconds.
const statusTTL = 2.5

type screenState int

const (
	stateMenu screenState = iota
	statePlaying
	statePaused
	stateDefeat
	stateScores
)

// Options configures a session model.
type Options struct {
	Balance config.Balance
	Sprites game.SpriteResolver
	Store   *storage.Store
	Profile string
	Runtime core.RuntimeConfig
	Logger  *log.Logger
}

// Messages produced by persistence commands.
type (
	menuDataMsg struct {
		data menuData
		err  error
	}
	matchReadyMsg struct {
		continued bool
		err       error
	}
	matchSavedMsg    struct{ err error }
	matchFinishedMsg struct {
		outcome string
		err     error
	}
	progressSavedMsg struct{ err error }
)

// Model is the Bubble Tea model for one player session: main menu, match,
// pause menu, defeat screen and scoreboard. Each Model owns its own Game.
type Model struct {
	opts     Options
	logger   *log.Logger
	game     *game.Game
	persist  game.Persistence
	screen   *core.Screen
	keys     GameKeyMap
	menuKeys MenuKeyMap
	help     help.Model

	state    screenState
	menu     choiceMenu
	pause    choiceMenu
	data     *menuData
	scores   ScoreboardModel
	pauseHUD game.HUD

	intents  core.IntentQueue
	moveDir  core.Vec2
	moveLeft float64
	selected game.EntityID
	lastTick TickMsg

	status    string
	statusAge float64

	defeat   game.SessionRecord
	recorded bool
	busy     bool
	errMsg   string

	width    int
	height   int
	quitting bool
}

// NewModel creates a session model for opts.Profile.
func NewModel(opts Options) Model {
	if opts.Profile == "" {
		opts.Profile = game.DefaultCharacterName
	}
	if opts.Runtime.TickRate <= 0 {
		opts.Runtime = core.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	g := game.New(opts.Balance,
		game.WithLogger(logger),
		game.WithSprites(opts.Sprites),
		game.WithMaxDelta(opts.Runtime.MaxDelta),
	)

	h := help.New()
	h.ShowAll = false

	m := Model{
		opts:     opts,
		logger:   logger,
		game:     g,
		persist:  game.Persistence{Saves: opts.Store, Progress: opts.Store, Sessions: opts.Store},
		screen:   core.NewScreen(1, 1),
		keys:     DefaultGameKeyMap(),
		menuKeys: DefaultMenuKeyMap(),
		help:     h,
		menu:     mainMenu(false),
	}
	m.resize(opts.Runtime.ScreenW, opts.Runtime.ScreenH)
	return m
}

// Init loads the profile for the main menu and starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadMenuCmd(), tickCmd(m.opts.Runtime.TickRate))
}

// resize fits the battlefield screen between the HUD and the footer.
func (m *Model) resize(width, height int) {
	m.width = max(width, 20)
	m.height = max(height, 10)
	m.help.Width = m.width
	footer := footerRows
	if m.help.ShowAll {
		footer += len(m.keys.FullHelp()[0]) - 1
	}
	m.screen.Resize(
		max(m.width-borderSize, 10),
		max(m.height-hudRows-footer-borderSize, 5),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.state == stateScores {
			var cmd tea.Cmd
			m.scores, cmd = m.scores.Update(msg)
			return m, cmd
		}
		return m, nil

	case TickMsg:
		return m.handleTick(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case menuDataMsg:
		if msg.err != nil {
			m.logger.Error("cannot load profile", "profile", m.opts.Profile, "error", msg.err)
			m.errMsg = "Could not load profile: " + msg.err.Error()
			return m, nil
		}
		m.data = &msg.data
		m.menu = mainMenu(msg.data.save != nil)
		return m, nil

	case matchReadyMsg:
		m.busy = false
		if msg.err != nil {
			return m.matchFailed(msg.err)
		}
		m.startPlaying()
		if msg.continued {
			m.setStatus(fmt.Sprintf("Welcome back. Wave %d.", m.game.Wave()))
		}
		return m, nil

	case matchSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.logger.Error("save failed", "profile", m.opts.Profile, "error", msg.err)
			m.errMsg = "Save failed: " + msg.err.Error()
			m.state = statePaused
			return m, nil
		}
		return m.backToMenu()

	case matchFinishedMsg:
		m.busy = false
		if msg.err != nil {
			m.logger.Error("cannot record match", "outcome", msg.outcome, "error", msg.err)
			m.errMsg = "Could not record match: " + msg.err.Error()
		}
		if msg.outcome == game.OutcomeDefeat {
			m.recorded = true
			return m, nil
		}
		return m.backToMenu()

	case progressSavedMsg:
		if msg.err != nil {
			m.logger.Error("cannot save progression", "profile", m.opts.Profile, "error", msg.err)
		}
		return m, nil
	}

	if m.state == stateScores {
		var cmd tea.Cmd
		m.scores, cmd = m.scores.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick advances the match by the real time since the previous tick.
func (m Model) handleTick(msg TickMsg) (tea.Model, tea.Cmd) {
	next := tickCmd(m.opts.Runtime.TickRate)
	if m.state != statePlaying {
		m.lastTick = TickMsg{}
		return m, next
	}

	dt := frameDelta(timeOf(m.lastTick), timeOf(msg), m.opts.Runtime.TickRate)
	m.lastTick = msg

	if m.moveLeft > 0 {
		m.intents.SetMove(m.moveDir)
		m.moveLeft -= dt
	}
	res := m.game.Advance(dt, m.intents.Drain())

	cmds := []tea.Cmd{next}
	if cmd := m.handleEvents(res.Events); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.status != "" {
		m.statusAge += dt
		if m.statusAge > statusTTL {
			m.status = ""
		}
	}
	m.pruneSelection()

	if res.Terminal == game.TerminalDefeat {
		m.state = stateDefeat
		m.defeat = m.game.SessionRecord(m.opts.Profile, game.OutcomeDefeat)
		m.recorded = false
		m.errMsg = ""
		m.busy = true
		m.logger.Info("match lost", "profile", m.opts.Profile, "wave", m.defeat.WaveReached, "score", m.defeat.Score)
		cmds = append(cmds, m.finishCmd(game.OutcomeDefeat))
	}
	return m, tea.Batch(cmds...)
}

// handleEvents turns frame events into status messages. A level-up also
// persists the character record.
func (m *Model) handleEvents(events []game.Event) tea.Cmd {
	var cmd tea.Cmd
	for _, e := range events {
		switch e := e.(type) {
		case game.IntentRejected:
			m.setStatus(capitalize(string(e.Reason)))
		case game.WaveStarted:
			m.setStatus(fmt.Sprintf("Wave %d: %d enemies approach", e.Wave, e.Count))
		case game.WaveCompleted:
			m.setStatus(fmt.Sprintf("Wave %d cleared! +%d essence", e.Wave, e.Essence))
		case game.LevelUp:
			m.setStatus(fmt.Sprintf("Level up! You are now level %d", e.To))
			cmd = m.saveProgressCmd()
		case game.TowerBuilt:
			m.selected = e.ID
		case game.TowerUpgraded:
			m.setStatus(fmt.Sprintf("Tower upgraded to level %d", e.Level))
		case game.TowerDestroyed:
			m.setStatus("A tower has fallen")
		case game.PlayerDowned:
			m.setStatus(fmt.Sprintf("You are down! Back in %.0fs", e.Respawn))
		}
	}
	return cmd
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusAge = 0
}

// pruneSelection clears the selection when the tower is gone.
func (m *Model) pruneSelection() {
	if m.selected == 0 {
		return
	}
	for _, id := range m.game.TowerIDs() {
		if id == m.selected {
			return
		}
	}
	m.selected = 0
}

// cycleSelection selects the next tower in build order.
func (m *Model) cycleSelection() {
	ids := m.game.TowerIDs()
	if len(ids) == 0 {
		m.selected = 0
		m.setStatus("No towers yet. Press e to build one")
		return
	}
	next := ids[0]
	for i, id := range ids {
		if id == m.selected && i+1 < len(ids) {
			next = ids[i+1]
			break
		}
	}
	m.selected = next
}

// handleKey dispatches a key press to the active screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case statePlaying:
		return m.handleGameKey(msg)
	case statePaused:
		return m.handlePauseKey(msg)
	case stateDefeat:
		return m.handleDefeatKey(msg)
	case stateScores:
		var cmd tea.Cmd
		m.scores, cmd = m.scores.Update(msg)
		if m.scores.IsQuitting() {
			m.quitting = true
			return m, tea.Quit
		}
		if m.scores.IsGoingBack() {
			m.state = stateMenu
		}
		return m, cmd
	default:
		return m.handleMenuKey(msg)
	}
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.menuKeys.Action(msg)
	if action == MenuActionQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	switch action {
	case MenuActionUp:
		m.menu.up()
	case MenuActionDown:
		m.menu.down()
	case MenuActionSelect:
		choice, ok := m.menu.selected()
		if !ok {
			return m, nil
		}
		m.errMsg = ""
		switch choice {
		case choiceNewGame:
			m.busy = true
			return m, m.startCmd(false)
		case choiceContinue:
			m.busy = true
			return m, m.startCmd(true)
		case choiceScores:
			m.scores = NewScoreboardModel(m.opts.Store, m.opts.Profile, m.width, m.height)
			m.state = stateScores
		case choiceQuit:
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) handleGameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if dir, ok := m.keys.Direction(msg); ok {
		m.moveDir = dir
		m.moveLeft = moveHold
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Pause):
		m.state = statePaused
		m.pause = pauseMenu()
		m.pauseHUD = m.game.ViewWith(m.selected).HUD
		m.moveLeft = 0
		m.errMsg = ""
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
	case key.Matches(msg, m.keys.Attack):
		m.intents.Push(core.Attack())
	case key.Matches(msg, m.keys.Build):
		m.intents.Push(core.BuildTower(m.game.Player().Pos))
	case key.Matches(msg, m.keys.Summon):
		m.intents.Push(core.SummonAlly(m.game.Player().Pos))
	case key.Matches(msg, m.keys.Select):
		m.cycleSelection()
	case key.Matches(msg, m.keys.Upgrade):
		if m.selected == 0 {
			m.setStatus("Select a tower with tab first")
		} else {
			m.intents.Push(core.UpgradeTower(uint64(m.selected)))
		}
	case key.Matches(msg, m.keys.Repair):
		if m.selected == 0 {
			m.setStatus("Select a tower with tab first")
		} else {
			m.intents.Push(core.RepairTower(uint64(m.selected)))
		}
	}
	return m, nil
}

func (m Model) handlePauseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	if key.Matches(msg, m.keys.Pause) {
		m.startPlaying()
		return m, nil
	}
	switch m.menuKeys.Action(msg) {
	case MenuActionUp:
		m.pause.up()
	case MenuActionDown:
		m.pause.down()
	case MenuActionBack:
		m.startPlaying()
	case MenuActionSelect:
		choice, _ := m.pause.selected()
		switch choice {
		case choiceResume:
			m.startPlaying()
		case choiceSaveQuit:
			m.busy = true
			return m, m.saveCmd()
		case choiceAbandon:
			m.busy = true
			return m, m.finishCmd(game.OutcomeAbandoned)
		}
	}
	return m, nil
}

func (m Model) handleDefeatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if !m.recorded {
		return m, nil
	}
	switch m.menuKeys.Action(msg) {
	case MenuActionSelect, MenuActionBack:
		return m.backToMenu()
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// startPlaying enters the match screen with fresh input state.
func (m *Model) startPlaying() {
	m.state = statePlaying
	m.lastTick = TickMsg{}
	m.intents.Drain()
	m.moveLeft = 0
	m.errMsg = ""
	m.pruneSelection()
}

// backToMenu returns to the main menu and reloads the profile.
func (m Model) backToMenu() (tea.Model, tea.Cmd) {
	m.state = stateMenu
	m.data = nil
	m.selected = 0
	m.status = ""
	m.menu = mainMenu(false)
	return m, m.loadMenuCmd()
}

// matchFailed reports a failed new game or continue on the main menu.
func (m Model) matchFailed(err error) (tea.Model, tea.Cmd) {
	var corrupt *game.CorruptSnapshotError
	switch {
	case errors.Is(err, game.ErrNoSnapshot):
		m.errMsg = "There is no saved match."
	case errors.As(err, &corrupt):
		m.logger.Warn("saved match is corrupt", "profile", m.opts.Profile, "field", corrupt.Field, "reason", corrupt.Reason)
		m.errMsg = "The saved match is damaged. Start a new game."
	default:
		m.logger.Error("cannot start match", "profile", m.opts.Profile, "error", err)
		m.errMsg = "Could not start: " + err.Error()
	}
	m.state = stateMenu
	return m, nil
}

// Persistence commands run while the match is not advancing, so the game is
// never touched by Update and a command at the same time.

func (m Model) loadMenuCmd() tea.Cmd {
	store, profile := m.opts.Store, m.opts.Profile
	return func() tea.Msg {
		var d menuData
		var err error
		if d.prog, err = store.LoadProgression(profile); err != nil {
			return menuDataMsg{err: err}
		}
		info, err := store.SaveInfo(profile)
		switch {
		case err == nil:
			d.save = &info
		case !errors.Is(err, game.ErrNoSnapshot):
			return menuDataMsg{err: err}
		}
		if d.highScore, err = store.HighScore(); err != nil {
			return menuDataMsg{err: err}
		}
		return menuDataMsg{data: d}
	}
}

func (m Model) startCmd(continued bool) tea.Cmd {
	p, g, profile := m.persist, m.game, m.opts.Profile
	return func() tea.Msg {
		var err error
		if continued {
			err = p.Continue(g, profile)
		} else {
			err = p.StartNew(g, profile)
		}
		return matchReadyMsg{continued: continued, err: err}
	}
}

func (m Model) saveCmd() tea.Cmd {
	p, g, profile := m.persist, m.game, m.opts.Profile
	return func() tea.Msg {
		return matchSavedMsg{err: p.SaveAndQuit(g, profile)}
	}
}

func (m Model) finishCmd(outcome string) tea.Cmd {
	p, g, profile := m.persist, m.game, m.opts.Profile
	return func() tea.Msg {
		var err error
		if outcome == game.OutcomeDefeat {
			err = p.Defeat(g, profile)
		} else {
			err = p.Abandon(g, profile)
		}
		return matchFinishedMsg{outcome: outcome, err: err}
	}
}

// saveProgressCmd writes a copy of the character record.
func (m Model) saveProgressCmd() tea.Cmd {
	store, prog := m.opts.Store, m.game.Progression()
	return func() tea.Msg {
		return progressSavedMsg{err: store.SaveProgression(prog)}
	}
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case statePlaying:
		return m.viewMatch()
	case statePaused:
		s := renderPauseMenu(m.pause, m.pauseHUD, m.width)
		if m.errMsg != "" {
			s += "\n" + centerText(errorStyle.Render(m.errMsg), m.width)
		}
		return s
	case stateDefeat:
		return renderDefeat(m.defeat, m.recorded, m.errMsg, m.width)
	case stateScores:
		return m.scores.View()
	default:
		return renderMainMenu(m.menu, m.data, m.errMsg, m.width)
	}
}

func (m Model) viewMatch() string {
	v := m.game.ViewWith(m.selected)
	DrawView(m.screen, v)

	status := statusStyle.Render(m.status)
	var b strings.Builder
	b.WriteString(RenderHUD(v.HUD, m.width))
	b.WriteString("\n")
	b.WriteString(fieldStyle.Render(RenderScreen(m.screen)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().MaxWidth(m.width).Render(status))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Run starts the Bubble Tea program for a local player.
func Run(opts Options) error {
	if opts.Store == nil {
		return errors.New("tui: a store is required")
	}
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(), // Use alternate screen buffer
	)
	_, err := p.Run()
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
