// Package tui provides the Bubble Tea game interface.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/dotdaily/internal/audio"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/daily"
	"github.com/verte-zerg/dotdaily/internal/game"
	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
	"github.com/verte-zerg/dotdaily/internal/store"
)

type screen int

const (
	screenMenu screen = iota
	screenWelcome
	screenPlay
	screenCelebrate
	screenSettings
)

const (
	frameInterval      = 50 * time.Millisecond
	idleInterval       = time.Second
	dailyCheckInterval = 5 * time.Minute
	defaultCelebration = 4 * time.Second
)

type tickMsg struct{ id int }

type dailyMsg struct{}

// Deps are the collaborators of the game screens. Audio, Clock and Scheduler
// may be left nil.
type Deps struct {
	Config    model.Config
	Store     *store.Store
	Pack      puzzle.Pack
	Scheduler *daily.Scheduler
	Audio     audio.Player
	Clock     clock.TimeProvider
	Logger    zerolog.Logger
}

// Model implements the Bubble Tea game UI.
type Model struct {
	deps     Deps
	settings model.Settings
	state    model.GameState
	history  []model.PlayRecord

	screen         screen
	cursor         int
	settingsCursor int
	hideWelcome    bool

	category       model.Category
	session        *game.Session
	celebrateUntil time.Time
	notice         string
	tickID         int

	width  int
	height int
}

// NewModel constructs the game model, running a daily reset check first.
func NewModel(deps Deps) *Model {
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Audio == nil {
		deps.Audio = audio.Nop{}
	}
	if deps.Config.Celebration <= 0 {
		deps.Config.Celebration = defaultCelebration
	}
	m := &Model{deps: deps, screen: screenMenu}
	ctx := context.Background()
	m.runDailyCheck(ctx)
	m.loadSettings(ctx)
	m.loadState(ctx)
	m.loadHistory(ctx)
	if !m.settings.HideWelcome {
		m.screen = screenWelcome
	}
	m.deps.Audio.Apply(m.settings)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.restartTick(), dailyTick())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if msg.id != m.tickID {
			return m, nil
		}
		cmd := m.onTick()
		if cmd != nil {
			return m, cmd
		}
		return m, m.nextTick()
	case dailyMsg:
		if m.runDailyCheck(context.Background()) {
			m.loadState(context.Background())
		}
		return m, dailyTick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.deps.Audio.StopMusic()
			return m, tea.Quit
		}
		switch m.screen {
		case screenWelcome:
			return m, m.updateWelcome(msg)
		case screenPlay:
			return m, m.updatePlay(msg)
		case screenCelebrate:
			return m, m.updateCelebrate(msg)
		case screenSettings:
			return m, m.updateSettings(msg)
		default:
			return m, m.updateMenu(msg)
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	accent := lipgloss.Color("#C89A3A")
	switch m.screen {
	case screenWelcome:
		content = m.viewWelcome()
	case screenPlay:
		content = m.viewPlay()
		accent = categoryColor(m.category)
	case screenCelebrate:
		content = m.viewCelebrate()
		accent = categoryColor(m.category)
	case screenSettings:
		content = m.viewSettings()
	default:
		content = m.viewMenu()
	}
	box := frame(m.settings.Theme, accent).Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) now() time.Time {
	return m.deps.Clock.Now()
}

// setScreen switches screens and restarts the tick loop at the new rate.
func (m *Model) setScreen(s screen) tea.Cmd {
	m.screen = s
	return m.restartTick()
}

func (m *Model) restartTick() tea.Cmd {
	m.tickID++
	return m.nextTick()
}

func (m *Model) nextTick() tea.Cmd {
	id := m.tickID
	d := idleInterval
	if m.screen == screenPlay || m.screen == screenCelebrate {
		d = frameInterval
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return tickMsg{id: id} })
}

func dailyTick() tea.Cmd {
	return tea.Tick(dailyCheckInterval, func(time.Time) tea.Msg { return dailyMsg{} })
}

func (m *Model) onTick() tea.Cmd {
	switch m.screen {
	case screenPlay:
		if m.session != nil {
			m.handleOutcome(m.session.Tick())
			if m.session.State() == game.Completed {
				return m.finish()
			}
		}
	case screenCelebrate:
		if !m.celebrateUntil.IsZero() && !m.now().Before(m.celebrateUntil) {
			return m.toMenu()
		}
	}
	return nil
}

func (m *Model) runDailyCheck(ctx context.Context) bool {
	if m.deps.Scheduler == nil {
		return false
	}
	reset, err := m.deps.Scheduler.Check(ctx)
	if err != nil {
		m.deps.Logger.Error().Err(err).Msg("daily reset check")
		return false
	}
	return reset
}

func (m *Model) loadSettings(ctx context.Context) {
	m.settings = model.DefaultSettings()
	if m.deps.Store == nil {
		return
	}
	settings, err := m.deps.Store.LoadSettings(ctx)
	if err != nil {
		m.deps.Logger.Error().Err(err).Msg("load settings")
	}
	m.settings = settings
}

func (m *Model) loadState(ctx context.Context) {
	m.state = model.GameState{Completed: map[model.Category]model.CompletionRecord{}}
	if m.deps.Store == nil {
		return
	}
	state, err := m.deps.Store.LoadGameState(ctx)
	if err != nil {
		m.deps.Logger.Error().Err(err).Msg("load game state")
	}
	m.state = state
}

func (m *Model) loadHistory(ctx context.Context) {
	if m.deps.Store == nil {
		return
	}
	plays, err := m.deps.Store.ListPlays(ctx, model.StatsConfig{})
	if err != nil {
		m.deps.Logger.Error().Err(err).Msg("load play history")
		return
	}
	m.history = plays
}

func (m *Model) toMenu() tea.Cmd {
	m.session = nil
	m.notice = ""
	m.celebrateUntil = time.Time{}
	m.deps.Audio.StopMusic()
	return m.setScreen(screenMenu)
}
