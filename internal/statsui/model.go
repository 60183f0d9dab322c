// Package statsui is the interactive stats browser.
package statsui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/dotdaily/internal/model"
	"github.com/verte-zerg/dotdaily/internal/stats"
	"github.com/verte-zerg/dotdaily/internal/store"
)

const (
	tabOverview = iota
	tabCategories
	tabPlays
	tabCount
)

var tabNames = [tabCount]string{"Overview", "Categories", "Plays"}

// Model browses recorded plays through the store.
type Model struct {
	store  *store.Store
	cfg    model.StatsConfig
	report stats.Report
	err    error

	tab   int
	pages [tabPlays]viewport.Model
	plays table.Model

	// filter is non-nil while the filter form is open.
	filter *filterForm

	width  int
	height int
}

// NewModel loads the first report for cfg.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{store: st, cfg: cfg}
	for i := range m.pages {
		m.pages[i] = viewport.New(0, 0)
	}
	m.reload()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.fillPages()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filter != nil {
			return m, m.updateFilter(msg)
		}
		return m, m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Prev):
		m.switchTab(m.tab - 1)
		return tea.ClearScreen
	case key.Matches(msg, keys.Next):
		m.switchTab(m.tab + 1)
		return tea.ClearScreen
	case key.Matches(msg, keys.Wider):
		m.cfg.Window = widerWindow(m.cfg.Window)
		m.reload()
	case key.Matches(msg, keys.Narrower):
		m.cfg.Window = narrowerWindow(m.cfg.Window)
		m.reload()
	case key.Matches(msg, keys.Filter):
		m.filter = newFilterForm(m.cfg, m.width)
		return m.filter.focusField(0)
	case key.Matches(msg, keys.Top):
		if m.tab == tabPlays {
			m.plays.GotoTop()
		} else {
			m.pages[m.tab].GotoTop()
		}
	case key.Matches(msg, keys.Bottom):
		if m.tab == tabPlays {
			m.plays.GotoBottom()
		} else {
			m.pages[m.tab].GotoBottom()
		}
	default:
		var cmd tea.Cmd
		if m.tab == tabPlays {
			m.plays, cmd = m.plays.Update(msg)
		} else {
			m.pages[m.tab], cmd = m.pages[m.tab].Update(msg)
		}
		return cmd
	}
	return nil
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Cancel):
		m.filter = nil
	case key.Matches(msg, keys.Apply):
		cfg, err := m.filter.parse(m.cfg)
		if err != nil {
			m.filter.err = err.Error()
			return nil
		}
		m.cfg = cfg
		m.filter = nil
		m.reload()
		m.resize()
	case key.Matches(msg, keys.NextField):
		return m.filter.focusField(m.filter.focus + 1)
	case key.Matches(msg, keys.PrevField):
		return m.filter.focusField(m.filter.focus - 1)
	default:
		return m.filter.update(msg)
	}
	return nil
}

func (m *Model) switchTab(i int) {
	m.tab = (i + tabCount) % tabCount
	if m.tab == tabPlays {
		m.plays.Focus()
	} else {
		m.plays.Blur()
	}
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	body := m.bodyHeight()
	for i := range m.pages {
		m.pages[i].Width = m.width
		m.pages[i].Height = body
	}
	m.plays.SetWidth(m.width)
	m.plays.SetHeight(max(body-1, 1))
	if m.filter != nil {
		m.filter.resize(m.width)
	}
}

// reload queries the store for the current filters and rebuilds every tab.
func (m *Model) reload() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	m.err = err
	if err != nil {
		for i := range m.pages {
			m.pages[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.report = report
	m.plays = newPlayTable(report.Plays, m.width, m.bodyHeight())
	if m.tab == tabPlays {
		m.plays.Focus()
	}
	m.fillPages()
}

func (m *Model) fillPages() {
	if m.err != nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.pages[tabOverview].SetContent(overviewPage(m.report.Plays, m.cfg.Window, width))
	m.pages[tabCategories].SetContent(categoriesPage(m.report))
}

// widerWindow steps up to the next multiple of five.
func widerWindow(n int) int {
	return (max(n, 0)/5 + 1) * 5
}

// narrowerWindow steps down to the previous multiple of five, never below one.
func narrowerWindow(n int) int {
	return max((n-1)/5*5, 1)
}
