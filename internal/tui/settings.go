package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/dotdaily/internal/model"
)

const volumeStep = 10

type settingRow int

const (
	rowDifficulty settingRow = iota
	rowAudio
	rowMusic
	rowSfx
	rowTheme
	rowWelcome
	settingRows
)

func (m *Model) updateSettings(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.settingsCursor = (m.settingsCursor + int(settingRows) - 1) % int(settingRows)
	case "down", "j":
		m.settingsCursor = (m.settingsCursor + 1) % int(settingRows)
	case "left", "h", "-":
		m.changeSetting(settingRow(m.settingsCursor), -1)
	case "right", "l", "+", "enter", " ":
		m.changeSetting(settingRow(m.settingsCursor), 1)
	case "esc", "q", "s":
		return m.setScreen(screenMenu)
	}
	return nil
}

// changeSetting adjusts one row and persists the result immediately.
func (m *Model) changeSetting(row settingRow, dir int) {
	s := m.settings
	switch row {
	case rowDifficulty:
		if s.Difficulty == model.Hard {
			s.Difficulty = model.Easy
		} else {
			s.Difficulty = model.Hard
		}
	case rowAudio:
		s.AudioEnabled = !s.AudioEnabled
	case rowMusic:
		s.MusicVolume += dir * volumeStep
	case rowSfx:
		s.SfxVolume += dir * volumeStep
	case rowTheme:
		if s.Theme == model.Theme8Bit {
			s.Theme = model.ThemeModern
		} else {
			s.Theme = model.Theme8Bit
		}
	case rowWelcome:
		s.HideWelcome = !s.HideWelcome
	}
	m.settings = s.Normalize()
	m.deps.Audio.Apply(m.settings)
	ctx := context.Background()
	m.saveSettings(ctx)
	if row == rowDifficulty {
		m.state.Config.Difficulty = m.settings.Difficulty
		if m.deps.Store != nil {
			if err := m.deps.Store.SaveGameState(ctx, m.state); err != nil {
				m.deps.Logger.Error().Err(err).Msg("save game state")
			}
		}
	}
}

func (m *Model) saveSettings(ctx context.Context) {
	if m.deps.Store == nil {
		return
	}
	if err := m.deps.Store.SaveSettings(ctx, m.settings); err != nil {
		m.deps.Logger.Error().Err(err).Msg("save settings")
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (m *Model) settingValues() []string {
	s := m.settings
	return []string{
		string(s.Difficulty),
		onOff(s.AudioEnabled),
		fmt.Sprintf("%d%%", s.MusicVolume),
		fmt.Sprintf("%d%%", s.SfxVolume),
		string(s.Theme),
		onOff(!s.HideWelcome),
	}
}

var settingLabels = []string{"Difficulty", "Audio", "Music volume", "Effects volume", "Theme", "Welcome screen"}

func (m *Model) viewSettings() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")
	for i, value := range m.settingValues() {
		line := fmt.Sprintf("%-16s %s", settingLabels[i], value)
		if i == m.settingsCursor {
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("↑/↓ choose  ←/→ change  esc back"))
	return b.String()
}
