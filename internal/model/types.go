// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category is one of the four daily puzzle slots.
type Category string

// Daily categories, in menu order.
const (
	Yellow Category = "yellow"
	Green  Category = "green"
	Blue   Category = "blue"
	Red    Category = "red"
)

// Categories lists every category in menu order.
func Categories() []Category {
	return []Category{Yellow, Green, Blue, Red}
}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (expected yellow, green, blue or red)", s)
}

// Difficulty controls hint availability.
type Difficulty string

// Difficulty levels.
const (
	Easy Difficulty = "easy"
	Hard Difficulty = "hard"
)

// ParseDifficulty validates a difficulty name.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, nil
	case Hard:
		return Hard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q (expected easy or hard)", s)
}

// Theme selects the UI palette.
type Theme string

// Themes.
const (
	ThemeModern Theme = "modern"
	Theme8Bit   Theme = "8bit"
)

// Settings are the player preferences kept across daily resets.
type Settings struct {
	Difficulty   Difficulty `json:"difficulty"`
	AudioEnabled bool       `json:"audioEnabled"`
	MusicVolume  int        `json:"musicVolume"`
	SfxVolume    int        `json:"sfxVolume"`
	Theme        Theme      `json:"theme"`
	HideWelcome  bool       `json:"dontShowWelcome"`
}

// DefaultSettings returns the first-run preferences.
func DefaultSettings() Settings {
	return Settings{
		Difficulty:   Easy,
		AudioEnabled: true,
		MusicVolume:  40,
		SfxVolume:    50,
		Theme:        ThemeModern,
	}
}

// Normalize clamps volumes and fills unknown enum values with defaults.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	if s.Difficulty != Easy && s.Difficulty != Hard {
		s.Difficulty = def.Difficulty
	}
	if s.Theme != ThemeModern && s.Theme != Theme8Bit {
		s.Theme = def.Theme
	}
	s.MusicVolume = clampPercent(s.MusicVolume)
	s.SfxVolume = clampPercent(s.SfxVolume)
	return s
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Achievements are earned when a category is completed.
type Achievements struct {
	HardMode        bool `json:"hardMode"`
	EarlyCompletion bool `json:"earlyCompletion"`
	FirstGuess      bool `json:"firstGuess"`
}

// CompletionStats holds the solve time in centiseconds and the guess count.
type CompletionStats struct {
	Time    int64 `json:"time"`
	Guesses int   `json:"guesses"`
}

// CompletionRecord is the persisted result for one category of the day.
type CompletionRecord struct {
	Completed    bool            `json:"completed"`
	Stats        CompletionStats `json:"stats"`
	Achievements Achievements    `json:"achievements"`
}

// GameState is the persisted per-day state.
type GameState struct {
	Config    GameStateConfig               `json:"config"`
	Completed map[Category]CompletionRecord `json:"completedCategories"`
}

// GameStateConfig is the configuration part of GameState, kept on reset.
type GameStateConfig struct {
	Difficulty Difficulty `json:"difficulty"`
}

// Config defines resolved play settings.
type Config struct {
	Difficulty      Difficulty
	PixelsPerSecond float64
	MinLineTime     time.Duration
	GuessTimeLimit  time.Duration
	HintCooldown    time.Duration
	WrongFlash      time.Duration
	Celebration     time.Duration
	PuzzleDir       string
}

// PlayRecord is one completed puzzle in the history table.
type PlayRecord struct {
	ID           string
	Category     Category
	Puzzle       string
	Difficulty   Difficulty
	StartedAt    time.Time
	EndedAt      time.Time
	TimeCs       int64
	Guesses      int
	Hints        int
	Progress     float64
	Achievements Achievements
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Category Category
	Since    *time.Time
	Last     int
	Window   int
}
