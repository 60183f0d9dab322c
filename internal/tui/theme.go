package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/dotdaily/internal/model"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = currentWordStyle.Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Bold(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// categoryColor is the accent of each category.
func categoryColor(c model.Category) lipgloss.Color {
	switch c {
	case model.Yellow:
		return lipgloss.Color("#FFD700")
	case model.Green:
		return lipgloss.Color("#4CAF50")
	case model.Blue:
		return lipgloss.Color("#2196F3")
	case model.Red:
		return lipgloss.Color("#F44336")
	}
	return lipgloss.Color("#F0F0F0")
}

func categoryStyle(c model.Category) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(categoryColor(c)).Bold(true)
}

// frame is the box drawn around each screen.
func frame(theme model.Theme, accent lipgloss.Color) lipgloss.Style {
	border := lipgloss.RoundedBorder()
	if theme == model.Theme8Bit {
		border = lipgloss.BlockBorder()
	}
	return lipgloss.NewStyle().
		Border(border).
		BorderForeground(accent).
		Padding(0, 2)
}
