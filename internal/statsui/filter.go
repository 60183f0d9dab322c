package statsui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/dotdaily/internal/model"
)

const dateLayout = "2006-01-02"

const (
	fieldCategory = iota
	fieldSince
	fieldLast
	fieldWindow
	fieldCount
)

var fieldPrompts = [fieldCount]string{
	fieldCategory: "Category: ",
	fieldSince:    "Since (YYYY-MM-DD): ",
	fieldLast:     "Last: ",
	fieldWindow:   "Window: ",
}

// filterForm edits a copy of the stats filters until it is applied.
type filterForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newFilterForm(cfg model.StatsConfig, width int) *filterForm {
	f := &filterForm{}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = fieldPrompts[i]
		in.Cursor.SetMode(cursor.CursorBlink)
		f.inputs[i] = in
	}
	f.inputs[fieldCategory].SetValue(string(cfg.Category))
	if cfg.Since != nil {
		f.inputs[fieldSince].SetValue(cfg.Since.Format(dateLayout))
	}
	if cfg.Last > 0 {
		f.inputs[fieldLast].SetValue(strconv.Itoa(cfg.Last))
	}
	f.inputs[fieldWindow].SetValue(strconv.Itoa(cfg.Window))
	f.resize(width)
	return f
}

func (f *filterForm) resize(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-lipgloss.Width(f.inputs[i].Prompt)-2)
	}
}

// focusField moves focus to field i, wrapping at either end.
func (f *filterForm) focusField(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
			continue
		}
		f.inputs[j].Blur()
	}
	return cmd
}

func (f *filterForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *filterForm) value(field int) string {
	return strings.TrimSpace(f.inputs[field].Value())
}

// parse turns the form into a StatsConfig. An empty window keeps current.
func (f *filterForm) parse(current model.StatsConfig) (model.StatsConfig, error) {
	out := model.StatsConfig{Window: current.Window}

	if raw := f.value(fieldCategory); raw != "" && !strings.EqualFold(raw, "any") {
		c, err := model.ParseCategory(raw)
		if err != nil {
			return out, err
		}
		out.Category = c
	}
	if raw := f.value(fieldSince); raw != "" {
		since, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return out, errors.New("invalid since date (expected YYYY-MM-DD)")
		}
		out.Since = &since
	}
	if raw := f.value(fieldLast); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return out, errors.New("invalid last value (use 0 or a positive integer)")
		}
		out.Last = n
	}
	if raw := f.value(fieldWindow); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return out, errors.New("invalid window (use an integer >= 1)")
		}
		out.Window = n
	}
	return out, nil
}

func (f *filterForm) view() string {
	lines := make([]string, 0, fieldCount+2)
	lines = append(lines, "Filters")
	for _, in := range f.inputs {
		lines = append(lines, in.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}
