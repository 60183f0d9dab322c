// Package builderui provides the Bubble Tea puzzle builder.
package builderui

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/dotdaily/internal/builder"
	"github.com/verte-zerg/dotdaily/internal/clock"
	"github.com/verte-zerg/dotdaily/internal/puzzle"
)

const frameInterval = 30 * time.Millisecond

type tickMsg struct{ id int }

// Options configure the builder screen. Exports are written to ExportDir and
// Import, when set, is loaded into the recording on start.
type Options struct {
	ExportDir string
	Import    *puzzle.Document
	Clock     clock.TimeProvider
	Logger    zerolog.Logger
}

// Model implements the Bubble Tea builder UI.
type Model struct {
	opts Options
	b    *builder.Builder

	cursor  builder.Point
	grabbed bool
	tickID  int

	exporting  bool
	inputs     []textinput.Model
	inputIndex int
	status     string
	errMsg     string
	lastExport string
	width      int
	height     int
}

// NewModel returns a builder model, importing opts.Import when present.
func NewModel(opts Options) (*Model, error) {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	m := &Model{
		opts:   opts,
		b:      builder.New(opts.Clock),
		cursor: builder.Point{X: builder.GridSize / 2, Y: builder.GridSize / 2},
		inputs: []textinput.Model{
			newInput("Name: "),
			newInput("Category: "),
		},
	}
	if opts.Import != nil {
		if err := m.b.Import(*opts.Import); err != nil {
			return nil, err
		}
		m.status = "Imported " + opts.Import.Name + "."
	}
	return m, nil
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 40
	return input
}

// Builder exposes the underlying state machine.
func (m *Model) Builder() *builder.Builder {
	return m.b
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
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
		return m, m.onTick()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.exporting {
			return m, m.updateExport(msg)
		}
		return m, m.updateGrid(msg)
	}
	return m, nil
}

func (m *Model) updateGrid(msg tea.KeyMsg) tea.Cmd {
	m.errMsg = ""
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, keys.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, keys.Right):
		m.moveCursor(1, 0)
	case key.Matches(msg, keys.Place):
		return m.activate()
	case key.Matches(msg, keys.Delete):
		if m.b.Mode().Kind() == builder.KindEdit {
			m.grabbed = false
			m.report(m.b.Click(m.cursor))
		}
	case key.Matches(msg, keys.Cancel):
		m.grabbed = false
		m.b.Cancel()
	case key.Matches(msg, keys.Clear):
		m.grabbed = false
		m.b.ClearSketch()
		m.status = "Sketch cleared."
	case key.Matches(msg, keys.Sketch):
		return m.setMode(builder.KindSketch)
	case key.Matches(msg, keys.Edit):
		return m.setMode(builder.KindEdit)
	case key.Matches(msg, keys.Record):
		return m.setMode(builder.KindRecord)
	case key.Matches(msg, keys.Preview):
		return m.setMode(builder.KindPreview)
	case key.Matches(msg, keys.Recording):
		m.toggleRecording()
	case key.Matches(msg, keys.Export):
		m.openExport()
		return m.focusInput(0)
	}
	return nil
}

func (m *Model) moveCursor(dx, dy int) {
	next := builder.Point{
		X: min(max(m.cursor.X+dx, 0), builder.GridSize),
		Y: min(max(m.cursor.Y+dy, 0), builder.GridSize),
	}
	if m.grabbed {
		if err := m.b.Move(next); err != nil {
			m.report(err)
			return
		}
	}
	m.cursor = next
}

// activate is a click in sketch and record mode, a grab or drop in edit mode
// and a replay in preview mode.
func (m *Model) activate() tea.Cmd {
	switch mode := m.b.Mode().(type) {
	case *builder.EditMode:
		if m.grabbed {
			m.grabbed = false
			m.report(m.b.Release())
			return nil
		}
		if err := m.b.Press(m.cursor); err != nil {
			m.report(err)
			return nil
		}
		m.grabbed = m.b.Selected() >= 0
	case *builder.PreviewMode:
		mode.Player.Play(m.opts.Clock.Now())
		return m.restartTick()
	default:
		m.report(m.b.Click(m.cursor))
	}
	return nil
}

func (m *Model) setMode(k builder.Kind) tea.Cmd {
	if m.grabbed {
		m.grabbed = false
		m.report(m.b.Release())
	}
	if err := m.b.SetMode(k); err != nil {
		m.report(err)
		return nil
	}
	m.status = "Mode: " + k.String()
	if k == builder.KindPreview {
		return m.restartTick()
	}
	return nil
}

func (m *Model) toggleRecording() {
	if m.b.Recording().Active {
		m.report(m.b.StopRecording())
		if m.errMsg == "" {
			rec := m.b.Recording()
			m.status = "Recorded " + plural(len(rec.Sequence), "line") + "."
		}
		return
	}
	m.grabbed = false
	if err := m.b.StartRecording(); err != nil {
		m.report(err)
		return
	}
	m.status = "Recording. Press R to stop."
}

func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.errMsg = describe(err)
}

func describe(err error) string {
	var verr *builder.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Cannot export: " + joinProblems(verr.Problems)
	case errors.Is(err, builder.ErrOutOfBounds):
		return "Dots cannot sit on the grid edge."
	case errors.Is(err, builder.ErrRecording):
		return "Stop recording first (R)."
	case errors.Is(err, builder.ErrNotRecording):
		return "Press R to start recording."
	case errors.Is(err, builder.ErrOccupied):
		return "That point already has a dot."
	}
	return err.Error()
}

func (m *Model) restartTick() tea.Cmd {
	m.tickID++
	return m.nextTick()
}

func (m *Model) nextTick() tea.Cmd {
	id := m.tickID
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return tickMsg{id: id} })
}

// onTick advances the preview. Ticks stop once playback ends.
func (m *Model) onTick() tea.Cmd {
	mode, ok := m.b.Mode().(*builder.PreviewMode)
	if !ok {
		return nil
	}
	if !mode.Player.Step(m.opts.Clock.Now()) {
		return nil
	}
	return m.nextTick()
}

func (m *Model) openExport() {
	m.exporting = true
	m.errMsg = ""
	m.inputs[0].SetValue(m.b.Name)
	m.inputs[1].SetValue(m.b.Category)
}

func (m *Model) focusInput(idx int) tea.Cmd {
	count := len(m.inputs)
	m.inputIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.inputIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) updateExport(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.exporting = false
		m.errMsg = ""
		return nil
	case tea.KeyTab, tea.KeyDown:
		return m.focusInput(m.inputIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusInput(m.inputIndex - 1)
	case tea.KeyEnter:
		m.b.Name = m.inputs[0].Value()
		m.b.Category = m.inputs[1].Value()
		path, err := m.export()
		if err != nil {
			m.report(err)
			return nil
		}
		m.exporting = false
		m.errMsg = ""
		m.lastExport = path
		m.status = "Saved " + path
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
	return cmd
}

// export writes the recording to the export directory and returns its path.
func (m *Model) export() (string, error) {
	doc, err := m.b.Export()
	if err != nil {
		return "", err
	}
	path := filepath.Join(m.opts.ExportDir, puzzle.Filename(doc.Name))
	if err := puzzle.Save(path, doc); err != nil {
		m.opts.Logger.Error().Err(err).Str("path", path).Msg("export failed")
		return "", err
	}
	m.opts.Logger.Info().
		Str("path", path).
		Str("name", doc.Name).
		Int("dots", len(doc.Dots)).
		Int("lines", len(doc.Sequence)).
		Msg("puzzle exported")
	return path, nil
}
