// Package stepper renders a stepform.Controller in the terminal.
package stepper

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/tui/theme"
	"github.com/spf13/afero"
)

// advancedMsg carries the result of an Advance that ran off the UI loop.
type advancedMsg struct {
	outcome stepform.Outcome
}

// Model is the BubbleTea model for a running form. The controller owns all
// form state; the model keeps the latest copy for rendering and the input
// widgets for each step.
type Model struct {
	ctx   context.Context
	ctrl  *stepform.Controller
	def   *formdef.Definition
	steps []*FieldStep
	state stepform.State

	spinner     spinner.Model
	busy        bool // Advance running in a command
	interrupted bool // ctrl+c; the form stays resumable
	shown       int  // step whose inputs are focused
	width       int
	height      int
}

// New creates the model. Call Mount before running it so Advance submits
// the step inputs.
func New(ctx context.Context, ctrl *stepform.Controller, def *formdef.Definition, fs afero.Fs) *Model {
	data := ctrl.Data()
	steps := make([]*FieldStep, len(def.Steps))
	for i, spec := range def.Steps {
		steps[i] = NewFieldStep(spec, fs, data)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Current().Primary))

	st := ctrl.State()
	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		def:     def,
		steps:   steps,
		state:   st,
		spinner: s,
		shown:   st.ActiveStep,
		width:   80,
		height:  24,
	}
}

// Mount registers every step as the controller's submitter for its index.
func (m *Model) Mount() (unmount func()) {
	unmounts := make([]func(), len(m.steps))
	for i, s := range m.steps {
		unmounts[i] = m.ctrl.Mount(i, s)
	}
	return func() {
		for _, u := range unmounts {
			u()
		}
	}
}

// State returns the last state the model rendered.
func (m *Model) State() stepform.State { return m.state }

// Interrupted reports whether the user quit with ctrl+c.
func (m *Model) Interrupted() bool { return m.interrupted }

// Init focuses the active step.
func (m *Model) Init() tea.Cmd {
	return m.current().Focus()
}

func (m *Model) current() *FieldStep {
	return m.steps[m.state.ActiveStep]
}

// Update handles messages for the form.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, s := range m.steps {
			s.SetWidth(m.contentWidth() - 4)
		}
		return m, nil

	case advancedMsg:
		m.busy = false
		m.refresh()
		logger.Debug("Advance from step %d: %s", m.shown, msg.outcome)
		if msg.outcome == stepform.OutcomeCompleted {
			return m, tea.Quit
		}
		return m, m.enterStep()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	cmd, _ := m.current().Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.interrupted = true
		if err := m.ctrl.Flush(m.ctx); err != nil {
			logger.Warn("Failed to save progress on quit: %v", err)
		}
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	if m.state.Prompt != nil {
		switch key {
		case "y", "enter":
			m.ctrl.AcceptPrompt()
		case "n", "esc":
			m.ctrl.DismissPrompt()
		default:
			return m, nil
		}
		m.refresh()
		return m, m.enterStep()
	}

	switch key {
	case "enter", "ctrl+n":
		m.busy = true
		return m, tea.Batch(m.advance(), m.spinner.Tick)

	case "esc", "ctrl+p":
		outcome := m.ctrl.Retreat()
		m.refresh()
		if outcome == stepform.OutcomeCancelled {
			return m, tea.Quit
		}
		return m, m.enterStep()
	}

	if n, ok := jumpTarget(key); ok {
		m.ctrl.Jump(n)
		m.refresh()
		return m, m.enterStep()
	}

	cmd, patch := m.current().Update(msg)
	if patch != nil {
		m.ctrl.UpdateData(patch)
		m.refresh()
	}
	return m, cmd
}

// jumpTarget parses alt+1 through alt+9 into a step index.
func jumpTarget(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "alt+")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '9' {
		return 0, false
	}
	return int(rest[0] - '1'), true
}

func (m *Model) advance() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return advancedMsg{outcome: ctrl.Advance(ctx)}
	}
}

func (m *Model) refresh() {
	m.state = m.ctrl.State()
}

// enterStep moves focus when the active step changed and reloads its inputs
// from the form data.
func (m *Model) enterStep() tea.Cmd {
	if m.state.ActiveStep == m.shown {
		return nil
	}
	m.steps[m.shown].Blur()
	m.shown = m.state.ActiveStep
	m.current().Load(m.state.FormData)
	return m.current().Focus()
}

func (m *Model) contentWidth() int {
	return min(max(m.width-10, 60), 100)
}

// View renders the form.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true

	content := m.render()
	if m.state.Prompt != nil {
		content = RenderConfirmation(m.state.Prompt)
	}
	content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)

	canvas := uv.NewScreenBuffer(m.width, m.height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: m.width, Y: m.height},
	})

	view.Content = lipgloss.NewLayer(canvas.Render())
	return view
}

func (m *Model) render() string {
	s := theme.Current().S()
	st := m.state
	width := m.contentWidth()
	active := st.ActiveStep

	var sections []string
	sections = append(sections, s.HeaderTitle.Render(st.Title))
	sections = append(sections, RenderIndicator(st, m.ctrl.CanJump))
	sections = append(sections, RenderProgress(st, width))
	sections = append(sections, "")

	body := []string{
		s.FieldLabel.Render(fmt.Sprintf("Step %d of %d · %s", active+1, st.Total, st.Steps[active].Label)),
		"",
		m.current().View(st.Fields[active]),
	}
	if msg := st.Messages[active]; msg != "" && len(st.Fields[active]) == 0 {
		body = append(body, "", s.StepMessage.Render(msg))
	}
	frame := s.Frame
	if st.Errors[active] {
		frame = s.FrameFocused.BorderForeground(lipgloss.Color(theme.Current().Error))
	}
	sections = append(sections, frame.Width(width).Render(strings.Join(body, "\n")))
	sections = append(sections, "")

	bar := NewButtonBar(NavButtons(active, st.Total, m.busy))
	bar.SetWidth(width)
	sections = append(sections, bar.Render())

	if m.busy {
		sections = append(sections, s.Status.Render(m.spinner.View()+" Submitting…"))
	} else {
		sections = append(sections, renderHints(navHints(active == 0, active == st.Total-1)))
	}
	return strings.Join(sections, "\n")
}

// Run shows the form until it completes, is cancelled, or the user quits.
// The returned state tells which: StatusActive means the user quit early and
// the form can be resumed.
func Run(ctx context.Context, ctrl *stepform.Controller, def *formdef.Definition, fs afero.Fs) (stepform.State, error) {
	m := New(ctx, ctrl, def, fs)
	unmount := m.Mount()
	defer unmount()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return ctrl.State(), fmt.Errorf("form failed: %w", err)
	}
	return ctrl.State(), nil
}
