package stepper

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/tui/theme"
	"github.com/spf13/afero"
)

// FieldStep renders one form step as a column of inputs. It implements
// stepform.Submitter: Submit turns the current input text into a data patch.
//
// Submit runs on the goroutine that calls Controller.Advance, so the raw text
// it reads is mirrored under mu instead of read from the input models.
type FieldStep struct {
	spec   formdef.StepSpec
	fs     afero.Fs
	inputs []textinput.Model
	focus  int
	width  int

	mu  sync.Mutex
	raw map[string]string
}

// NewFieldStep builds inputs for spec. Values in data win over field defaults.
func NewFieldStep(spec formdef.StepSpec, fs afero.Fs, data stepform.Data) *FieldStep {
	s := &FieldStep{
		spec:  spec,
		fs:    fs,
		width: 60,
		raw:   make(map[string]string, len(spec.Fields)),
	}
	for i, f := range spec.Fields {
		s.inputs = append(s.inputs, newInput(f))
		if f.Default != nil {
			s.inputs[i].SetValue(formdef.Format(f.Default))
			s.sync(i)
		}
	}
	s.Load(data)
	return s
}

func newInput(f formdef.Field) textinput.Model {
	t := theme.Current()

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = f.Placeholder
	switch f.Kind() {
	case formdef.TypePassword:
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	case formdef.TypeFile:
		if ti.Placeholder == "" {
			ti.Placeholder = "path/to/file"
		}
	case formdef.TypeSelect:
		ti.Placeholder = strings.Join(f.Options, " / ")
	}
	ti.SetStyles(textinput.Styles{
		Focused: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgBase)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tertiary)),
		},
		Blurred: textinput.StyleState{
			Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.FgMuted)),
			Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
			Prompt:      lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgOverlay)),
		},
		Cursor: textinput.CursorStyle{
			Color: lipgloss.Color(t.Primary),
			Shape: tea.CursorBar,
			Blink: true,
		},
	})
	ti.SetWidth(50)
	return ti
}

// Spec returns the step definition.
func (s *FieldStep) Spec() formdef.StepSpec { return s.spec }

// Load copies values for this step's fields out of data. Fields without a
// value keep what was typed.
func (s *FieldStep) Load(data stepform.Data) {
	for i, f := range s.spec.Fields {
		v, ok := data[f.Name]
		if !ok {
			continue
		}
		s.inputs[i].SetValue(formdef.Format(v))
		s.sync(i)
	}
}

// Value returns the raw text of the named field.
func (s *FieldStep) Value(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw[name]
}

// Focused returns the focused field.
func (s *FieldStep) Focused() formdef.Field {
	if len(s.spec.Fields) == 0 {
		return formdef.Field{}
	}
	return s.spec.Fields[s.focus]
}

// Focus focuses the first field.
func (s *FieldStep) Focus() tea.Cmd {
	return s.focusAt(0)
}

// Blur removes focus from every input.
func (s *FieldStep) Blur() {
	for i := range s.inputs {
		s.inputs[i].Blur()
	}
}

func (s *FieldStep) focusAt(i int) tea.Cmd {
	if len(s.inputs) == 0 {
		return nil
	}
	s.Blur()
	s.focus = (i + len(s.inputs)) % len(s.inputs)
	return s.inputs[s.focus].Focus()
}

// SetWidth updates the width available to the inputs.
func (s *FieldStep) SetWidth(width int) {
	s.width = width
	for i := range s.inputs {
		s.inputs[i].SetWidth(max(10, width-4))
	}
}

// Update handles field navigation and forwards typing to the focused input.
// It returns the patch to sync live, which is nil when nothing changed.
func (s *FieldStep) Update(msg tea.Msg) (tea.Cmd, stepform.Data) {
	if len(s.inputs) == 0 {
		return nil, nil
	}

	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "tab", "down":
			return s.focusAt(s.focus + 1), nil
		case "shift+tab", "up":
			return s.focusAt(s.focus - 1), nil
		}
		if f := s.Focused(); f.Kind() == formdef.TypeSelect {
			switch key.String() {
			case "left":
				return nil, s.cycle(-1)
			case "right", "space":
				return nil, s.cycle(1)
			}
		}
	}

	before := s.inputs[s.focus].Value()
	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	if s.inputs[s.focus].Value() == before {
		return cmd, nil
	}
	s.sync(s.focus)
	return cmd, s.livePatch(s.focus)
}

// cycle moves a select field to the next option.
func (s *FieldStep) cycle(delta int) stepform.Data {
	f := s.spec.Fields[s.focus]
	if len(f.Options) == 0 {
		return nil
	}
	i := slices.Index(f.Options, s.inputs[s.focus].Value())
	if i < 0 && delta < 0 {
		i = 0
	}
	i = (i + delta + len(f.Options)) % len(f.Options)
	s.inputs[s.focus].SetValue(f.Options[i])
	s.sync(s.focus)
	return s.livePatch(s.focus)
}

func (s *FieldStep) sync(i int) {
	s.mu.Lock()
	s.raw[s.spec.Fields[i].Name] = s.inputs[i].Value()
	s.mu.Unlock()
}

// livePatch returns the value to merge while the user types. Secrets and
// file paths only reach the form data on submit; input that does not
// coerce yet is skipped.
func (s *FieldStep) livePatch(i int) stepform.Data {
	f := s.spec.Fields[i]
	switch f.Kind() {
	case formdef.TypePassword, formdef.TypeFile:
		return nil
	}
	v, err := formdef.Coerce(s.fs, f, s.Value(f.Name))
	if err != nil {
		return nil
	}
	return stepform.Data{f.Name: v}
}

// Submit coerces every field. Values that coerce are merged even when others
// fail, so nothing typed is lost while the user fixes the rest.
func (s *FieldStep) Submit(ctx context.Context, props stepform.Props) (stepform.Data, error) {
	patch := stepform.Data{}
	errs := stepform.FieldErrors{}

	for _, f := range s.spec.Fields {
		v, err := formdef.Coerce(s.fs, f, s.Value(f.Name))
		switch {
		case err == nil:
			patch[f.Name] = v
		case errors.Is(err, stepform.ErrRejected):
			errs[f.Name] = err.Error()
		default:
			return nil, err
		}
	}

	if len(errs) > 0 {
		if props.Update != nil {
			props.Update(patch)
		}
		return nil, errs
	}
	return patch, nil
}

// View renders the step's fields with inline errors.
func (s *FieldStep) View(fieldErrs stepform.FieldErrors) string {
	st := theme.Current().S()

	var b strings.Builder
	if s.spec.Description != "" {
		b.WriteString(st.Description.Render(s.spec.Description))
		b.WriteString("\n\n")
	}
	for i, f := range s.spec.Fields {
		label := f.DisplayLabel()
		if f.Required() {
			label += " *"
		}
		if i == s.focus {
			b.WriteString(st.FieldFocused.Render("› " + label))
		} else {
			b.WriteString(st.FieldLabel.Render("  " + label))
		}
		b.WriteString("\n  ")
		b.WriteString(s.inputs[i].View())
		if f.Kind() == formdef.TypeSelect && i == s.focus {
			b.WriteString(st.Description.Render("  ←/→"))
		}
		b.WriteString("\n")
		if msg, ok := fieldErrs[f.Name]; ok {
			b.WriteString(st.FieldError.Render("  ✗ " + f.DisplayLabel() + " " + msg))
			b.WriteString("\n")
		}
		if i < len(s.spec.Fields)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
