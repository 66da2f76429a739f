package stepper

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// ButtonState represents the visual state of a button.
type ButtonState int

const (
	ButtonNormal   ButtonState = iota // Normal state (enabled)
	ButtonDisabled                    // Disabled state (grayed out)
	ButtonFocused                     // Focused/highlighted state
)

// Button represents a single button in the button bar.
type Button struct {
	Label string
	State ButtonState
}

// ButtonBar lays out a row of buttons, centered in its width.
type ButtonBar struct {
	buttons []Button
	width   int
}

// NewButtonBar creates a new button bar with the given buttons.
func NewButtonBar(buttons []Button) *ButtonBar {
	return &ButtonBar{
		buttons: buttons,
		width:   60,
	}
}

// SetWidth updates the width for the button bar.
func (b *ButtonBar) SetWidth(width int) {
	b.width = width
}

// Render renders the button bar.
func (b *ButtonBar) Render() string {
	if len(b.buttons) == 0 {
		return ""
	}

	s := theme.Current().S()
	rendered := make([]string, 0, len(b.buttons))
	for _, btn := range b.buttons {
		switch btn.State {
		case ButtonDisabled:
			rendered = append(rendered, s.ButtonDisabled.Render(btn.Label))
		case ButtonFocused:
			rendered = append(rendered, s.ButtonFocused.Render(btn.Label))
		default:
			rendered = append(rendered, s.ButtonNormal.Render(btn.Label))
		}
	}

	return lipgloss.PlaceHorizontal(b.width, lipgloss.Center, strings.Join(rendered, ""))
}

// NavButtons returns the Back/Cancel and Next/Finish pair for a step.
// On the first step the back button reads Cancel, since retreating there
// abandons the form. busy disables both while a submit is in flight.
func NavButtons(step, total int, busy bool) []Button {
	back := Button{Label: "← Back", State: ButtonNormal}
	if step == 0 {
		back.Label = "Cancel"
	}

	next := Button{Label: "Next →", State: ButtonFocused}
	if step == total-1 {
		next.Label = "Finish"
	}

	if busy {
		back.State = ButtonDisabled
		next.State = ButtonDisabled
	}
	return []Button{back, next}
}
