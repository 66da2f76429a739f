package stepper

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// RenderConfirmation renders the step-transition prompt.
func RenderConfirmation(p *stepform.ConfirmPrompt) string {
	if p == nil {
		return ""
	}
	s := theme.Current().S()

	hint := "Press Y to " + strings.ToLower(p.ConfirmText) + ", N or ESC to " + strings.ToLower(p.CancelText)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		s.ModalTitle.Render("⚠ "+p.Title),
		s.ModalBody.Render(p.Description),
		"",
		s.ModalHint.Render(hint),
	)
	return s.ModalBox.Render(content)
}
