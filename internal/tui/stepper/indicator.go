package stepper

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/tui/theme"
)

// Step indicator symbols.
const (
	SymbolDone    = "✓"
	SymbolError   = "✗"
	SymbolActive  = "●"
	SymbolPending = "○"
)

// symbolFor picks a step's symbol. An error outranks everything else so a
// failed step stays visible after the user moves away from it.
func symbolFor(info stepform.StepInfo) string {
	switch {
	case info.Errored:
		return SymbolError
	case info.Active:
		return SymbolActive
	case info.Completed:
		return SymbolDone
	default:
		return SymbolPending
	}
}

// RenderIndicator draws the row of steps. Steps reachable by jumping are
// numbered for the alt+N shortcut.
func RenderIndicator(st stepform.State, canJump func(int) bool) string {
	s := theme.Current().S()
	sep := s.StepSep.Render(" ─ ")

	parts := make([]string, len(st.Steps))
	for i, info := range st.Steps {
		label := fmt.Sprintf("%s %s", symbolFor(info), info.Label)
		if i < 9 && canJump != nil && canJump(i) {
			label = fmt.Sprintf("%d·%s", i+1, label)
		}

		var style lipgloss.Style
		switch symbolFor(info) {
		case SymbolError:
			style = s.StepError
		case SymbolActive:
			style = s.StepActive
		case SymbolDone:
			style = s.StepDone
		default:
			style = s.StepPending
		}
		parts[i] = style.Render(label)
	}
	return strings.Join(parts, sep)
}

// RenderProgress draws a bar of width cells, filled in proportion to the
// completed steps and shaded from the primary to the secondary color.
func RenderProgress(st stepform.State, width int) string {
	if width <= 0 || st.Total == 0 {
		return ""
	}
	t := theme.Current()
	filled := len(st.Completed) * width / st.Total

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i >= filled {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.BgSurface1)).Render("━"))
			continue
		}
		pos := 0.0
		if width > 1 {
			pos = float64(i) / float64(width-1)
		}
		color := theme.InterpolateColor(t.Primary, t.Secondary, pos)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("━"))
	}
	return b.String()
}
