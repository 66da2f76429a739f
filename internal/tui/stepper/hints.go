package stepper

import (
	"strings"

	"github.com/mark3labs/stepform/internal/tui/theme"
)

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	s := theme.Current().S()
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, s.HintKey.Render(h.key)+" "+s.HintDesc.Render(h.desc))
	}
	return strings.Join(parts, s.HintDesc.Render(" • "))
}

func navHints(firstStep, lastStep bool) []hint {
	next := "next"
	if lastStep {
		next = "finish"
	}
	back := "back"
	if firstStep {
		back = "cancel"
	}
	return []hint{
		{"enter", next},
		{"esc", back},
		{"tab", "field"},
		{"alt+N", "jump"},
		{"ctrl+c", "save & quit"},
	}
}
