package testfixtures

import (
	"strings"
	"testing"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
	"github.com/mark3labs/stepform/internal/formdef"
	"github.com/stretchr/testify/require"
)

// Initialize test environment
func init() {
	// Ascii profile strips colors so rendered text compares the same everywhere
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// Conservative timeout for Eventually checks (CI compatibility)
const (
	DefaultWaitDuration  = 5 * time.Second
	DefaultCheckInterval = 10 * time.Millisecond
)

// RenderCanvas draws content onto a screen buffer of the given size and
// returns the plain text, one line per row with trailing blanks trimmed.
func RenderCanvas(width, height int, content string) string {
	canvas := uv.NewScreenBuffer(width, height)
	uv.NewStyledString(content).Draw(canvas, uv.Rectangle{
		Min: uv.Position{X: 0, Y: 0},
		Max: uv.Position{X: width, Y: height},
	})

	lines := strings.Split(ansi.Strip(canvas.Render()), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \r")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// ParseForm parses a definition and fails the test on error.
func ParseForm(t *testing.T, yml string) *formdef.Definition {
	t.Helper()
	def, err := formdef.Parse([]byte(yml))
	require.NoError(t, err)
	return def
}
