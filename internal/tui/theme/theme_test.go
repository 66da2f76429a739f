package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatppuccinMocha_ColorPalette(t *testing.T) {
	th := NewCatppuccinMocha()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Primary (Mauve)", th.Primary, "#cba6f7"},
		{"Secondary (Blue)", th.Secondary, "#89b4fa"},
		{"Tertiary (Lavender)", th.Tertiary, "#b4befe"},
		{"BgCrust", th.BgCrust, "#11111b"},
		{"BgBase", th.BgBase, "#1e1e2e"},
		{"BgOverlay", th.BgOverlay, "#6c7086"},
		{"FgMuted (Subtext0)", th.FgMuted, "#a6adc8"},
		{"FgBase (Text)", th.FgBase, "#cdd6f4"},
		{"Success (Green)", th.Success, "#a6e3a1"},
		{"Warning (Yellow)", th.Warning, "#f9e2af"},
		{"Error (Red)", th.Error, "#f38ba8"},
		{"Info (Sky)", th.Info, "#89dceb"},
		{"BorderDefault (Surface2)", th.BorderDefault, "#585b70"},
		{"BorderFocused (Mauve)", th.BorderFocused, "#cba6f7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.got, tt.name)
	}
}

func TestCurrent(t *testing.T) {
	th := Current()
	require.NotNil(t, th)
	assert.Equal(t, "catppuccin-mocha", th.Name)
	assert.Contains(t, Names(), "catppuccin-mocha")

	assert.False(t, SetCurrent("solarized"))
	assert.Same(t, th, Current(), "unknown names leave the theme alone")

	assert.True(t, SetCurrent("catppuccin-mocha"))
	assert.Equal(t, "catppuccin-mocha", Current().Name)
}

func TestStyles_Lazy(t *testing.T) {
	th := NewCatppuccinMocha()
	s := th.S()
	require.NotNil(t, s)
	assert.Same(t, s, th.S())
	assert.Contains(t, s.StepDone.Render("✓"), "✓")
	assert.Contains(t, s.ButtonFocused.Render("Next"), "Next")
}

func TestInterpolateColor(t *testing.T) {
	tests := []struct {
		a, b string
		pos  float64
		want string
	}{
		{"#000000", "#ffffff", 0, "#000000"},
		{"#000000", "#ffffff", 1, "#ffffff"},
		{"#000000", "#ffffff", 0.5, "#7f7f7f"},
		{"#cba6f7", "#89b4fa", 0, "#cba6f7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InterpolateColor(tt.a, tt.b, tt.pos))
	}

	r, g, b := ParseHexColor("bad")
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}

func TestApplyGradient(t *testing.T) {
	assert.Empty(t, ApplyGradient("", "#000000", "#ffffff"))

	out := ApplyGradient("a b", "#000000", "#ffffff")
	assert.Contains(t, out, "a")
	assert.Contains(t, out, " ")
	assert.Contains(t, out, "b")
}
