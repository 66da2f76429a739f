package theme

import (
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	Name   string
	IsDark bool

	// Semantic colors
	Primary   string // lipgloss.Color is a string type
	Secondary string
	Tertiary  string

	// Background hierarchy (dark→light)
	BgCrust    string
	BgBase     string
	BgMantle   string
	BgGutter   string
	BgSurface0 string
	BgSurface1 string
	BgSurface2 string
	BgOverlay  string

	// Foreground hierarchy (dim→bright)
	FgMuted  string
	FgSubtle string
	FgBase   string
	FgBright string

	// Status colors
	Success string
	Warning string
	Error   string
	Info    string

	// Border colors
	BorderMuted   string
	BorderDefault string
	BorderFocused string

	// Lazy-built styles
	styles     *Styles
	stylesOnce sync.Once
}

// S returns the pre-built styles for this theme.
// Styles are lazily initialized on first call.
func (t *Theme) S() *Styles {
	t.stylesOnce.Do(func() {
		t.styles = t.buildStyles()
	})
	return t.styles
}

var (
	registry = map[string]func() *Theme{
		"catppuccin-mocha": NewCatppuccinMocha,
	}

	currentMu sync.RWMutex
	current   = NewCatppuccinMocha()
)

// Current returns the active theme.
func Current() *Theme {
	currentMu.RLock()
	defer currentMu.RUnlock()
	return current
}

// SetCurrent switches the active theme by name. Unknown names are ignored
// and reported as false.
func SetCurrent(name string) bool {
	ctor, ok := registry[name]
	if !ok {
		return false
	}
	currentMu.Lock()
	current = ctor()
	currentMu.Unlock()
	return true
}

// Names lists the registered themes.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

func (t *Theme) buildStyles() *Styles {
	c := lipgloss.Color
	button := lipgloss.NewStyle().Padding(0, 2).MarginLeft(1).MarginRight(1)

	return &Styles{
		HeaderTitle: lipgloss.NewStyle().
			Foreground(c(t.Primary)).
			Bold(true),
		Description: lipgloss.NewStyle().Foreground(c(t.FgMuted)),

		StepDone:    lipgloss.NewStyle().Foreground(c(t.Success)),
		StepError:   lipgloss.NewStyle().Foreground(c(t.Error)).Bold(true),
		StepActive:  lipgloss.NewStyle().Foreground(c(t.Primary)).Bold(true),
		StepPending: lipgloss.NewStyle().Foreground(c(t.BgOverlay)),
		StepSep:     lipgloss.NewStyle().Foreground(c(t.BgSurface2)),

		FieldLabel:   lipgloss.NewStyle().Foreground(c(t.FgSubtle)),
		FieldFocused: lipgloss.NewStyle().Foreground(c(t.Tertiary)).Bold(true),
		FieldError:   lipgloss.NewStyle().Foreground(c(t.Error)),
		FieldValue:   lipgloss.NewStyle().Foreground(c(t.FgBase)),
		StepMessage:  lipgloss.NewStyle().Foreground(c(t.Error)).Italic(true),

		ButtonNormal: button.
			Foreground(c(t.FgBase)).
			Background(c(t.BgSurface0)),
		ButtonDisabled: button.
			Foreground(c(t.BgOverlay)).
			Background(c(t.BgMantle)),
		ButtonFocused: button.
			Foreground(c(t.BgBase)).
			Background(c(t.Tertiary)).
			Bold(true),

		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(c(t.Warning)).
			MarginBottom(1),
		ModalBody: lipgloss.NewStyle().
			Foreground(c(t.FgBase)).
			MarginBottom(1),
		ModalHint: lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		ModalBox: lipgloss.NewStyle().
			Width(50).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.Warning)),

		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.BorderDefault)).
			Padding(0, 1),
		FrameFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(t.BorderFocused)).
			Padding(0, 1),

		HintKey:  lipgloss.NewStyle().Foreground(c(t.Secondary)),
		HintDesc: lipgloss.NewStyle().Foreground(c(t.FgMuted)),
		Status:   lipgloss.NewStyle().Foreground(c(t.Info)),
	}
}
