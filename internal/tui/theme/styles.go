package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style
	Description lipgloss.Style

	// Step indicator
	StepDone    lipgloss.Style
	StepError   lipgloss.Style
	StepActive  lipgloss.Style
	StepPending lipgloss.Style
	StepSep     lipgloss.Style

	// Fields
	FieldLabel   lipgloss.Style
	FieldFocused lipgloss.Style
	FieldError   lipgloss.Style
	FieldValue   lipgloss.Style
	StepMessage  lipgloss.Style

	// Button bar
	ButtonNormal   lipgloss.Style
	ButtonDisabled lipgloss.Style
	ButtonFocused  lipgloss.Style

	// Confirmation modal
	ModalTitle lipgloss.Style
	ModalBody  lipgloss.Style
	ModalHint  lipgloss.Style
	ModalBox   lipgloss.Style

	// Step content frame
	Frame        lipgloss.Style
	FrameFocused lipgloss.Style

	// Hint bar
	HintKey  lipgloss.Style
	HintDesc lipgloss.Style
	Status   lipgloss.Style
}
