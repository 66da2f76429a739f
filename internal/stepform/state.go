package stepform

// Status is where the controller sits in its lifecycle.
type Status int

const (
	StatusActive Status = iota
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Outcome reports what a navigation call did.
type Outcome int

const (
	OutcomeIgnored    Outcome = iota // nothing changed
	OutcomeBlocked                   // submit or validation failed, step marked errored
	OutcomeAdvanced                  // moved to the next step
	OutcomeConfirming                // step passed, waiting on the confirmation prompt
	OutcomeCompleted                 // last step passed, OnComplete was called
	OutcomeRetreated                 // moved back one step
	OutcomeCancelled                 // retreat from the first step, OnCancel was called
	OutcomeJumped                    // moved to a step chosen from the indicator
	OutcomeDismissed                 // confirmation prompt was dismissed
)

var outcomeNames = [...]string{"ignored", "blocked", "advanced", "confirming", "completed", "retreated", "cancelled", "jumped", "dismissed"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// ConfirmPrompt is shown between steps when step confirmation is enabled.
type ConfirmPrompt struct {
	Title       string
	Description string
	ConfirmText string
	CancelText  string
	Target      int // step index accepting the prompt moves to
}

// StepInfo describes one step for a step indicator.
type StepInfo struct {
	Label     string
	Completed bool
	Errored   bool
	Active    bool
}

// State is a read-only copy of the controller's session state.
type State struct {
	Title      string
	Icon       string
	Key        string // storage key, empty when persistence is off
	ActiveStep int
	Total      int
	FormData   Data
	Completed  []int               // ascending
	Errors     map[int]bool        // only errored steps are present
	Messages   map[int]string      // last rejection message per errored step
	Fields     map[int]FieldErrors // per-field messages when the rejection carried them
	Prompt     *ConfirmPrompt
	Status     Status
	Pending    bool // an Advance is awaiting submit or validation
	Steps      []StepInfo
}

// IsCompleted reports whether step i has passed validation this session.
func (s State) IsCompleted(i int) bool {
	for _, c := range s.Completed {
		if c == i {
			return true
		}
	}
	return false
}

// IsLast reports whether the active step is the final one.
func (s State) IsLast() bool {
	return s.ActiveStep == s.Total-1
}
