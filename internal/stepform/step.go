package stepform

import (
	"context"
	"errors"
)

// ErrRejected marks an expected step rejection: the user has something to fix.
// Submitters and validators wrap it; anything else they return is treated as
// an unexpected failure and reported to the notifier.
var ErrRejected = errors.New("step rejected")

// ErrNoSteps is returned by New for an empty step list.
var ErrNoSteps = errors.New("stepform: at least one step is required")

// Reject returns an ErrRejected wrapping a user-facing message.
func Reject(message string) error {
	return &rejection{message: message}
}

type rejection struct{ message string }

func (r *rejection) Error() string        { return r.message }
func (r *rejection) Is(target error) bool { return target == ErrRejected }

// Props is what a step receives each time it is rendered or submitted.
type Props struct {
	Data       Data           // copy of the merged form data
	Update     func(Data)     // the only sanctioned way to change form data
	StepIndex  int            // zero-based
	TotalSteps int            // len(steps)
	Extra      map[string]any // passthrough set with WithStepProps
}

// Component renders a step. The controller never calls it directly; hosts do.
// A component may also implement Submitter.
type Component any

// Submitter lets the controller force a step to flush its local state before
// the wizard advances. The returned patch is merged into the form data before
// validation runs, so validation always sees the step's latest values.
//
// Return an error wrapping ErrRejected to stay on the step.
type Submitter interface {
	Submit(ctx context.Context, props Props) (Data, error)
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(ctx context.Context, props Props) (Data, error)

// Submit calls f.
func (f SubmitFunc) Submit(ctx context.Context, props Props) (Data, error) {
	return f(ctx, props)
}

// ValidateFunc gates forward progress on the accumulated form data.
// nil passes. An error wrapping ErrRejected blocks quietly; any other error
// blocks and is reported.
type ValidateFunc func(ctx context.Context, data Data) error

// Step is one page of the wizard.
type Step struct {
	Label     string
	Component Component
	Validate  ValidateFunc
}
