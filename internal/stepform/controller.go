// Package stepform drives multi-step forms: it gates forward progress on
// per-step submit and validation, keeps a single merged form-data bag, and can
// persist in-progress work so an interrupted form resumes where it stopped.
package stepform

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/stepform/internal/logger"
)

// Controller is the stepped form controller. It owns the wizard state; steps
// read it through Props and change it only through Props.Update or UpdateData.
//
// Navigation methods are meant to be driven from one goroutine (the UI loop).
// The internal lock exists because snapshot writes run on timer goroutines.
type Controller struct {
	id    string
	steps []Step
	opts  options

	mu        sync.Mutex
	active    int
	data      Data
	completed map[int]struct{}
	errored   map[int]bool
	messages  map[int]string
	fieldErrs map[int]FieldErrors
	prompt    *ConfirmPrompt
	status    Status
	pending   bool

	mounted  map[int]mountedSubmitter
	mountSeq uint64

	subMu   sync.Mutex
	subs    map[uint64]func(State)
	subSeq  uint64
	persist *persister // nil when persistence is off
}

type mountedSubmitter struct {
	id uint64
	s  Submitter
}

// New creates a controller for steps. When a store is configured the snapshot
// for the resolved key is restored before New returns.
func New(steps []Step, opts ...Option) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}

	o := options{
		ctx:      context.Background(),
		codec:    JSONCodec{},
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notify == nil {
		o.notify = func(step int, err error) {
			logger.Error("Step %d failed: %v", step, err)
		}
	}

	c := &Controller{
		id:        uuid.NewString(),
		steps:     slices.Clone(steps),
		opts:      o,
		data:      Data{},
		completed: make(map[int]struct{}),
		errored:   make(map[int]bool),
		messages:  make(map[int]string),
		fieldErrs: make(map[int]FieldErrors),
		mounted:   make(map[int]mountedSubmitter),
		subs:      make(map[uint64]func(State)),
	}

	if o.store != nil {
		key := o.storageKey
		if key == "" {
			key = KeyForRoute(o.route)
		}
		c.persist = &persister{
			store:    o.store,
			codec:    o.codec,
			key:      key,
			delay:    o.debounce,
			ctx:      o.ctx,
			snapshot: c.snapshot,
		}
		c.restore()
		c.persist.markReady()
	}

	c.data.Merge(o.initialData)
	return c, nil
}

// restore applies a persisted snapshot. Failures leave a fresh state.
func (c *Controller) restore() {
	snap, ok, err := c.persist.load(c.opts.ctx)
	if err != nil {
		logger.Warn("Could not restore snapshot %s, starting fresh: %v", c.persist.key, err)
		return
	}
	if !ok {
		logger.Debug("No snapshot stored under %s", c.persist.key)
		return
	}

	c.data = c.persistable(snap.FormData)
	c.active = clamp(snap.ActiveStep, 0, len(c.steps)-1)
	for _, i := range snap.CompletedSteps {
		if i >= 0 && i < len(c.steps) {
			c.completed[i] = struct{}{}
		}
	}
	logger.Debug("Restored snapshot %s: step %d, %d keys, %d completed steps",
		c.persist.key, c.active, len(c.data), len(c.completed))
}

// snapshot is called by the persister. Terminal controllers write nothing.
func (c *Controller) snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive {
		return Snapshot{}, false
	}
	return Snapshot{
		Version:        snapshotVersion,
		ID:             c.id,
		SavedAt:        time.Now().UTC(),
		FormData:       c.persistable(c.data),
		ActiveStep:     c.active,
		CompletedSteps: c.completedLocked(),
	}, true
}

// persistable returns the part of d that may reach storage.
func (c *Controller) persistable(d Data) Data {
	out := StripFiles(d)
	for _, k := range c.opts.transient {
		delete(out, k)
	}
	return out
}

// Advance submits and validates the active step and, if both pass, moves
// forward, opens the confirmation prompt, or completes the wizard.
// Step failures are reported through state, never returned.
func (c *Controller) Advance(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.status != StatusActive || c.pending || c.prompt != nil {
		c.mu.Unlock()
		return OutcomeIgnored
	}
	step := c.active
	c.pending = true
	sub := c.submitterLocked(step)
	props := c.propsLocked(step)
	c.mu.Unlock()
	c.notify()

	if sub != nil {
		patch, err := safeSubmit(ctx, sub, props)
		if err != nil {
			return c.fail(step, "submit", err)
		}
		if len(patch) > 0 {
			c.merge(patch)
		}
	}

	if validate := c.steps[step].Validate; validate != nil {
		if err := safeValidate(ctx, validate, c.Data()); err != nil {
			return c.fail(step, "validation", err)
		}
	}

	c.mu.Lock()
	c.pending = false
	delete(c.errored, step)
	delete(c.messages, step)
	delete(c.fieldErrs, step)
	c.completed[step] = struct{}{}

	if step < len(c.steps)-1 {
		var outcome Outcome
		if c.opts.confirm {
			c.prompt = c.promptFor(step, step+1)
			outcome = OutcomeConfirming
		} else {
			c.active = step + 1
			outcome = OutcomeAdvanced
		}
		c.mu.Unlock()
		c.changed()
		return outcome
	}

	c.status = StatusCompleted
	final := c.data.Clone()
	c.mu.Unlock()

	logger.Info("Form %q completed with %d keys", c.opts.title, len(final))
	if c.opts.onComplete != nil {
		if err := c.opts.onComplete(ctx, final); err != nil {
			logger.Error("Completion handler failed: %v", err)
			c.opts.notify(step, fmt.Errorf("completing form: %w", err))
		}
	}
	if c.persist != nil {
		_ = c.persist.clear(ctx)
	}
	c.notify()
	return OutcomeCompleted
}

// fail marks step errored after a failed submit or validation.
func (c *Controller) fail(step int, phase string, err error) Outcome {
	if errors.Is(err, ErrRejected) {
		logger.Debug("Step %d rejected during %s: %v", step, phase, err)
	} else {
		logger.Error("Step %d %s failed: %v", step, phase, err)
		c.opts.notify(step, err)
	}

	c.mu.Lock()
	c.pending = false
	c.errored[step] = true
	if err == ErrRejected {
		// bare sentinel carries no message worth showing
		delete(c.messages, step)
	} else {
		c.messages[step] = err.Error()
	}
	var fe FieldErrors
	if errors.As(err, &fe) {
		c.fieldErrs[step] = maps.Clone(fe)
	} else {
		delete(c.fieldErrs, step)
	}
	c.mu.Unlock()
	c.notify()
	return OutcomeBlocked
}

// AcceptPrompt confirms the pending transition.
func (c *Controller) AcceptPrompt() Outcome {
	c.mu.Lock()
	if c.prompt == nil || c.status != StatusActive {
		c.mu.Unlock()
		return OutcomeIgnored
	}
	c.active = c.prompt.Target
	c.prompt = nil
	c.mu.Unlock()
	c.changed()
	return OutcomeAdvanced
}

// DismissPrompt drops the pending transition and stays on the current step.
func (c *Controller) DismissPrompt() Outcome {
	c.mu.Lock()
	if c.prompt == nil {
		c.mu.Unlock()
		return OutcomeIgnored
	}
	c.prompt = nil
	c.mu.Unlock()
	c.notify()
	return OutcomeDismissed
}

// Retreat moves back one step without re-validating. From the first step it
// cancels the wizard: OnCancel runs and the snapshot is removed.
func (c *Controller) Retreat() Outcome {
	c.mu.Lock()
	if c.status != StatusActive || c.pending || c.prompt != nil {
		c.mu.Unlock()
		return OutcomeIgnored
	}

	if c.active == 0 {
		c.status = StatusCancelled
		c.mu.Unlock()

		logger.Info("Form %q cancelled", c.opts.title)
		if c.opts.onCancel != nil {
			c.opts.onCancel()
		}
		if c.persist != nil {
			_ = c.persist.clear(c.opts.ctx)
		}
		c.notify()
		return OutcomeCancelled
	}

	c.active--
	c.mu.Unlock()
	c.changed()
	return OutcomeRetreated
}

// CanJump reports whether Jump(target) would move.
func (c *Controller) CanJump(target int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canJumpLocked(target)
}

func (c *Controller) canJumpLocked(target int) bool {
	if c.status != StatusActive || c.pending || c.prompt != nil {
		return false
	}
	if target < 0 || target >= len(c.steps) || target == c.active {
		return false
	}
	if target < c.active {
		return true
	}
	if _, ok := c.completed[target]; ok {
		return true
	}
	_, activeDone := c.completed[c.active]
	return target == c.active+1 && activeDone
}

// Jump moves to target if it is an earlier step, a completed step, or the
// next step after a completed active step. Other targets are ignored.
func (c *Controller) Jump(target int) Outcome {
	c.mu.Lock()
	if !c.canJumpLocked(target) {
		c.mu.Unlock()
		return OutcomeIgnored
	}
	c.active = target
	c.mu.Unlock()
	c.changed()
	return OutcomeJumped
}

// UpdateData shallow-merges patch into the form data.
func (c *Controller) UpdateData(patch Data) {
	if len(patch) == 0 {
		return
	}
	c.merge(patch)
}

func (c *Controller) merge(patch Data) {
	c.mu.Lock()
	c.data.Merge(patch)
	c.mu.Unlock()
	c.changed()
}

// Reset returns to the first step with only the initial data, forgetting
// completed steps and errors and removing the snapshot.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.active = 0
	c.data = c.opts.initialData.Clone()
	c.completed = make(map[int]struct{})
	c.errored = make(map[int]bool)
	c.messages = make(map[int]string)
	c.fieldErrs = make(map[int]FieldErrors)
	c.prompt = nil
	c.pending = false
	c.status = StatusActive
	c.mu.Unlock()

	if c.persist != nil {
		_ = c.persist.clear(c.opts.ctx)
	}
	c.notify()
}

// Mount registers a submitter for step index, taking priority over a
// Submitter implemented by the step component. Call the returned function
// when the step goes away.
func (c *Controller) Mount(index int, s Submitter) (unmount func()) {
	c.mu.Lock()
	c.mountSeq++
	id := c.mountSeq
	c.mounted[index] = mountedSubmitter{id: id, s: s}
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if m, ok := c.mounted[index]; ok && m.id == id {
			delete(c.mounted, index)
		}
	}
}

func (c *Controller) submitterLocked(step int) Submitter {
	if m, ok := c.mounted[step]; ok {
		return m.s
	}
	if s, ok := c.steps[step].Component.(Submitter); ok {
		return s
	}
	return nil
}

// Props returns the props for step index.
func (c *Controller) Props(index int) Props {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.propsLocked(index)
}

func (c *Controller) propsLocked(index int) Props {
	return Props{
		Data:       c.data.Clone(),
		Update:     c.UpdateData,
		StepIndex:  index,
		TotalSteps: len(c.steps),
		Extra:      c.opts.stepProps,
	}
}

func (c *Controller) promptFor(from, to int) *ConfirmPrompt {
	return &ConfirmPrompt{
		Title:       "Continue to the next step?",
		Description: fmt.Sprintf("%q is complete. Continue to %q (step %d of %d)?", c.steps[from].Label, c.steps[to].Label, to+1, len(c.steps)),
		ConfirmText: "Continue",
		CancelText:  "Stay",
		Target:      to,
	}
}

// Subscribe calls fn with the new state after every change. fn runs on the
// goroutine that made the change and must not block.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.subMu.Lock()
	c.subSeq++
	id := c.subSeq
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// changed notifies subscribers and schedules a snapshot write.
func (c *Controller) changed() {
	if c.persist != nil {
		c.persist.schedule()
	}
	c.notify()
}

func (c *Controller) notify() {
	c.subMu.Lock()
	if len(c.subs) == 0 {
		c.subMu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	st := c.State()
	for _, fn := range fns {
		fn(st)
	}
}

// Flush writes the latest state now. Call it when the process is about to exit.
func (c *Controller) Flush(ctx context.Context) error {
	if c.persist == nil {
		return nil
	}
	return c.persist.flush(ctx)
}

// Close stops the debounce timer and flushes.
func (c *Controller) Close(ctx context.Context) error {
	return c.Flush(ctx)
}

// State returns a copy of the session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := State{
		Title:      c.opts.title,
		Icon:       c.opts.icon,
		Key:        c.Key(),
		ActiveStep: c.active,
		Total:      len(c.steps),
		FormData:   c.data.Clone(),
		Completed:  c.completedLocked(),
		Errors:     make(map[int]bool, len(c.errored)),
		Messages:   make(map[int]string, len(c.messages)),
		Fields:     make(map[int]FieldErrors, len(c.fieldErrs)),
		Status:     c.status,
		Pending:    c.pending,
		Steps:      make([]StepInfo, len(c.steps)),
	}
	for i, v := range c.errored {
		st.Errors[i] = v
	}
	for i, m := range c.messages {
		st.Messages[i] = m
	}
	for i, fe := range c.fieldErrs {
		st.Fields[i] = maps.Clone(fe)
	}
	if c.prompt != nil {
		p := *c.prompt
		st.Prompt = &p
	}
	for i, s := range c.steps {
		_, done := c.completed[i]
		st.Steps[i] = StepInfo{
			Label:     s.Label,
			Completed: done,
			Errored:   c.errored[i],
			Active:    i == c.active,
		}
	}
	return st
}

// Data returns a copy of the merged form data.
func (c *Controller) Data() Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

// Steps returns the step definitions.
func (c *Controller) Steps() []Step {
	return slices.Clone(c.steps)
}

// Title returns the wizard title.
func (c *Controller) Title() string { return c.opts.title }

// Icon returns the wizard icon name.
func (c *Controller) Icon() string { return c.opts.icon }

// Key returns the storage key, or "" when persistence is off.
func (c *Controller) Key() string {
	if c.persist == nil {
		return ""
	}
	return c.persist.key
}

func (c *Controller) completedLocked() []int {
	out := make([]int, 0, len(c.completed))
	for i := range c.completed {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// safeSubmit turns a panicking step into an error, the same as a throw.
func safeSubmit(ctx context.Context, s Submitter, props Props) (patch Data, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit panicked: %v", r)
		}
	}()
	return s.Submit(ctx, props)
}

func safeValidate(ctx context.Context, fn ValidateFunc, data Data) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validation panicked: %v", r)
		}
	}()
	return fn(ctx, data)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
