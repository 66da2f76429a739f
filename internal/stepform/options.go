package stepform

import (
	"context"
	"time"

	"github.com/mark3labs/stepform/internal/storage"
)

// DefaultDebounce is how long the controller waits after the last change
// before writing a snapshot.
const DefaultDebounce = 300 * time.Millisecond

// CompleteFunc receives the merged form data when the last step passes.
// It owns the data from then on. A returned error is reported to the notifier;
// the wizard is completed either way.
type CompleteFunc func(ctx context.Context, data Data) error

// NotifyFunc receives unexpected submit, validation and completion errors.
type NotifyFunc func(step int, err error)

type options struct {
	ctx         context.Context
	initialData Data
	title       string
	icon        string
	stepProps   map[string]any
	confirm     bool
	store       storage.Store
	storageKey  string
	route       string
	codec       Codec
	debounce    time.Duration
	onComplete  CompleteFunc
	onCancel    func()
	notify      NotifyFunc
	transient   []string
}

// Option configures a Controller.
type Option func(*options)

// WithContext sets the context used for storage calls made outside Advance.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithInitialData seeds the form. Seeded keys win over restored ones.
func WithInitialData(d Data) Option {
	return func(o *options) { o.initialData = d.Clone() }
}

// WithTitle sets the wizard title.
func WithTitle(title string) Option {
	return func(o *options) { o.title = title }
}

// WithIcon sets an icon name hosts may render next to the title.
func WithIcon(icon string) Option {
	return func(o *options) { o.icon = icon }
}

// WithStepProps passes extra values to every step through Props.Extra.
func WithStepProps(extra map[string]any) Option {
	return func(o *options) { o.stepProps = extra }
}

// WithStepConfirmation asks for confirmation before each forward move.
func WithStepConfirmation(enabled bool) Option {
	return func(o *options) { o.confirm = enabled }
}

// WithStorage enables durable persistence through s.
func WithStorage(s storage.Store) Option {
	return func(o *options) { o.store = s }
}

// WithStorageKey overrides the key derived from the route.
func WithStorageKey(key string) Option {
	return func(o *options) { o.storageKey = key }
}

// WithRoute sets the route path the default storage key is derived from.
func WithRoute(route string) Option {
	return func(o *options) { o.route = route }
}

// WithCodec selects the snapshot encoding. JSON is the default.
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithDebounce sets the quiet period before a snapshot write. Zero writes
// on every change.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithOnComplete sets the completion handoff.
func WithOnComplete(fn CompleteFunc) Option {
	return func(o *options) { o.onComplete = fn }
}

// WithOnCancel sets the handler called when the user backs out of the first step.
func WithOnCancel(fn func()) Option {
	return func(o *options) { o.onCancel = fn }
}

// WithTransientKeys keeps the named keys out of snapshots, like file values.
// Use it for secrets such as passwords; they are lost across a resume.
func WithTransientKeys(keys ...string) Option {
	return func(o *options) { o.transient = append(o.transient, keys...) }
}

// WithNotifier routes unexpected step errors to an operator-visible channel.
func WithNotifier(fn NotifyFunc) Option {
	return func(o *options) { o.notify = fn }
}
