// Package forms runs the create/update workflow for entity forms: validate a
// draft, call the remote operation, invalidate cached reads, then hand off to
// the success callback. Open forms live in a session-scoped Registry.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JaimeStill/agent-meet/internal/remote"
	"github.com/JaimeStill/agent-meet/pkg/validation"
)

var (
	ErrInFlight = errors.New("submission in progress")
	ErrClosed   = errors.New("form is closed")
)

// State is the submission state of a form. StateSuccess and StateFailed are
// reported by Submit; a failed form returns to StateIdle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures one form instance. A non-empty InitialID puts the form
// in edit mode.
type Options[D any] struct {
	InitialID string
	Initial   D
	// OnSuccess receives the created id, or "" after an update.
	OnSuccess func(id string)
	OnCancel  func()
	// Notify receives the message of a failed remote call.
	Notify func(message string)
}

// Binding connects a form to its validator, remote operations and cache keys.
type Binding[D, V any] struct {
	Validate func(D) (V, validation.Errors)
	Create   func(ctx context.Context, v V) (string, error)
	Update   func(ctx context.Context, id string, v V) error
	// Invalidate marks affected reads stale. id is empty after a create.
	Invalidate func(ctx context.Context, id string, v V) error
}

// Outcome describes what a Submit did.
type Outcome struct {
	State State
	// ID is the created id after a successful create.
	ID      string
	Errors  validation.Errors
	Message string
	Err     error
}

// Form is the state machine behind one open entity form.
type Form[D, V any] struct {
	binding Binding[D, V]
	opts    Options[D]
	now     func() time.Time

	mu      sync.Mutex
	state   State
	draft   D
	errs    validation.Errors
	message string
	closed  bool
	touched time.Time
}

func New[D, V any](b Binding[D, V], opts Options[D]) *Form[D, V] {
	f := &Form[D, V]{
		binding: b,
		opts:    opts,
		now:     time.Now,
		draft:   opts.Initial,
	}
	f.touched = f.now()
	return f
}

// Editing reports whether the form updates an existing record.
func (f *Form[D, V]) Editing() bool {
	return f.opts.InitialID != ""
}

func (f *Form[D, V]) ID() string {
	return f.opts.InitialID
}

func (f *Form[D, V]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns the values last submitted or set.
func (f *Form[D, V]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns the field errors of the last submit.
func (f *Form[D, V]) Errors() validation.Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs
}

// Message returns the last remote failure message.
func (f *Form[D, V]) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Form[D, V]) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// LastActive returns the time of the last interaction.
func (f *Form[D, V]) LastActive() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// SetDraft stores values without validating them.
func (f *Form[D, V]) SetDraft(d D) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.usable(); err != nil {
		return err
	}
	f.draft = d
	f.touched = f.now()
	return nil
}

// Submit validates d and, when valid, performs the create or update. A second
// Submit while one is in flight returns ErrInFlight without a remote call.
func (f *Form[D, V]) Submit(ctx context.Context, d D) (Outcome, error) {
	f.mu.Lock()
	if err := f.usable(); err != nil {
		f.mu.Unlock()
		return Outcome{State: f.state}, err
	}

	f.draft = d
	f.touched = f.now()

	v, errs := f.binding.Validate(d)
	if !errs.Empty() {
		f.state = StateIdle
		f.errs = errs
		f.mu.Unlock()
		return Outcome{State: StateIdle, Errors: errs}, nil
	}

	f.state = StateSubmitting
	f.errs = nil
	f.message = ""
	f.mu.Unlock()

	id, err := f.mutate(ctx, v)
	if err != nil {
		return f.fail(err), nil
	}

	if err := f.binding.Invalidate(ctx, f.opts.InitialID, v); err != nil {
		f.finish()
		return Outcome{State: StateSuccess, ID: id}, fmt.Errorf("invalidate queries: %w", err)
	}

	f.finish()
	if f.opts.OnSuccess != nil {
		f.opts.OnSuccess(id)
	}
	return Outcome{State: StateSuccess, ID: id}, nil
}

// Cancel discards the draft and closes the form. It is refused while a
// submission is in flight.
func (f *Form[D, V]) Cancel() error {
	f.mu.Lock()
	if err := f.usable(); err != nil {
		f.mu.Unlock()
		return err
	}

	var zero D
	f.draft = zero
	f.errs = nil
	f.closed = true
	f.mu.Unlock()

	if f.opts.OnCancel != nil {
		f.opts.OnCancel()
	}
	return nil
}

func (f *Form[D, V]) usable() error {
	if f.closed {
		return ErrClosed
	}
	if f.state == StateSubmitting {
		return ErrInFlight
	}
	return nil
}

func (f *Form[D, V]) mutate(ctx context.Context, v V) (string, error) {
	if f.Editing() {
		return "", f.binding.Update(ctx, f.opts.InitialID, v)
	}
	return f.binding.Create(ctx, v)
}

func (f *Form[D, V]) fail(err error) Outcome {
	f.mu.Lock()
	f.touched = f.now()

	var re *remote.Error
	if errors.As(err, &re) && len(re.Fields) > 0 {
		f.state = StateIdle
		f.errs = validation.Errors(re.Fields)
		out := Outcome{State: StateIdle, Errors: f.errs, Err: err}
		f.mu.Unlock()
		return out
	}

	// The form rests idle after a failure; the message stays until the next
	// submit.
	f.state = StateIdle
	f.message = remote.Message(err)
	out := Outcome{State: StateFailed, Message: f.message, Err: err}
	f.mu.Unlock()

	if f.opts.Notify != nil {
		f.opts.Notify(out.Message)
	}
	return out
}

func (f *Form[D, V]) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero D
	f.state = StateSuccess
	f.draft = zero
	f.errs = nil
	f.closed = true
}
