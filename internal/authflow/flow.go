package authflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Flow is the controller behind a login/register form. It is safe for
// concurrent use.
type Flow struct {
	auth     Authenticator
	accounts AccountCreator
	notify   Notifier
	logger   *slog.Logger
	validate bool

	mu        sync.Mutex
	variant   Variant
	loading   bool
	listeners map[int]func(State)
	nextID    int
}

// Option configures a Flow.
type Option func(*Flow)

// WithoutValidation skips client-side field checks so every submission
// reaches the collaborators.
func WithoutValidation() Option {
	return func(f *Flow) { f.validate = false }
}

// WithLogger sets the logger used for failed requests.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) { f.logger = logger }
}

// WithVariant sets the starting variant. The default is Login.
func WithVariant(v Variant) Option {
	return func(f *Flow) { f.variant = v }
}

// New creates a Flow. A nil notifier discards notifications.
func New(auth Authenticator, accounts AccountCreator, notify Notifier, opts ...Option) *Flow {
	if notify == nil {
		notify = NotifierFuncs{}
	}
	f := &Flow{
		auth:      auth,
		accounts:  accounts,
		notify:    notify,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		validate:  true,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns a snapshot of the form state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Flow) stateLocked() State {
	return State{Variant: f.variant, Loading: f.loading}
}

// Subscribe registers fn to receive every state change and returns a func
// that removes it. fn runs on the goroutine that caused the change and must
// not block.
func (f *Flow) Subscribe(fn func(State)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// set applies mutate under the lock and then publishes the new state to
// listeners outside it.
func (f *Flow) set(mutate func()) State {
	f.mu.Lock()
	mutate()
	st, listeners := f.snapshotLocked()
	f.mu.Unlock()

	emit(st, listeners)
	return st
}

func (f *Flow) snapshotLocked() (State, []func(State)) {
	listeners := make([]func(State), 0, len(f.listeners))
	for _, fn := range f.listeners {
		listeners = append(listeners, fn)
	}
	return f.stateLocked(), listeners
}

func emit(st State, listeners []func(State)) {
	for _, fn := range listeners {
		fn(st)
	}
}

// ToggleVariant flips between Login and Register and returns the new variant.
func (f *Flow) ToggleVariant() Variant {
	return f.set(func() { f.variant = f.variant.Toggle() }).Variant
}

// begin marks the flow as loading and returns the variant in effect plus a
// release func that clears loading. release is safe to call more than once.
// check, when non-nil, runs under the lock against that same variant; an
// error from it leaves the flow idle.
func (f *Flow) begin(check func(Variant) error) (Variant, func(), error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return 0, nil, ErrBusy
	}
	if check != nil {
		if err := check(f.variant); err != nil {
			f.mu.Unlock()
			return 0, nil, err
		}
	}
	f.loading = true
	variant := f.variant
	st, listeners := f.snapshotLocked()
	f.mu.Unlock()
	emit(st, listeners)

	var once sync.Once
	release := func() {
		once.Do(func() {
			f.set(func() { f.loading = false })
		})
	}
	return variant, release, nil
}

// Submit sends creds to the collaborator for the active variant. It returns
// nil on success, *ValidationError when a field check fails, ErrBusy while
// another request runs, ErrAuthRejected for refused sign-ins and the
// collaborator's error otherwise. Every outcome except ErrBusy is also
// reported through the Notifier.
func (f *Flow) Submit(ctx context.Context, creds Credentials) (err error) {
	var check func(Variant) error
	if f.validate {
		check = func(v Variant) error { return validate(v, creds) }
	}

	variant, release, err := f.begin(check)
	if errors.Is(err, ErrBusy) {
		return err
	}
	if err != nil {
		f.notify.Error(validationMessage(err))
		return err
	}
	defer release()
	defer recoverInto(&err, f.notify)

	if variant == Register {
		return f.register(ctx, creds)
	}
	return f.login(ctx, creds)
}

func (f *Flow) login(ctx context.Context, creds Credentials) error {
	res, err := f.auth.SignInCredentials(ctx, creds.Email, creds.Password)
	if err != nil {
		f.logger.ErrorContext(ctx, "credential sign-in failed", "error", err)
		f.notify.Error(MsgGenericFailure)
		return err
	}
	if !res.Succeeded() {
		f.notify.Error(MsgInvalidCredentials)
		if res.Error != "" {
			return fmt.Errorf("%w: %s", ErrAuthRejected, res.Error)
		}
		return ErrAuthRejected
	}
	f.notify.Success(MsgLoggedIn)
	return nil
}

func (f *Flow) register(ctx context.Context, creds Credentials) error {
	if _, err := f.accounts.CreateAccount(ctx, creds); err != nil {
		f.logger.ErrorContext(ctx, "account creation failed", "error", err)
		f.notify.Error(serverMessage(err))
		return err
	}
	f.notify.Success(MsgAccountCreated)
	return nil
}

// SocialAction starts a federated sign-in with provider. The result is
// returned so the caller can send the user to result.URL.
func (f *Flow) SocialAction(ctx context.Context, provider string) (res SignInResult, err error) {
	_, release, err := f.begin(nil)
	if err != nil {
		return SignInResult{}, err
	}
	defer release()
	defer recoverInto(&err, f.notify)

	res, err = f.auth.SignInFederated(ctx, provider)
	if err != nil {
		f.logger.ErrorContext(ctx, "federated sign-in failed", "provider", provider, "error", err)
		f.notify.Error(MsgSocialFailure)
		return res, err
	}
	if !res.Succeeded() {
		f.notify.Error(MsgSocialFailure)
		return res, fmt.Errorf("%w: %s", ErrAuthRejected, res.Error)
	}
	f.notify.Success(MsgLoggedIn)
	return res, nil
}

// serverMessage picks the text shown for a failed registration.
func serverMessage(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return MsgGenericFailure
}

func validationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return MsgGenericFailure
}

// recoverInto turns a panic in a collaborator into an error so the deferred
// release still runs and the caller sees a normal failure.
func recoverInto(err *error, notify Notifier) {
	if r := recover(); r != nil {
		notify.Error(MsgGenericFailure)
		*err = fmt.Errorf("authflow: collaborator panicked: %v", r)
	}
}
