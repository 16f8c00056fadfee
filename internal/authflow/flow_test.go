package authflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Notifier that keeps every message.
type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

// fakeBackend implements Authenticator and AccountCreator. The optional
// hook runs inside every call, before the canned reply is returned.
type fakeBackend struct {
	mu         sync.Mutex
	signIn     SignInResult
	signInErr  error
	social     SignInResult
	socialErr  error
	account    *Account
	accountErr error
	hook       func()

	calls    int
	lastCred Credentials
	provider string
}

func (b *fakeBackend) record(c Credentials) {
	b.mu.Lock()
	b.calls++
	b.lastCred = c
	hook := b.hook
	b.mu.Unlock()
	if hook != nil {
		hook()
	}
}

func (b *fakeBackend) SignInCredentials(ctx context.Context, email, password string) (SignInResult, error) {
	b.record(Credentials{Email: email, Password: password})
	return b.signIn, b.signInErr
}

func (b *fakeBackend) SignInFederated(ctx context.Context, provider string) (SignInResult, error) {
	b.mu.Lock()
	b.provider = provider
	b.mu.Unlock()
	b.record(Credentials{})
	return b.social, b.socialErr
}

func (b *fakeBackend) CreateAccount(ctx context.Context, creds Credentials) (*Account, error) {
	b.record(creds)
	return b.account, b.accountErr
}

func newTestFlow(b *fakeBackend, opts ...Option) (*Flow, *recorder) {
	rec := &recorder{}
	return New(b, b, rec, opts...), rec
}

var ada = Credentials{Name: "Ada", Email: "ada@example.com", Password: "secret"}

func TestToggleVariant(t *testing.T) {
	flow, _ := newTestFlow(&fakeBackend{})
	assert.Equal(t, Login, flow.State().Variant)

	want := []Variant{Register, Login, Register, Login}
	for _, w := range want {
		assert.Equal(t, w, flow.ToggleVariant())
		assert.Equal(t, w, flow.State().Variant)
	}
}

func TestVariantString(t *testing.T) {
	assert.Equal(t, "LOGIN", Login.String())
	assert.Equal(t, "REGISTER", Register.String())
	assert.Equal(t, Register, ParseVariant("Register"))
	assert.Equal(t, Login, ParseVariant("anything"))
}

func TestSubmit_LoadingIsSetDuringCallAndResetAfter(t *testing.T) {
	b := &fakeBackend{signIn: SignInResult{OK: true, Status: 200}}
	flow, _ := newTestFlow(b)

	var during State
	b.hook = func() { during = flow.State() }

	require.NoError(t, flow.Submit(context.Background(), ada))
	assert.True(t, during.Loading, "loading must be set before the collaborator resolves")
	assert.False(t, flow.State().Loading)
}

func TestRelease_IsIdempotent(t *testing.T) {
	flow, _ := newTestFlow(&fakeBackend{})

	_, release, err := flow.begin(nil)
	require.NoError(t, err)
	assert.True(t, flow.State().Loading)

	release()
	release()
	assert.False(t, flow.State().Loading)

	_, release2, err := flow.begin(nil)
	require.NoError(t, err, "a new request can start after release")
	release2()
}

func TestBegin_CheckUsesLockedVariant(t *testing.T) {
	flow, _ := newTestFlow(&fakeBackend{}, WithVariant(Register))

	var seen Variant
	variant, release, err := flow.begin(func(v Variant) error {
		seen = v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Register, seen)
	assert.Equal(t, seen, variant, "the dispatched variant is the one that was checked")
	release()

	failed := errors.New("invalid")
	_, _, err = flow.begin(func(Variant) error { return failed })
	assert.ErrorIs(t, err, failed)
	assert.False(t, flow.State().Loading, "a failed check leaves the flow idle")
}

func TestSubmit_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		b := &fakeBackend{signIn: SignInResult{OK: true}}
		flow, rec := newTestFlow(b)

		require.NoError(t, flow.Submit(context.Background(), Credentials{Email: "ada@example.com", Password: "secret"}))
		assert.Equal(t, []string{MsgLoggedIn}, rec.successes)
		assert.Empty(t, rec.errors)
		assert.Equal(t, "ada@example.com", b.lastCred.Email)
	})

	t.Run("rejected", func(t *testing.T) {
		b := &fakeBackend{signIn: SignInResult{Error: "CredentialsSignin", Status: 401}}
		flow, rec := newTestFlow(b)

		err := flow.Submit(context.Background(), ada)
		assert.ErrorIs(t, err, ErrAuthRejected)
		assert.Equal(t, []string{MsgInvalidCredentials}, rec.errors)
		assert.Empty(t, rec.successes)
		assert.False(t, flow.State().Loading)
	})

	t.Run("ok with error is still a failure", func(t *testing.T) {
		b := &fakeBackend{signIn: SignInResult{OK: true, Error: "CredentialsSignin"}}
		flow, rec := newTestFlow(b)

		assert.ErrorIs(t, flow.Submit(context.Background(), ada), ErrAuthRejected)
		assert.Equal(t, []string{MsgInvalidCredentials}, rec.errors)
	})

	t.Run("transport failure", func(t *testing.T) {
		b := &fakeBackend{signInErr: errors.New("connection refused")}
		flow, rec := newTestFlow(b)

		assert.Error(t, flow.Submit(context.Background(), ada))
		assert.Equal(t, []string{MsgGenericFailure}, rec.errors)
		assert.False(t, flow.State().Loading)
	})
}

func TestSubmit_Register(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		b := &fakeBackend{account: &Account{ID: "u1", Name: "Ada", Email: "ada@example.com"}}
		flow, rec := newTestFlow(b)
		flow.ToggleVariant()

		require.NoError(t, flow.Submit(context.Background(), ada))
		assert.Equal(t, []string{MsgAccountCreated}, rec.successes)
		assert.Equal(t, ada, b.lastCred)
		assert.False(t, flow.State().Loading)
	})

	t.Run("server message is shown", func(t *testing.T) {
		b := &fakeBackend{accountErr: &ServerError{StatusCode: 400, Message: "Missing fields"}}
		flow, rec := newTestFlow(b, WithoutValidation(), WithVariant(Register))

		err := flow.Submit(context.Background(), Credentials{Email: "ada@example.com", Password: "secret"})
		var se *ServerError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 400, se.StatusCode)
		assert.Equal(t, []string{"Missing fields"}, rec.errors)
		assert.False(t, flow.State().Loading)
		assert.Equal(t, 1, b.calls)
	})

	t.Run("falls back to generic message", func(t *testing.T) {
		b := &fakeBackend{accountErr: &ServerError{StatusCode: 502}}
		flow, rec := newTestFlow(b, WithVariant(Register))

		assert.Error(t, flow.Submit(context.Background(), ada))
		assert.Equal(t, []string{MsgGenericFailure}, rec.errors)
	})

	t.Run("transport failure", func(t *testing.T) {
		b := &fakeBackend{accountErr: errors.New("dial tcp: connection refused")}
		flow, rec := newTestFlow(b, WithVariant(Register))

		assert.Error(t, flow.Submit(context.Background(), ada))
		assert.Equal(t, []string{MsgGenericFailure}, rec.errors)
	})
}

func TestSubmit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		creds   Credentials
		message string
		fields  []string
	}{
		{"login without password", Login, Credentials{Email: "ada@example.com"}, "Missing fields", []string{"password"}},
		{"login with bad email", Login, Credentials{Email: "ada", Password: "x"}, "Invalid email address", []string{"email"}},
		{"register without name", Register, Credentials{Email: "ada@example.com", Password: "x"}, "Missing fields", []string{"name"}},
		{"register blank name", Register, Credentials{Name: "   ", Email: "ada@example.com", Password: "x"}, "Missing fields", []string{"name"}},
		{"register password over 72 bytes", Register, Credentials{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("p", 73)}, "Password is too long", []string{"password"}},
		{"login password over 72 bytes", Login, Credentials{Email: "ada@example.com", Password: strings.Repeat("é", 37)}, "Password is too long", []string{"password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{}
			flow, rec := newTestFlow(b, WithVariant(tt.variant))

			var states []State
			flow.Subscribe(func(s State) { states = append(states, s) })

			err := flow.Submit(context.Background(), tt.creds)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.Fields)
			assert.Equal(t, []string{tt.message}, rec.errors)
			assert.Zero(t, b.calls, "no external call on validation failure")
			assert.Empty(t, states, "loading never toggles on validation failure")
		})
	}

	t.Run("72 bytes is accepted", func(t *testing.T) {
		b := &fakeBackend{signIn: SignInResult{OK: true}}
		flow, _ := newTestFlow(b)
		assert.NoError(t, flow.Submit(context.Background(), Credentials{Email: "ada@example.com", Password: strings.Repeat("p", 72)}))
	})

	t.Run("name is not required to log in", func(t *testing.T) {
		b := &fakeBackend{signIn: SignInResult{OK: true}}
		flow, _ := newTestFlow(b)
		assert.NoError(t, flow.Submit(context.Background(), Credentials{Email: "ada@example.com", Password: "x"}))
	})
}

func TestSubmit_RejectsReentry(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	b := &fakeBackend{signIn: SignInResult{OK: true}}
	b.hook = func() {
		close(entered)
		<-unblock
	}
	flow, rec := newTestFlow(b)

	done := make(chan error, 1)
	go func() { done <- flow.Submit(context.Background(), ada) }()
	<-entered

	assert.ErrorIs(t, flow.Submit(context.Background(), ada), ErrBusy)
	_, err := flow.SocialAction(context.Background(), "google")
	assert.ErrorIs(t, err, ErrBusy)

	close(unblock)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never finished")
	}

	assert.Equal(t, 1, b.calls)
	assert.Equal(t, []string{MsgLoggedIn}, rec.successes)
	assert.Empty(t, rec.errors)
}

func TestSubmit_RecoversFromPanic(t *testing.T) {
	b := &fakeBackend{}
	b.hook = func() { panic("boom") }
	flow, rec := newTestFlow(b)

	err := flow.Submit(context.Background(), ada)
	assert.ErrorContains(t, err, "boom")
	assert.False(t, flow.State().Loading)
	assert.Equal(t, []string{MsgGenericFailure}, rec.errors)
}

func TestSocialAction_RecoversFromPanic(t *testing.T) {
	b := &fakeBackend{}
	b.hook = func() { panic("boom") }
	flow, rec := newTestFlow(b)

	var states []State
	flow.Subscribe(func(s State) { states = append(states, s) })

	_, err := flow.SocialAction(context.Background(), "google")
	assert.ErrorContains(t, err, "boom")
	assert.False(t, flow.State().Loading)
	assert.Equal(t, []string{MsgGenericFailure}, rec.errors)
	assert.Empty(t, rec.successes)
	assert.Equal(t, []State{{Loading: true}, {Loading: false}}, states)
}

func TestSocialAction(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		b := &fakeBackend{social: SignInResult{OK: true, URL: "https://accounts.google.com/o/oauth2/auth?state=x"}}
		flow, rec := newTestFlow(b)

		res, err := flow.SocialAction(context.Background(), "google")
		require.NoError(t, err)
		assert.Equal(t, "google", b.provider)
		assert.Contains(t, res.URL, "accounts.google.com")
		assert.Equal(t, []string{MsgLoggedIn}, rec.successes)
		assert.False(t, flow.State().Loading)
	})

	t.Run("provider error", func(t *testing.T) {
		b := &fakeBackend{social: SignInResult{Error: "OAuthCallback"}}
		flow, rec := newTestFlow(b)

		_, err := flow.SocialAction(context.Background(), "google")
		assert.ErrorIs(t, err, ErrAuthRejected)
		assert.Equal(t, []string{MsgSocialFailure}, rec.errors)
		assert.Empty(t, rec.successes)
		assert.False(t, flow.State().Loading)
	})

	t.Run("transport failure", func(t *testing.T) {
		b := &fakeBackend{socialErr: errors.New("timeout")}
		flow, rec := newTestFlow(b)

		_, err := flow.SocialAction(context.Background(), "github")
		assert.Error(t, err)
		assert.Equal(t, []string{MsgSocialFailure}, rec.errors)
	})
}

func TestSubscribe(t *testing.T) {
	b := &fakeBackend{signIn: SignInResult{OK: true}}
	flow, _ := newTestFlow(b)

	var states []State
	unsubscribe := flow.Subscribe(func(s State) { states = append(states, s) })

	flow.ToggleVariant()
	flow.ToggleVariant()
	require.NoError(t, flow.Submit(context.Background(), ada))

	assert.Equal(t, []State{
		{Variant: Register},
		{Variant: Login},
		{Variant: Login, Loading: true},
		{Variant: Login, Loading: false},
	}, states)

	unsubscribe()
	flow.ToggleVariant()
	assert.Len(t, states, 4)
}

func TestNilNotifier(t *testing.T) {
	b := &fakeBackend{signIn: SignInResult{Error: "CredentialsSignin"}}
	flow := New(b, b, nil)
	assert.ErrorIs(t, flow.Submit(context.Background(), ada), ErrAuthRejected)
}
