package recovery

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Timer is a scheduled one-shot callback that can be stopped before it fires.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn to run once after d.
type AfterFunc func(d time.Duration, fn func()) Timer

func defaultAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Option configures a Flow.
type Option func(*Flow)

// WithRedirectDelay sets the pause between a successful reset and navigation to LoginPath.
// Non-positive values are ignored.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.redirectDelay = d
		}
	}
}

// WithMessages overrides user-facing texts. Empty fields keep their defaults.
func WithMessages(m Messages) Option {
	return func(f *Flow) { f.messages = m.withDefaults() }
}

// WithAfterFunc replaces the timer used to schedule the redirect.
func WithAfterFunc(af AfterFunc) Option {
	return func(f *Flow) {
		if af != nil {
			f.afterFunc = af
		}
	}
}

// WithLogger sets the logger used for step transitions. Secrets are never logged.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Flow) { f.log = l }
}

// Flow is the recovery state machine: Phone -> Code -> Password -> navigation to LoginPath.
// Operations are safe to call from multiple goroutines; a submit while a request is
// pending is rejected with ErrPending and issues no request.
type Flow struct {
	endpoints     Endpoints
	notifier      Notifier
	navigator     Navigator
	messages      Messages
	redirectDelay time.Duration
	afterFunc     AfterFunc
	log           zerolog.Logger

	mu        sync.Mutex
	session   Session
	completed bool
	closed    bool
	redirect  Timer
}

// New returns a Flow in StepPhone.
func New(endpoints Endpoints, notifier Notifier, navigator Navigator, opts ...Option) *Flow {
	f := &Flow{
		endpoints:     endpoints,
		notifier:      notifier,
		navigator:     navigator,
		messages:      DefaultMessages(),
		redirectDelay: DefaultRedirectDelay,
		afterFunc:     defaultAfterFunc,
		log:           zerolog.Nop(),
		session:       Session{Step: StepPhone},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Session returns a snapshot of the current session.
func (f *Flow) Session() Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.Step
}

// Completed reports whether the reset succeeded and the redirect has been scheduled.
func (f *Flow) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// RequestCode submits the phone form: it asks the backend to send a code to phone.
// On success the flow moves to StepCode; on any failure it stays in StepPhone.
func (f *Flow) RequestCode(ctx context.Context, phone string) error {
	f.mu.Lock()
	if err := f.submittableLocked(StepPhone); err != nil {
		f.mu.Unlock()
		return err
	}
	f.session.Phone = phone
	if phone == "" {
		f.mu.Unlock()
		return f.fail(&Error{Kind: KindValidation, Message: f.messages.PhoneRequired, Err: ErrPhoneRequired})
	}
	f.session.Pending = true
	f.mu.Unlock()

	resp, err := f.endpoints.RequestCode(ctx, CodeRequest{Phone: phone})

	f.mu.Lock()
	f.session.Pending = false
	if err != nil {
		f.mu.Unlock()
		return f.fail(&Error{Kind: KindTransport, Message: f.messages.NetworkError, Err: err})
	}
	if resp == nil || !resp.Success {
		f.mu.Unlock()
		return f.fail(endpointError(resp, f.messages.CodeRequestFailed))
	}
	f.session.Step = StepCode
	f.mu.Unlock()

	f.log.Debug().Stringer("step", StepCode).Msg("recovery: code requested")
	f.notify(NotifySuccess, f.messages.CodeSent)
	return nil
}

// AcceptCode submits the code form. It always advances to StepPassword: the code is not
// verified here, only by the final reset call. Input longer than MaxCodeLength is truncated.
func (f *Flow) AcceptCode(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.submittableLocked(StepCode); err != nil {
		return err
	}
	f.session.Code = truncateRunes(code, MaxCodeLength)
	f.session.Step = StepPassword
	f.log.Debug().Stringer("step", StepPassword).Msg("recovery: code accepted")
	return nil
}

// ResetPassword submits the password form. Local checks (length, match) run first and
// short-circuit without a request. On success a navigation to LoginPath is scheduled
// after the redirect delay.
func (f *Flow) ResetPassword(ctx context.Context, newPassword, confirmPassword string) error {
	f.mu.Lock()
	if err := f.submittableLocked(StepPassword); err != nil {
		f.mu.Unlock()
		return err
	}
	f.session.NewPassword = newPassword
	f.session.ConfirmPassword = confirmPassword
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		f.mu.Unlock()
		return f.fail(&Error{Kind: KindValidation, Message: f.messages.PasswordTooShort, Err: ErrPasswordTooShort})
	}
	if newPassword != confirmPassword {
		f.mu.Unlock()
		return f.fail(&Error{Kind: KindValidation, Message: f.messages.PasswordMismatch, Err: ErrPasswordMismatch})
	}
	req := ResetRequest{Phone: f.session.Phone, Code: f.session.Code, NewPassword: newPassword}
	f.session.Pending = true
	f.mu.Unlock()

	resp, err := f.endpoints.ResetPassword(ctx, req)

	f.mu.Lock()
	f.session.Pending = false
	if err != nil {
		f.mu.Unlock()
		return f.fail(&Error{Kind: KindTransport, Message: f.messages.NetworkError, Err: err})
	}
	if resp == nil || !resp.Success {
		f.mu.Unlock()
		return f.fail(endpointError(resp, f.messages.ResetFailed))
	}
	f.completed = true
	if !f.closed {
		nav := f.navigator
		f.redirect = f.afterFunc(f.redirectDelay, func() {
			if nav != nil {
				nav.Navigate(LoginPath)
			}
		})
	}
	f.mu.Unlock()

	f.log.Debug().Dur("redirect_in", f.redirectDelay).Msg("recovery: password reset")
	f.notify(NotifySuccess, f.messages.PasswordChanged)
	return nil
}

// Close abandons the flow. A scheduled redirect that has not fired yet is stopped.
// In-flight requests are not cancelled; their results are still applied.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.redirect != nil {
		f.redirect.Stop()
		f.redirect = nil
	}
}

// submittableLocked checks that a form of step may be submitted now. Caller holds f.mu.
func (f *Flow) submittableLocked(step Step) error {
	switch {
	case f.completed:
		return &Error{Kind: KindState, Err: ErrCompleted}
	case f.session.Pending:
		return &Error{Kind: KindState, Err: ErrPending}
	case f.session.Step != step:
		return &Error{Kind: KindState, Err: ErrWrongStep}
	}
	return nil
}

func (f *Flow) fail(e *Error) error {
	f.log.Debug().Stringer("kind", e.Kind).Err(e.Err).Msg("recovery: submit failed")
	f.notify(NotifyError, e.Message)
	return e
}

func (f *Flow) notify(kind NotificationKind, msg string) {
	if f.notifier == nil {
		return
	}
	f.notifier.Notify(Notification{Kind: kind, Message: msg})
}

func endpointError(resp *Response, fallback string) *Error {
	msg := fallback
	if resp != nil && resp.Error != "" {
		msg = resp.Error
	}
	return &Error{Kind: KindEndpoint, Message: msg, Err: ErrEndpoint}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
