package flow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gamehive/gamehive/internal/client/session"
	"github.com/gamehive/gamehive/pkg/authapi"

	"golang.org/x/time/rate"
)

// ResetStep identifies the active step of the forgot-password flow.
type ResetStep int

const (
	ResetStepEmail ResetStep = iota
	ResetStepOTP
	ResetStepReset
	ResetStepSuccess
)

func (s ResetStep) String() string {
	switch s {
	case ResetStepEmail:
		return "email"
	case ResetStepOTP:
		return "otp"
	case ResetStepReset:
		return "reset"
	case ResetStepSuccess:
		return "success"
	default:
		return "unknown"
	}
}

const (
	msgResetCodeSent    = "A reset code has been sent to your email"
	msgOTPIncomplete    = "Please enter the 6-digit code"
	msgNewPassRequired  = "New password is required"
	msgNewPassTooShort  = "Password must be at least 6 characters"
	msgResetFlowGeneric = "Something went wrong. Please try again."

	// successAdvanceDelay is how long the terminal success step is shown
	// before the parent flow is advanced.
	successAdvanceDelay = 2 * time.Second
)

// ForgotFlow is the strictly sequential email -> otp -> reset -> success
// password reset state machine. The OTP entered at step two is deliberately
// not sent anywhere until the final reset submission, so a mistyped new
// password never burns the code.
type ForgotFlow struct {
	api   *authapi.Client
	store *session.Store

	// onSuccess is invoked with the authenticated username after the success
	// step has been displayed for successAdvanceDelay.
	onSuccess func(username string)

	// advanceDelay is successAdvanceDelay outside of tests.
	advanceDelay time.Duration

	mu         sync.Mutex
	step       ResetStep
	email      string
	emailErr   string
	input      *OTPInput
	otpErr     string
	passwords  map[Field]string
	fieldErrs  map[Field]string
	errMsg     string
	submitting bool
	resending  bool
	closed     bool

	notice        notice
	resendLimiter *rate.Limiter
}

func newForgotFlow(
	api *authapi.Client,
	store *session.Store,
	onSuccess func(username string),
) *ForgotFlow {
	return &ForgotFlow{
		api:           api,
		store:         store,
		onSuccess:     onSuccess,
		advanceDelay:  successAdvanceDelay,
		step:          ResetStepEmail,
		input:         NewOTPInput(),
		passwords:     make(map[Field]string),
		fieldErrs:     make(map[Field]string),
		resendLimiter: rate.NewLimiter(rate.Every(resendInterval), 1),
	}
}

// Step returns the active reset step.
func (f *ForgotFlow) Step() ResetStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *ForgotFlow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Error returns the general error for the active step, or "".
func (f *ForgotFlow) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step == ResetStepEmail {
		return f.emailErr
	}
	if f.step == ResetStepOTP {
		return f.otpErr
	}
	return f.errMsg
}

// Notice returns the transient confirmation message, or "".
func (f *ForgotFlow) Notice() string {
	return f.notice.get()
}

// FieldError returns the inline error for a reset-step password field.
func (f *ForgotFlow) FieldError(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs[field]
}

// PasswordValue returns the retained value of a reset-step password field.
func (f *ForgotFlow) PasswordValue(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passwords[field]
}

func (f *ForgotFlow) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.notice.clear()
}

// ============================================================================
// Step 1: email
// ============================================================================

// SetEmail updates the email field and clears its error.
func (f *ForgotFlow) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
	f.emailErr = ""
}

// SubmitEmail validates a non-empty address and requests a reset code.
// On success a transient confirmation shows and the flow advances to the OTP
// step; on failure the message is surfaced and the flow stays put.
func (f *ForgotFlow) SubmitEmail(ctx context.Context) error {
	f.mu.Lock()
	if f.closed || f.submitting || f.step != ResetStepEmail {
		f.mu.Unlock()
		return nil
	}
	email := strings.TrimSpace(f.email)
	if email == "" {
		f.emailErr = msgEmailRequired
		f.mu.Unlock()
		return nil
	}
	f.submitting = true
	f.mu.Unlock()

	err := f.api.ForgotPassword(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if f.closed || f.step != ResetStepEmail {
		return nil
	}

	if err != nil {
		f.emailErr = messageFor(err)
		return err
	}

	f.email = authapi.NormalizeEmail(email)
	f.emailErr = ""
	f.input.Reset()
	f.step = ResetStepOTP
	f.notice.set(msgResetCodeSent, resendNoticeTTL)
	return nil
}

// ============================================================================
// Step 2: otp
// ============================================================================

// EnterDigit forwards an edit to the widget; an accepted entry clears any
// displayed error.
func (f *ForgotFlow) EnterDigit(index int, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	accepted := f.input.EnterDigit(index, value)
	if accepted {
		f.otpErr = ""
	}
	return accepted
}

func (f *ForgotFlow) Backspace(index int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input.Backspace(index)
}

func (f *ForgotFlow) CodeComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input.Complete()
}

// AdvanceOTP moves from the OTP step to the reset step. It checks local
// completeness only and performs no network call: the code is validated for
// real by the final reset submission, so a mistyped new password does not
// force the user to request a fresh code. A well-formed but wrong code is
// therefore only discovered at step three.
func (f *ForgotFlow) AdvanceOTP() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.step != ResetStepOTP {
		return
	}
	if !f.input.Complete() {
		f.otpErr = msgOTPIncomplete
		return
	}

	f.otpErr = ""
	f.step = ResetStepReset
}

// Resend requests a fresh reset code, scoped to the forgot-password purpose.
// Semantics match the verification step: concurrent calls ignored, local
// throttle, widget cleared and a three second confirmation on success.
func (f *ForgotFlow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.closed || f.resending || f.step != ResetStepOTP {
		f.mu.Unlock()
		return nil
	}
	if !f.resendLimiter.Allow() {
		f.otpErr = msgResendThrottle
		f.mu.Unlock()
		return nil
	}
	f.resending = true
	email := f.email
	f.mu.Unlock()

	err := f.api.ResendOTP(ctx, email, authapi.PurposeForgotPassword)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.resending = false

	if f.closed || f.step != ResetStepOTP {
		return nil
	}

	if err != nil {
		f.otpErr = messageFor(err)
		return err
	}

	f.input.Reset()
	f.otpErr = ""
	f.notice.set(msgCodeSent, resendNoticeTTL)
	return nil
}

// ============================================================================
// Step 3: reset
// ============================================================================

// SetPassword updates a reset-step password field and clears its error.
// Only FieldNewPassword and FieldConfirmPassword are meaningful here.
func (f *ForgotFlow) SetPassword(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[field] = value
	delete(f.fieldErrs, field)
}

// SubmitNewPassword validates the new password locally, then calls the
// reset-password endpoint with the deferred OTP from step two. This is where
// a wrong or expired code finally surfaces; the flow stays on the reset step
// with both password fields retained so the user can go back and re-enter
// digits or resend.
func (f *ForgotFlow) SubmitNewPassword(ctx context.Context) error {
	f.mu.Lock()
	if f.closed || f.submitting || f.step != ResetStepReset {
		f.mu.Unlock()
		return nil
	}

	newPass := f.passwords[FieldNewPassword]
	confirm := f.passwords[FieldConfirmPassword]

	errs := make(map[Field]string)
	switch {
	case newPass == "":
		errs[FieldNewPassword] = msgNewPassRequired
	case len(newPass) < minPasswordLen:
		errs[FieldNewPassword] = msgNewPassTooShort
	}
	switch {
	case confirm == "":
		errs[FieldConfirmPassword] = msgConfirmRequired
	case newPass != "" && confirm != newPass:
		errs[FieldConfirmPassword] = msgPasswordMismatch
	}
	if len(errs) > 0 {
		f.fieldErrs = errs
		f.mu.Unlock()
		return nil
	}

	f.submitting = true
	req := authapi.ResetPasswordRequest{
		Email:           f.email,
		OTP:             f.input.Code(),
		NewPassword:     newPass,
		ConfirmPassword: confirm,
	}
	f.mu.Unlock()

	result, err := f.api.ResetPassword(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if f.closed || f.step != ResetStepReset {
		return nil
	}

	if err != nil {
		f.errMsg = messageFor(err)
		return err
	}

	user := session.Normalize(result.User)
	if err := f.store.Save(ctx, session.Session{Token: result.Token, User: user}); err != nil {
		f.errMsg = msgResetFlowGeneric
		return err
	}

	f.errMsg = ""
	f.step = ResetStepSuccess

	// Terminal step: show the confirmation, then hand control back to the
	// parent flow.
	if f.onSuccess != nil {
		username := user.Username
		time.AfterFunc(f.advanceDelay, func() { f.onSuccess(username) })
	}
	return nil
}

// ============================================================================
// Back navigation
// ============================================================================

// Back returns exactly one step. The success step is terminal and has no
// back affordance; at the email step the parent controller owns navigation.
func (f *ForgotFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case ResetStepOTP:
		f.otpErr = ""
		f.step = ResetStepEmail
	case ResetStepReset:
		f.errMsg = ""
		f.step = ResetStepOTP
	}
}
