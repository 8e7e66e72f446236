package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gamehive/gamehive/internal/client/session"
	"github.com/gamehive/gamehive/pkg/authapi"

	"golang.org/x/time/rate"
)

const (
	// resendNoticeTTL is how long the "code sent" confirmation stays visible.
	resendNoticeTTL = 3 * time.Second

	// resendInterval throttles how often a new code can be requested.
	resendInterval = 30 * time.Second

	msgCodeSent       = "A new code has been sent to your email"
	msgResendThrottle = "Please wait a moment before requesting another code"
	msgVerifyFailed   = "Verification failed. Please try again."
)

// VerifyStep submits an entered OTP for signup or login and, on success,
// finalizes the session. It owns the OTP input widget, the in-flight guards
// for verify and resend, and the transient resend confirmation.
type VerifyStep struct {
	api   *authapi.Client
	store *session.Store

	// onSuccess is invoked with the authenticated username immediately after
	// the session is persisted.
	onSuccess func(username string)

	mu        sync.Mutex
	email     string
	purpose   authapi.Purpose
	input     *OTPInput
	errMsg    string
	verifying bool
	resending bool
	closed    bool

	notice        notice
	resendLimiter *rate.Limiter
}

func newVerifyStep(
	api *authapi.Client,
	store *session.Store,
	email string,
	purpose authapi.Purpose,
	onSuccess func(username string),
) *VerifyStep {
	return &VerifyStep{
		api:           api,
		store:         store,
		onSuccess:     onSuccess,
		email:         email,
		purpose:       purpose,
		input:         NewOTPInput(),
		resendLimiter: rate.NewLimiter(rate.Every(resendInterval), 1),
	}
}

// Email returns the normalized address this step is verifying.
func (v *VerifyStep) Email() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.email
}

func (v *VerifyStep) Purpose() authapi.Purpose {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.purpose
}

// EnterDigit forwards an edit to the widget; an accepted entry clears any
// displayed error.
func (v *VerifyStep) EnterDigit(index int, value string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	accepted := v.input.EnterDigit(index, value)
	if accepted {
		v.errMsg = ""
	}
	return accepted
}

func (v *VerifyStep) Backspace(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input.Backspace(index)
}

func (v *VerifyStep) Code() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input.Code()
}

func (v *VerifyStep) Complete() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input.Complete()
}

func (v *VerifyStep) Focus() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input.Focus()
}

// Error returns the currently displayed error message, or "".
func (v *VerifyStep) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// Notice returns the transient confirmation message, or "".
func (v *VerifyStep) Notice() string {
	return v.notice.get()
}

// close marks the step as navigated-away; any in-flight response is dropped
// on arrival instead of mutating state.
func (v *VerifyStep) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.notice.clear()
}

// Verify submits the entered code. It no-ops unless the code is complete and
// no verification is already in flight. This is the only place the digits
// are ever transmitted; correctness is decided exclusively by the service.
func (v *VerifyStep) Verify(ctx context.Context) error {
	v.mu.Lock()
	if v.closed || v.verifying || !v.input.Complete() {
		v.mu.Unlock()
		return nil
	}
	v.verifying = true
	code := v.input.Code()
	email, purpose := v.email, v.purpose
	v.mu.Unlock()

	result, err := v.api.VerifyOTP(ctx, authapi.VerifyOTPRequest{
		Email:   email,
		OTP:     code,
		Purpose: purpose,
	})

	v.mu.Lock()
	v.verifying = false

	if v.closed {
		v.mu.Unlock()
		return nil
	}

	if err != nil {
		// A wrong code cannot be partially corrected; force full re-entry.
		v.input.Reset()
		v.errMsg = messageFor(err)
		v.mu.Unlock()
		return err
	}

	user := session.Normalize(result.User)
	if err := v.store.Save(ctx, session.Session{Token: result.Token, User: user}); err != nil {
		v.input.Reset()
		v.errMsg = msgVerifyFailed
		v.mu.Unlock()
		return err
	}
	v.mu.Unlock()

	// Invoked outside the lock: the callback transitions the parent flow.
	if v.onSuccess != nil {
		v.onSuccess(user.Username)
	}
	return nil
}

// Resend requests a fresh code. Guarded against concurrent calls and locally
// throttled so the affordance cannot hammer the service. On success the
// widget is cleared and a confirmation shows for three seconds.
func (v *VerifyStep) Resend(ctx context.Context) error {
	v.mu.Lock()
	if v.closed || v.resending {
		v.mu.Unlock()
		return nil
	}
	if !v.resendLimiter.Allow() {
		v.errMsg = msgResendThrottle
		v.mu.Unlock()
		return nil
	}
	v.resending = true
	email, purpose := v.email, v.purpose
	v.mu.Unlock()

	err := v.api.ResendOTP(ctx, email, purpose)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.resending = false

	if v.closed {
		return nil
	}

	if err != nil {
		v.errMsg = messageFor(err)
		return err
	}

	v.input.Reset()
	v.errMsg = ""
	v.notice.set(msgCodeSent, resendNoticeTTL)
	return nil
}

// messageFor maps an error from the API layer to user-facing text: server
// messages pass through, transport failures get the connectivity notice.
func messageFor(err error) string {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if authapi.IsNetworkError(err) {
		return msgNetworkFailure
	}
	return msgVerifyFailed
}
