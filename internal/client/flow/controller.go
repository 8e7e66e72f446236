package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gamehive/gamehive/internal/client/session"
	"github.com/gamehive/gamehive/pkg/authapi"
)

// Step identifies which sub-view of the primary auth flow is active.
type Step int

const (
	StepForm Step = iota
	StepOTP
	StepSuccess
	StepForgotPassword
)

func (s Step) String() string {
	switch s {
	case StepForm:
		return "form"
	case StepOTP:
		return "otp"
	case StepSuccess:
		return "success"
	case StepForgotPassword:
		return "forgot-password"
	default:
		return "unknown"
	}
}

// ErrValidation is returned when a submission was blocked by client-side
// validation and no network call was made. Field details are on the form.
var ErrValidation = errors.New("flow: validation failed")

// Controller is the top-level auth flow state machine. It holds the active
// step, routes to the owning sub-component, and is the single place step
// transitions happen. Sub-components call back only on terminal transitions.
type Controller struct {
	api    *authapi.Client
	store  *session.Store
	logger *slog.Logger

	mu         sync.Mutex
	step       Step
	form       *CredentialsForm
	verify     *VerifyStep
	forgot     *ForgotFlow
	submitting bool
	username   string
	done       bool
}

// NewController creates a controller showing the login form.
func NewController(api *authapi.Client, store *session.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:    api,
		store:  store,
		logger: logger,
		step:   StepForm,
		form:   NewCredentialsForm(ModeLogin),
	}
}

// Step returns the active step.
func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Form returns the credential form. Only meaningful while on StepForm.
func (c *Controller) Form() *CredentialsForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Verify returns the OTP verification step, or nil when not on StepOTP.
func (c *Controller) Verify() *VerifyStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verify
}

// Forgot returns the password reset sub-flow, or nil when not active.
func (c *Controller) Forgot() *ForgotFlow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forgot
}

// Done reports whether the flow reached its terminal success state, along
// with the authenticated username.
func (c *Controller) Done() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.username, c.done
}

// SwitchMode swaps between the login and signup forms. Entered values and
// errors belong to the abandoned form and are discarded.
func (c *Controller) SwitchMode(mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepForm || c.form.Mode() == mode {
		return
	}
	c.form = NewCredentialsForm(mode)
}

// SubmitCredentials validates the active form and submits it to the signup
// or login endpoint. A second trigger while a submission is in flight is
// ignored. Validation failures surface per-field and make no network call
// (ErrValidation). On acceptance the flow advances to the OTP step carrying
// the normalized email and purpose; password fields are never cleared on
// failure.
func (c *Controller) SubmitCredentials(ctx context.Context) error {
	c.mu.Lock()
	if c.step != StepForm || c.submitting {
		c.mu.Unlock()
		return nil
	}
	form := c.form

	form.mu.Lock()
	if form.generalErr != "" {
		form.generalErr = ""
	}
	if errs := form.validate(); errs != nil {
		form.fieldErrs = errs
		form.mu.Unlock()
		c.mu.Unlock()
		return ErrValidation
	}
	mode := form.mode
	username := form.values[FieldUsername]
	email := form.values[FieldEmail]
	password := form.values[FieldPassword]
	confirm := form.values[FieldConfirmPassword]
	form.mu.Unlock()
	c.submitting = true
	c.mu.Unlock()

	var (
		err     error
		purpose authapi.Purpose
	)
	if mode == ModeSignup {
		purpose = authapi.PurposeSignup
		err = c.api.Signup(ctx, authapi.SignupRequest{
			Username:        username,
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
		})
	} else {
		purpose = authapi.PurposeLogin
		err = c.api.Login(ctx, authapi.LoginRequest{
			Email:    email,
			Password: password,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	// The flow may have navigated elsewhere while the call was in flight.
	if c.step != StepForm || c.form != form {
		return nil
	}

	if err != nil {
		c.applyCredentialError(form, err)
		return err
	}

	normalized := authapi.NormalizeEmail(email)
	c.logger.Info("credentials accepted, awaiting otp",
		"mode", mode.String(), "email", normalized)

	c.verify = newVerifyStep(c.api, c.store, normalized, purpose, c.completeAuth)
	c.step = StepOTP
	return nil
}

// applyCredentialError classifies a submission failure: known field-shaped
// server messages attach to their field, everything else lands on the
// general banner. Caller holds c.mu.
func (c *Controller) applyCredentialError(form *CredentialsForm, err error) {
	form.mu.Lock()
	defer form.mu.Unlock()

	var apiErr *authapi.APIError
	switch {
	case errors.As(err, &apiErr) && isTakenEmailMessage(apiErr.Message):
		form.fieldErrs[FieldEmail] = apiErr.Message
	case errors.As(err, &apiErr):
		form.generalErr = apiErr.Message
	case authapi.IsNetworkError(err):
		form.generalErr = msgNetworkFailure
	default:
		form.generalErr = msgResetFlowGeneric
	}
}

// StartForgotPassword enters the password reset sub-flow.
func (c *Controller) StartForgotPassword() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepForm {
		return
	}
	c.forgot = newForgotFlow(c.api, c.store, c.completeAuth)
	c.step = StepForgotPassword
}

// Back returns one step toward the form. The verification step's widget
// state dies with it; a fresh OTP step starts empty.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.step {
	case StepOTP:
		c.verify.close()
		c.verify = nil
		c.step = StepForm
	case StepForgotPassword:
		if c.forgot.Step() == ResetStepEmail {
			c.forgot.close()
			c.forgot = nil
			c.step = StepForm
		} else {
			c.forgot.Back()
		}
	}
}

// completeAuth is the terminal transition shared by OTP verification and
// password reset success.
func (c *Controller) completeAuth(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.username = username
	c.done = true
	c.step = StepSuccess
	c.logger.Info("authentication complete", "username", username)
}
