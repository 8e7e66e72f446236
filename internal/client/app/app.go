package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gamehive/gamehive/internal/client/flow"
	"github.com/gamehive/gamehive/internal/client/session"
	"github.com/gamehive/gamehive/pkg/authapi"
	"github.com/gamehive/gamehive/pkg/cryptox"
	"github.com/gamehive/gamehive/pkg/slogx"
)

// BuildVersion is overridable at build time via -ldflags "-X ...".
var BuildVersion = "v0.1.0"

// Application wires the session store, service client and auth flow behind a
// line-oriented terminal front-end.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store *session.Store
	api   *authapi.Client
	ctrl  *flow.Controller

	in  *bufio.Reader
	out io.Writer
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gamehive-client",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}

	// Master key for sealing stored sessions
	cryptox.SetMasterKeyPath(cfg.MasterKeyPath)

	if err := os.MkdirAll(filepath.Dir(cfg.SessionFile), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	store, err := session.Open(cfg.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	app.store = store

	app.api = authapi.NewClient(cfg.ServiceURL)
	app.api.HTTPClient.Timeout = cfg.HTTPTimeout
	app.api.HTTPClient.Transport = slogx.NewTransport(nil, app.logger)

	app.ctrl = flow.NewController(app.api, app.store, app.logger)
	return app, nil
}

// Run drives the auth flow until a session exists or the user quits.
func (app *Application) Run() error {
	defer app.store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if health, err := app.api.Health(ctx); err != nil {
		app.logger.Warn("service health probe failed", "error", err)
	} else {
		app.logger.Debug("service reachable", "status", health.Status)
	}

	// A stored, unexpired session skips the flow entirely.
	if sess, err := app.store.Load(ctx); err == nil {
		if !sess.Stale(time.Now()) {
			fmt.Fprintf(app.out, "Welcome back, %s!\n", sess.User.Username)
			return nil
		}
		app.logger.Info("stored session expired", "username", sess.User.Username)
		if err := app.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
	}

	for ctx.Err() == nil {
		switch app.ctrl.Step() {
		case flow.StepForm:
			quit, err := app.runForm(ctx)
			if err != nil || quit {
				return err
			}
		case flow.StepOTP:
			if err := app.runVerify(ctx); err != nil {
				return err
			}
		case flow.StepForgotPassword:
			if err := app.runForgot(ctx); err != nil {
				return err
			}
		case flow.StepSuccess:
			username, _ := app.ctrl.Done()
			fmt.Fprintf(app.out, "Welcome, %s! You are signed in.\n", username)
			return nil
		}
	}
	return ctx.Err()
}

// ============================================================================
// Form step
// ============================================================================

func (app *Application) runForm(ctx context.Context) (quit bool, err error) {
	form := app.ctrl.Form()
	fmt.Fprintf(app.out, "\n[%s] (l)ogin, (s)ignup, (f)orgot password, (q)uit\n", form.Mode())
	choice, err := promptLine(app.in, app.out, "choice")
	if err != nil {
		return false, err
	}

	switch choice {
	case "q", "quit":
		return true, nil
	case "l", "login":
		app.ctrl.SwitchMode(flow.ModeLogin)
		return false, nil
	case "s", "signup":
		app.ctrl.SwitchMode(flow.ModeSignup)
		return false, nil
	case "f", "forgot":
		app.ctrl.StartForgotPassword()
		return false, nil
	case "", "go":
		// Fall through to credential entry
	default:
		fmt.Fprintf(app.out, "Unknown choice %q\n", choice)
		return false, nil
	}

	if err := app.collectCredentials(form); err != nil {
		return false, err
	}

	if err := app.ctrl.SubmitCredentials(ctx); err != nil {
		app.printFormErrors(form)
		return false, nil
	}
	return false, nil
}

func (app *Application) collectCredentials(form *flow.CredentialsForm) error {
	fields := []struct {
		field  flow.Field
		prompt string
		secret bool
	}{
		{flow.FieldUsername, "Username", false},
		{flow.FieldEmail, "Email", false},
		{flow.FieldPassword, "Password", true},
		{flow.FieldConfirmPassword, "Confirm password", true},
	}

	for _, f := range fields {
		if form.Mode() == flow.ModeLogin &&
			(f.field == flow.FieldUsername || f.field == flow.FieldConfirmPassword) {
			continue
		}
		read := promptLine
		if f.secret {
			read = promptPassword
		}
		value, err := read(app.in, app.out, f.prompt)
		if err != nil {
			return err
		}
		form.Set(f.field, value)
	}
	return nil
}

func (app *Application) printFormErrors(form *flow.CredentialsForm) {
	for _, field := range []flow.Field{
		flow.FieldUsername, flow.FieldEmail,
		flow.FieldPassword, flow.FieldConfirmPassword,
	} {
		if msg := form.FieldError(field); msg != "" {
			fmt.Fprintf(app.out, "  %s: %s\n", field, msg)
		}
	}
	if msg := form.GeneralError(); msg != "" {
		fmt.Fprintf(app.out, "  %s\n", msg)
	}
}

// ============================================================================
// OTP step
// ============================================================================

func (app *Application) runVerify(ctx context.Context) error {
	verify := app.ctrl.Verify()
	if verify == nil {
		return nil
	}

	if notice := verify.Notice(); notice != "" {
		fmt.Fprintf(app.out, "  %s\n", notice)
	}
	fmt.Fprintf(app.out, "\nA code was sent to %s.\n", verify.Email())
	line, err := promptLine(app.in, app.out, "code (r to resend, b to go back)")
	if err != nil {
		return err
	}

	switch line {
	case "b", "back":
		app.ctrl.Back()
		return nil
	case "r", "resend":
		if err := verify.Resend(ctx); err != nil || verify.Error() != "" {
			fmt.Fprintf(app.out, "  %s\n", verify.Error())
		}
		return nil
	}

	if !enterCode(verify.EnterDigit, line) {
		fmt.Fprintln(app.out, "  Please enter exactly 6 digits")
		return nil
	}
	if err := verify.Verify(ctx); err != nil {
		fmt.Fprintf(app.out, "  %s\n", verify.Error())
	}
	return nil
}

// enterCode types a whole line into a slot widget. It reports false when the
// line is not exactly one digit per slot.
func enterCode(enter func(int, string) bool, line string) bool {
	if len(line) != flow.CodeLength {
		return false
	}
	for i, r := range line {
		if !enter(i, string(r)) {
			return false
		}
	}
	return true
}

// ============================================================================
// Forgot password steps
// ============================================================================

func (app *Application) runForgot(ctx context.Context) error {
	forgot := app.ctrl.Forgot()
	if forgot == nil {
		return nil
	}

	if notice := forgot.Notice(); notice != "" {
		fmt.Fprintf(app.out, "  %s\n", notice)
	}

	switch forgot.Step() {
	case flow.ResetStepEmail:
		return app.runForgotEmail(ctx, forgot)
	case flow.ResetStepOTP:
		return app.runForgotOTP(ctx, forgot)
	case flow.ResetStepReset:
		return app.runForgotReset(ctx, forgot)
	case flow.ResetStepSuccess:
		return app.waitForCompletion(ctx)
	}
	return nil
}

func (app *Application) runForgotEmail(ctx context.Context, forgot *flow.ForgotFlow) error {
	fmt.Fprintln(app.out, "\nPassword reset")
	line, err := promptLine(app.in, app.out, "email (b to go back)")
	if err != nil {
		return err
	}
	if line == "b" || line == "back" {
		app.ctrl.Back()
		return nil
	}

	forgot.SetEmail(line)
	if err := forgot.SubmitEmail(ctx); err != nil || forgot.Error() != "" {
		fmt.Fprintf(app.out, "  %s\n", forgot.Error())
	}
	return nil
}

func (app *Application) runForgotOTP(ctx context.Context, forgot *flow.ForgotFlow) error {
	fmt.Fprintf(app.out, "\nA reset code was sent to %s.\n", forgot.Email())
	line, err := promptLine(app.in, app.out, "code (r to resend, b to go back)")
	if err != nil {
		return err
	}

	switch line {
	case "b", "back":
		app.ctrl.Back()
		return nil
	case "r", "resend":
		if err := forgot.Resend(ctx); err != nil || forgot.Error() != "" {
			fmt.Fprintf(app.out, "  %s\n", forgot.Error())
		}
		return nil
	}

	if !enterCode(forgot.EnterDigit, line) {
		fmt.Fprintln(app.out, "  Please enter exactly 6 digits")
		return nil
	}
	forgot.AdvanceOTP()
	if msg := forgot.Error(); msg != "" {
		fmt.Fprintf(app.out, "  %s\n", msg)
	}
	return nil
}

func (app *Application) runForgotReset(ctx context.Context, forgot *flow.ForgotFlow) error {
	fmt.Fprintln(app.out, "\nChoose a new password (b to go back)")
	newPass, err := promptPassword(app.in, app.out, "New password")
	if err != nil {
		return err
	}
	if newPass == "b" {
		app.ctrl.Back()
		return nil
	}
	confirm, err := promptPassword(app.in, app.out, "Confirm new password")
	if err != nil {
		return err
	}

	forgot.SetPassword(flow.FieldNewPassword, newPass)
	forgot.SetPassword(flow.FieldConfirmPassword, confirm)
	if err := forgot.SubmitNewPassword(ctx); err != nil {
		fmt.Fprintf(app.out, "  %s\n", forgot.Error())
		return nil
	}
	for _, field := range []flow.Field{flow.FieldNewPassword, flow.FieldConfirmPassword} {
		if msg := forgot.FieldError(field); msg != "" {
			fmt.Fprintf(app.out, "  %s\n", msg)
		}
	}
	if forgot.Step() == flow.ResetStepSuccess {
		fmt.Fprintln(app.out, "  Password reset successful!")
	}
	return nil
}

// waitForCompletion blocks while the terminal success step is displayed,
// until the controller takes over.
func (app *Application) waitForCompletion(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if _, done := app.ctrl.Done(); done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
