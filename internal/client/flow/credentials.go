package flow

import (
	"regexp"
	"strings"
	"sync"
)

// Mode selects which credential form is active.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

// Field identifies a form input for per-field error reporting.
type Field string

const (
	FieldUsername        Field = "username"
	FieldEmail           Field = "email"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldNewPassword     Field = "newPassword"
)

// Validation messages surfaced inline under the offending input.
const (
	msgUsernameRequired = "Username is required"
	msgUsernameTooShort = "Username must be at least 3 characters"
	msgEmailRequired    = "Email is required"
	msgEmailInvalid     = "Please enter a valid email address"
	msgPasswordRequired = "Password is required"
	msgPasswordTooShort = "Password must be at least 6 characters"
	msgConfirmRequired  = "Please confirm your password"
	msgPasswordMismatch = "Passwords do not match"
)

// msgNetworkFailure is the general notice for transport-level failures; it
// never attaches to a field.
const msgNetworkFailure = "Unable to reach GameHive. Check your connection and try again."

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

// emailShape is the basic local@domain.tld check applied before any network
// call. The service performs the authoritative validation.
var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CredentialsForm holds the signup/login form state: field values, per-field
// errors and a general error line. A field's error clears as soon as that
// field is edited again; other errors are untouched.
type CredentialsForm struct {
	mu sync.Mutex

	mode       Mode
	values     map[Field]string
	fieldErrs  map[Field]string
	generalErr string
}

func NewCredentialsForm(mode Mode) *CredentialsForm {
	return &CredentialsForm{
		mode:      mode,
		values:    make(map[Field]string),
		fieldErrs: make(map[Field]string),
	}
}

func (f *CredentialsForm) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Set updates a field value and clears any error attached to that field.
func (f *CredentialsForm) Set(field Field, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[field] = value
	delete(f.fieldErrs, field)
}

func (f *CredentialsForm) Value(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// FieldError returns the inline error for a field, or "".
func (f *CredentialsForm) FieldError(field Field) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs[field]
}

// GeneralError returns the non-field error banner, or "".
func (f *CredentialsForm) GeneralError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generalErr
}

// validate runs the synchronous client-side checks and collects every
// violation rather than stopping at the first. Returns nil when the form is
// submittable.
func (f *CredentialsForm) validate() map[Field]string {
	errs := make(map[Field]string)

	if f.mode == ModeSignup {
		username := strings.TrimSpace(f.values[FieldUsername])
		switch {
		case username == "":
			errs[FieldUsername] = msgUsernameRequired
		case len(username) < minUsernameLen:
			errs[FieldUsername] = msgUsernameTooShort
		}

		confirm := f.values[FieldConfirmPassword]
		switch {
		case confirm == "":
			errs[FieldConfirmPassword] = msgConfirmRequired
		case confirm != f.values[FieldPassword]:
			errs[FieldConfirmPassword] = msgPasswordMismatch
		}
	}

	email := strings.TrimSpace(f.values[FieldEmail])
	switch {
	case email == "":
		errs[FieldEmail] = msgEmailRequired
	case !emailShape.MatchString(email):
		errs[FieldEmail] = msgEmailInvalid
	}

	password := f.values[FieldPassword]
	switch {
	case password == "":
		errs[FieldPassword] = msgPasswordRequired
	case len(password) < minPasswordLen:
		errs[FieldPassword] = msgPasswordTooShort
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// isTakenEmailMessage special-cases the known server message pattern for a
// duplicate address so it attaches to the email field instead of the banner.
func isTakenEmailMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "email") && strings.Contains(lower, "already")
}
