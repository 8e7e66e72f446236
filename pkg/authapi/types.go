package authapi

import "encoding/json"

// ============================================================================
// Purpose
// ============================================================================

// Purpose identifies which flow an OTP belongs to. The service scopes each
// issued code to a (email, purpose) pair, so a login code cannot confirm a
// signup and vice versa.
type Purpose string

const (
	PurposeSignup         Purpose = "signup"
	PurposeLogin          Purpose = "login"
	PurposeForgotPassword Purpose = "forgot-password"
)

// ============================================================================
// Envelope
// ============================================================================

// envelope is the JSON wrapper every service response uses.
// Data is left raw so each call can decode its own payload shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ============================================================================
// Request Types
// ============================================================================

// SignupRequest creates a pending account. The service dispatches an OTP to
// the given email out-of-band; no session exists until the code is verified.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest authenticates credentials. As with signup, success only means
// an OTP was dispatched; the session is created by VerifyOTP.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest confirms an emailed code and finalizes the session.
type VerifyOTPRequest struct {
	Email   string  `json:"email"`
	OTP     string  `json:"otp"`
	Purpose Purpose `json:"purpose"`
}

// ResendOTPRequest asks the service to reissue the code for a pending
// verification.
type ResendOTPRequest struct {
	Email   string  `json:"email"`
	Purpose Purpose `json:"purpose"`
}

// ForgotPasswordRequest starts the password reset flow by requesting a reset
// code for the account's email.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest consumes the reset code and sets a new password.
// This is the only call in the reset flow that transmits the OTP; the code is
// checked server-side here, not earlier.
type ResetPasswordRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ============================================================================
// Response Types
// ============================================================================

// User is the wire form of a user record as the service returns it. Optional
// fields are pointers so a missing field can be told apart from a zero one;
// session.Normalize applies the documented defaults.
//
// Some service versions return the identifier as "_id" rather than "id", so
// both are accepted.
type User struct {
	ID                string   `json:"id"`
	LegacyID          string   `json:"_id,omitempty"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Picture           *string  `json:"picture"`
	CoverPhoto        *string  `json:"coverPhoto"`
	JoinedCommunities []string `json:"joinedCommunities"`
	IsActive          *bool    `json:"isActive"`
}

// AuthResult is the payload of a successful verify-otp or reset-password
// call: the finalized session token and the user it belongs to.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// HealthResponse is returned by the service health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
