package authapi

import (
	"context"
	"strings"
)

// NormalizeEmail canonicalizes an email address the way the service expects
// it: surrounding whitespace trimmed and the whole address lower-cased.
// Every call in this file applies it, so callers may pass raw form input.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a pending account. On success the service has dispatched an
// OTP to the given email; the account has no session until VerifyOTP
// confirms the code.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	req.Email = NormalizeEmail(req.Email)
	return c.postJSON(ctx, "/auth/signup", req, nil)
}

// Login checks credentials and, on success, dispatches a login OTP
// out-of-band. As with Signup, no session exists until the code is verified.
func (c *Client) Login(ctx context.Context, req LoginRequest) error {
	req.Email = NormalizeEmail(req.Email)
	return c.postJSON(ctx, "/auth/login", req, nil)
}

// VerifyOTP submits an entered code for the given purpose. On success the
// returned AuthResult carries the finalized session token and user record.
// Returns ErrIncompletePayload if the service reported success without both.
func (c *Client) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error) {
	req.Email = NormalizeEmail(req.Email)

	var result AuthResult
	if err := c.postJSON(ctx, "/auth/verify-otp", req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" || (result.User.ID == "" && result.User.LegacyID == "") {
		return nil, ErrIncompletePayload
	}
	return &result, nil
}

// ResendOTP asks the service to reissue the code for a pending verification.
// The previous code is invalidated server-side.
func (c *Client) ResendOTP(ctx context.Context, email string, purpose Purpose) error {
	req := ResendOTPRequest{
		Email:   NormalizeEmail(email),
		Purpose: purpose,
	}
	return c.postJSON(ctx, "/auth/resend-otp", req, nil)
}

// ForgotPassword requests a password reset code for the account's email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	req := ForgotPasswordRequest{Email: NormalizeEmail(email)}
	return c.postJSON(ctx, "/auth/forgot-password", req, nil)
}

// ResetPassword consumes the reset code and sets a new password. This is the
// point where the OTP entered during the reset flow is actually checked by
// the service; a wrong or expired code surfaces here as an *APIError.
// On success the returned AuthResult finalizes a session, exactly as with
// VerifyOTP.
func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*AuthResult, error) {
	req.Email = NormalizeEmail(req.Email)

	var result AuthResult
	if err := c.postJSON(ctx, "/auth/reset-password", req, &result); err != nil {
		return nil, err
	}
	if result.Token == "" || (result.User.ID == "" && result.User.LegacyID == "") {
		return nil, ErrIncompletePayload
	}
	return &result, nil
}

// Health probes the service health endpoint. The front-end uses this to
// report connectivity before starting a flow.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.getJSON(ctx, "/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}
