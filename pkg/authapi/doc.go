/*
Package authapi provides a typed client for the GameHive authentication
service REST API.

# Overview

The remote service owns accounts, OTP records and sessions. This package only
shapes requests and interprets responses; it never inspects or judges OTP
codes locally. All endpoints respond with a JSON envelope:

	{"success": bool, "message": "...", "data": {...}}

Create a Client to talk to the service:

	client := authapi.NewClient("https://api.gamehive.example")

	// Begin a signup; the service dispatches an OTP out-of-band.
	err := client.Signup(ctx, authapi.SignupRequest{
		Username:        "gamer1",
		Email:           "gamer1@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})

	// Confirm the emailed code and receive a session.
	result, err := client.VerifyOTP(ctx, authapi.VerifyOTPRequest{
		Email:   "gamer1@example.com",
		OTP:     "123456",
		Purpose: authapi.PurposeSignup,
	})

# Error Handling

Server rejections are returned as *APIError carrying the HTTP status code and
the server-provided message. Transport failures (DNS, timeout, refused
connections) are returned as wrapped *url.Error values; use IsNetworkError to
tell the two apart:

	if err := client.ResendOTP(ctx, email, authapi.PurposeLogin); err != nil {
		if authapi.IsNetworkError(err) {
			// connectivity problem, nothing reached the service
		}
		var apiErr *authapi.APIError
		if errors.As(err, &apiErr) {
			// the service rejected the request; apiErr.Message is user-facing
		}
	}

# Request IDs

Every request carries a ULID X-Request-ID header so client and service logs
can be correlated. Wrap the HTTP client's transport with slogx.NewTransport to
log each call.
*/
package authapi
