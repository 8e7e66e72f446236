package flow

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialValidationGating(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		values  map[Field]string
		wantErr map[Field]string
	}{
		{
			name: "signup short password blocks submission",
			mode: ModeSignup,
			values: map[Field]string{
				FieldUsername:        "gamer1",
				FieldEmail:           "a@test.com",
				FieldPassword:        "abc",
				FieldConfirmPassword: "abc",
			},
			wantErr: map[Field]string{FieldPassword: msgPasswordTooShort},
		},
		{
			name:   "signup empty form collects every violation",
			mode:   ModeSignup,
			values: map[Field]string{},
			wantErr: map[Field]string{
				FieldUsername:        msgUsernameRequired,
				FieldEmail:           msgEmailRequired,
				FieldPassword:        msgPasswordRequired,
				FieldConfirmPassword: msgConfirmRequired,
			},
		},
		{
			name: "signup username too short",
			mode: ModeSignup,
			values: map[Field]string{
				FieldUsername:        "ab",
				FieldEmail:           "a@test.com",
				FieldPassword:        "secret1",
				FieldConfirmPassword: "secret1",
			},
			wantErr: map[Field]string{FieldUsername: msgUsernameTooShort},
		},
		{
			name: "signup mismatched confirmation",
			mode: ModeSignup,
			values: map[Field]string{
				FieldUsername:        "gamer1",
				FieldEmail:           "a@test.com",
				FieldPassword:        "abcdef",
				FieldConfirmPassword: "abcdeg",
			},
			wantErr: map[Field]string{FieldConfirmPassword: msgPasswordMismatch},
		},
		{
			name: "login malformed email",
			mode: ModeLogin,
			values: map[Field]string{
				FieldEmail:    "not-an-email",
				FieldPassword: "secret1",
			},
			wantErr: map[Field]string{FieldEmail: msgEmailInvalid},
		},
		{
			name: "login email without tld",
			mode: ModeLogin,
			values: map[Field]string{
				FieldEmail:    "a@test",
				FieldPassword: "secret1",
			},
			wantErr: map[Field]string{FieldEmail: msgEmailInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			c := NewController(env.api, env.store, nil)
			c.SwitchMode(tt.mode)

			for field, value := range tt.values {
				c.Form().Set(field, value)
			}

			err := c.SubmitCredentials(context.Background())
			require.ErrorIs(t, err, ErrValidation)

			for field, want := range tt.wantErr {
				assert.Equal(t, want, c.Form().FieldError(field), "field %s", field)
			}

			// Validation failures must never reach the network
			assert.Zero(t, env.callCount("/auth/signup"))
			assert.Zero(t, env.callCount("/auth/login"))
			assert.Equal(t, StepForm, c.Step())
		})
	}
}

func TestFieldErrorClearsOnEdit(t *testing.T) {
	env := newTestEnv(t, nil)
	c := NewController(env.api, env.store, nil)
	c.SwitchMode(ModeSignup)

	require.ErrorIs(t, c.SubmitCredentials(context.Background()), ErrValidation)
	require.NotEmpty(t, c.Form().FieldError(FieldEmail))
	require.NotEmpty(t, c.Form().FieldError(FieldPassword))

	// Editing one field clears only that field's error
	c.Form().Set(FieldEmail, "a@test.com")
	assert.Empty(t, c.Form().FieldError(FieldEmail))
	assert.NotEmpty(t, c.Form().FieldError(FieldPassword))
}

func TestSubmitCredentialsServerRejection(t *testing.T) {
	t.Run("taken email attaches to the email field", func(t *testing.T) {
		env := newTestEnv(t, map[string]http.HandlerFunc{
			"/auth/signup": func(w http.ResponseWriter, r *http.Request) {
				respondFailure(t, w, http.StatusConflict, "This email is already taken")
			},
		})
		c := NewController(env.api, env.store, nil)
		c.SwitchMode(ModeSignup)
		c.Form().Set(FieldUsername, "gamer1")
		c.Form().Set(FieldEmail, "a@test.com")
		c.Form().Set(FieldPassword, "secret1")
		c.Form().Set(FieldConfirmPassword, "secret1")

		err := c.SubmitCredentials(context.Background())
		require.Error(t, err)

		assert.Equal(t, "This email is already taken", c.Form().FieldError(FieldEmail))
		assert.Empty(t, c.Form().GeneralError())
		// Password entries survive the failure
		assert.Equal(t, "secret1", c.Form().Value(FieldPassword))
		assert.Equal(t, StepForm, c.Step())
	})

	t.Run("other rejections land on the banner", func(t *testing.T) {
		env := newTestEnv(t, map[string]http.HandlerFunc{
			"/auth/login": func(w http.ResponseWriter, r *http.Request) {
				respondFailure(t, w, http.StatusUnauthorized, "Invalid credentials")
			},
		})
		c := NewController(env.api, env.store, nil)
		c.Form().Set(FieldEmail, "a@test.com")
		c.Form().Set(FieldPassword, "wrongpass")

		err := c.SubmitCredentials(context.Background())
		require.Error(t, err)

		assert.Equal(t, "Invalid credentials", c.Form().GeneralError())
		assert.Empty(t, c.Form().FieldError(FieldEmail))
		assert.Equal(t, "wrongpass", c.Form().Value(FieldPassword))
	})

	t.Run("network failure shows connectivity guidance", func(t *testing.T) {
		env := newTestEnv(t, nil)
		c := NewController(env.api, env.store, nil)
		c.Form().Set(FieldEmail, "a@test.com")
		c.Form().Set(FieldPassword, "secret1")

		// Point the client at a closed port
		env.api.BaseURL = "http://127.0.0.1:1"

		err := c.SubmitCredentials(context.Background())
		require.Error(t, err)
		assert.Equal(t, msgNetworkFailure, c.Form().GeneralError())
		assert.Equal(t, StepForm, c.Step())
	})
}

func TestSubmitCredentialsAdvancesToOTP(t *testing.T) {
	env := newTestEnv(t, nil)
	c := NewController(env.api, env.store, nil)
	c.SwitchMode(ModeSignup)
	c.Form().Set(FieldUsername, "gamer1")
	c.Form().Set(FieldEmail, " A@Test.com ")
	c.Form().Set(FieldPassword, "secret1")
	c.Form().Set(FieldConfirmPassword, "secret1")

	require.NoError(t, c.SubmitCredentials(context.Background()))

	require.Equal(t, StepOTP, c.Step())
	require.NotNil(t, c.Verify())
	assert.Equal(t, "a@test.com", c.Verify().Email())
	assert.Equal(t, int64(1), env.callCount("/auth/signup"))

	// Accepting credentials alone never creates a session
	_, err := env.store.Load(context.Background())
	require.Error(t, err)
}

func TestSwitchModeDiscardsFormState(t *testing.T) {
	env := newTestEnv(t, nil)
	c := NewController(env.api, env.store, nil)

	c.Form().Set(FieldEmail, "a@test.com")
	c.SwitchMode(ModeSignup)
	assert.Empty(t, c.Form().Value(FieldEmail))
	assert.Equal(t, ModeSignup, c.Form().Mode())

	// Switching to the current mode is a no-op
	form := c.Form()
	c.SwitchMode(ModeSignup)
	assert.Same(t, form, c.Form())
}
