package session

import (
	"testing"
	"time"

	"github.com/gamehive/gamehive/pkg/authapi"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("applies defaults for omitted fields", func(t *testing.T) {
		u := Normalize(authapi.User{ID: "u1", Username: "gamer1", Email: "a@test.com"})

		assert.Equal(t, "u1", u.ID)
		assert.Nil(t, u.Picture)
		assert.True(t, u.IsActive)
		assert.NotNil(t, u.JoinedCommunities)
		assert.Empty(t, u.JoinedCommunities)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		pic := "https://cdn.example/p.png"
		inactive := false
		u := Normalize(authapi.User{
			ID:                "u2",
			Picture:           &pic,
			IsActive:          &inactive,
			JoinedCommunities: []string{"c1", "c2"},
		})

		require.NotNil(t, u.Picture)
		assert.Equal(t, pic, *u.Picture)
		assert.False(t, u.IsActive)
		assert.Equal(t, []string{"c1", "c2"}, u.JoinedCommunities)
	})

	t.Run("falls back to legacy id", func(t *testing.T) {
		u := Normalize(authapi.User{LegacyID: "u3"})
		assert.Equal(t, "u3", u.ID)
	})
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	t.Run("jwt with exp", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		got, ok := TokenExpiry(signedToken(t, exp))
		require.True(t, ok)
		assert.WithinDuration(t, exp, got, time.Second)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := TokenExpiry("not-a-jwt")
		assert.False(t, ok)
	})
}

func TestSessionStale(t *testing.T) {
	t.Parallel()

	now := time.Now()

	expired := &Session{Token: signedToken(t, now.Add(-time.Minute))}
	assert.True(t, expired.Stale(now))

	fresh := &Session{Token: signedToken(t, now.Add(time.Hour))}
	assert.False(t, fresh.Stale(now))

	// Opaque tokens can only be judged by the service
	opaque := &Session{Token: "t1"}
	assert.False(t, opaque.Stale(now))
}
