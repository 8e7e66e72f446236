package session

import "github.com/gamehive/gamehive/pkg/authapi"

// User is the normalized local form of an account record. It is what gets
// persisted under the "user" key and what the rest of the client reads.
type User struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Picture           *string  `json:"picture"`
	CoverPhoto        *string  `json:"coverPhoto"`
	JoinedCommunities []string `json:"joinedCommunities"`
	IsActive          bool     `json:"isActive"`
}

// Normalize converts a wire user record into its canonical local form.
// The service is inconsistent about optional fields, so defaults are applied
// here, once, before anything is persisted:
//
//   - id falls back to the legacy "_id" field
//   - picture stays null when unset (never the empty string)
//   - isActive defaults to true when omitted
//   - joinedCommunities defaults to an empty list, never nil
func Normalize(u authapi.User) User {
	id := u.ID
	if id == "" {
		id = u.LegacyID
	}

	isActive := true
	if u.IsActive != nil {
		isActive = *u.IsActive
	}

	communities := u.JoinedCommunities
	if communities == nil {
		communities = []string{}
	}

	return User{
		ID:                id,
		Username:          u.Username,
		Email:             u.Email,
		Picture:           u.Picture,
		CoverPhoto:        u.CoverPhoto,
		JoinedCommunities: communities,
		IsActive:          isActive,
	}
}
