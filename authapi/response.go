package authapi

import (
	"encoding/json"

	"github.com/medibook/go-client/session"
)

// AuthResponse is the payload the auth API returns from both /auth/login and
// /auth/register. The id is accepted as either a JSON number or a string;
// downstream it is an opaque identifier.
type AuthResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken,omitempty"`
	ID           json.Number `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	Role         string      `json:"role"`
	FullName     string      `json:"fullName"`
}

// Session converts the response into a session ready for persistence. The
// role is normalized here so storage only ever sees the canonical form.
func (a *AuthResponse) Session() *session.Session {
	return &session.Session{
		UserID:       a.ID.String(),
		Username:     a.Username,
		Email:        a.Email,
		Role:         session.Role(a.Role).Normalize(),
		FullName:     a.FullName,
		AccessToken:  a.Token,
		RefreshToken: a.RefreshToken,
	}
}

// RegisterRequest is the payload for /auth/register. Role is optional; the
// server defaults new accounts to PATIENT.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Role     string `json:"role,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
