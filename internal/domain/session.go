package domain

import "time"

// User is the authenticated identity carried by a session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session holds the credentials of a signed-in user.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         User      `json:"user"`
}

// Expired reports whether the session has an expiry that lies before now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Profile holds server-side account attributes.
type Profile struct {
	ID    string `json:"id"`
	IsPro bool   `json:"isPro"`
}
