// Package auth turns an access token issued by the remote backend into a
// local session.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskdeck/internal/domain"
	"taskdeck/internal/errors"
)

// Claims are the access token claims the session is built from.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Decoder builds sessions from access tokens. With a secret the HS256
// signature and expiry are verified; without one the token is only decoded.
type Decoder struct {
	secret []byte
	now    func() time.Time
}

// NewDecoder creates a Decoder. An empty secret disables verification.
func NewDecoder(secret string) *Decoder {
	d := &Decoder{now: time.Now}
	if secret != "" {
		d.secret = []byte(secret)
	}
	return d
}

// Session parses accessToken and returns the session it describes.
func (d *Decoder) Session(accessToken, refreshToken string) (*domain.Session, error) {
	claims := &Claims{}
	if err := d.parse(accessToken, claims); err != nil {
		return nil, errors.NewValidationError("invalid access token", err)
	}

	if claims.Subject == "" {
		return nil, errors.NewInvalidInputError("token", "sub", "access token has no subject")
	}

	session := &domain.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         domain.User{ID: claims.Subject, Email: claims.Email},
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if session.Expired(d.now()) {
		return nil, errors.NewValidationError("access token expired", nil)
	}
	return session, nil
}

func (d *Decoder) parse(token string, claims *Claims) error {
	if d.secret == nil {
		_, _, err := jwt.NewParser().ParseUnverified(token, claims)
		return err
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return d.secret, nil
	}, jwt.WithTimeFunc(d.now))
	return err
}
