// Package session associates a browser with an authenticated email address.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var ErrNoSession = errors.New("no session")

// Store loads, saves and clears the identity bound to a request's session.
type Store interface {
	// Load returns the email bound to the request, or ErrNoSession when the
	// request carries no valid session.
	Load(ctx context.Context, r *http.Request) (string, error)
	Save(ctx context.Context, w http.ResponseWriter, email string) error
	Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

const cookieName = "session"

func newCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// expiredCookie instructs the browser to delete the session cookie.
func expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
