package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	emailClaim = "email"
	expClaim   = "exp"
)

// CookieStore keeps the identity inside an HMAC signed JWT cookie.
type CookieStore struct {
	signingKey []byte
	ttl        time.Duration
}

func NewCookieStore(signingKey []byte, ttl time.Duration) *CookieStore {
	return &CookieStore{signingKey: signingKey, ttl: ttl}
}

func (s *CookieStore) Load(_ context.Context, r *http.Request) (string, error) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}

	email, err := s.verifyToken(c.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	return email, nil
}

func (s *CookieStore) Save(_ context.Context, w http.ResponseWriter, email string) error {
	token, err := s.createToken(email)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	http.SetCookie(w, newCookie(token, s.ttl))
	return nil
}

func (s *CookieStore) Clear(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	http.SetCookie(w, expiredCookie())
	return nil
}

func (s *CookieStore) createToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		emailClaim: email,
		expClaim:   time.Now().Add(s.ttl).Unix(),
	})

	return token.SignedString(s.signingKey)
}

func (s *CookieStore) verifyToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	email, ok := claims[emailClaim].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("invalid email claim")
	}

	return email, nil
}
