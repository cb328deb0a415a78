// Package auth decides who may log in and who holds administrator rights.
//
// Login is deliberately weak: an address is accepted when it ends with the
// configured university domain. There is no password.
package auth

import (
	"errors"
	"strings"
)

var ErrInvalidDomain = errors.New("email domain not allowed")

type Gate struct {
	allowedDomain string
}

func NewGate(allowedDomain string) *Gate {
	return &Gate{allowedDomain: allowedDomain}
}

// Login validates email and returns the identity to bind to the session.
// The address is matched byte for byte against the domain suffix and is
// used unchanged as the identity.
func (g *Gate) Login(email string) (string, error) {
	if !strings.HasSuffix(email, g.allowedDomain) {
		return "", ErrInvalidDomain
	}

	return email, nil
}

func (g *Gate) AllowedDomain() string {
	return g.allowedDomain
}

// Policy answers role questions about an identity.
type Policy struct {
	admins map[string]struct{}
}

func NewPolicy(adminEmails ...string) *Policy {
	p := &Policy{admins: make(map[string]struct{}, len(adminEmails))}
	for _, e := range adminEmails {
		p.admins[e] = struct{}{}
	}
	return p
}

func (p *Policy) IsAdmin(identity string) bool {
	if identity == "" {
		return false
	}
	_, ok := p.admins[identity]
	return ok
}
