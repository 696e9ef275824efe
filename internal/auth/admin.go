// Package auth guards the administrative endpoints of the dashboard.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrTokenRequired = errors.New("admin token required")
	ErrTokenInvalid  = errors.New("invalid admin token")
)

// AdminGuard compares presented tokens against a configured bcrypt hash.
// An empty hash disables the check.
type AdminGuard struct {
	hash []byte
}

func NewAdminGuard(hash string) *AdminGuard {
	return &AdminGuard{hash: []byte(hash)}
}

func (g *AdminGuard) Enabled() bool { return g != nil && len(g.hash) > 0 }

func (g *AdminGuard) Check(token string) error {
	if !g.Enabled() {
		return nil
	}
	if token == "" {
		return ErrTokenRequired
	}
	if bcrypt.CompareHashAndPassword(g.hash, []byte(token)) != nil {
		return ErrTokenInvalid
	}
	return nil
}
