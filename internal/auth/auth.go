package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"burza/internal/config"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed verification; callers get
// no hint about which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is what a caller presents.
type Credentials struct {
	Email    string
	Password string
}

// Identity is the verified principal.
type Identity struct {
	Email string
	Role  string
}

// Authenticator verifies credentials. The single-admin setup below is one
// implementation; a real identity provider can slot in behind the same
// interface.
type Authenticator interface {
	Verify(ctx context.Context, creds Credentials) (*Identity, error)
}

// Static authenticates the one admin account from configuration. A bcrypt
// hash takes precedence over the plaintext password when both are set.
type Static struct {
	email        string
	password     string
	passwordHash string
}

func NewStatic(cfg config.AdminConfig) *Static {
	return &Static{
		email:        cfg.Email,
		password:     cfg.Password,
		passwordHash: cfg.PasswordHash,
	}
}

func (s *Static) Verify(ctx context.Context, creds Credentials) (*Identity, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(creds.Email), []byte(s.email)) == 1

	var passwordOK bool
	if s.passwordHash != "" {
		passwordOK = bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(creds.Password)) == nil
	} else {
		passwordOK = subtle.ConstantTimeCompare([]byte(creds.Password), []byte(s.password)) == 1
	}

	if !emailOK || !passwordOK {
		return nil, ErrInvalidCredentials
	}
	return &Identity{Email: s.email, Role: "admin"}, nil
}
