package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/gestao-escolar-api/internal/models"
)

// ErrInvalidCredentials is returned by identity providers for a wrong
// username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUnknownIdentity is returned when a username is not registered.
var ErrUnknownIdentity = errors.New("unknown identity")

// IdentityProvider resolves and authenticates API accounts.
type IdentityProvider interface {
	Authenticate(ctx context.Context, username, password string) (*models.Identity, error)
	Lookup(ctx context.Context, username string) (*models.Identity, error)
}

// StaticIdentityProvider serves a fixed, read-only set of accounts held in
// memory. Passwords are only kept as bcrypt hashes.
type StaticIdentityProvider struct {
	identities map[string]models.Identity
	decoyHash  []byte
}

// NewStaticIdentityProvider hashes the administrator password once and
// returns a provider holding that single account.
func NewStaticIdentityProvider(username, password string, cost int) (*StaticIdentityProvider, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("admin username and password are required")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte(username+password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash decoy password: %w", err)
	}
	return &StaticIdentityProvider{
		identities: map[string]models.Identity{
			username: {Username: username, PasswordHash: string(hash), Admin: true},
		},
		decoyHash: decoy,
	}, nil
}

// Authenticate checks the password against the stored hash.
func (p *StaticIdentityProvider) Authenticate(ctx context.Context, username, password string) (*models.Identity, error) {
	identity, ok := p.identities[username]
	if !ok {
		// Unknown users pay for one bcrypt comparison as well.
		_ = bcrypt.CompareHashAndPassword(p.decoyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &identity, nil
}

// Lookup returns the identity registered under username.
func (p *StaticIdentityProvider) Lookup(ctx context.Context, username string) (*models.Identity, error) {
	identity, ok := p.identities[username]
	if !ok {
		return nil, ErrUnknownIdentity
	}
	return &identity, nil
}
