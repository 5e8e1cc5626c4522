// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity supplies the signed-in user.
//
// The rest of helix only needs an opaque user id and a sign-in/sign-out
// control; a Provider gives it both. Static takes the id from configuration
// or the environment; TokenProvider reads it from a session token.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"strings"
	"sync"
)

// EnvUserID overrides the configured user id for Static.
const EnvUserID = "HELIX_USER_ID"

// Provider kinds accepted by New.
const (
	KindStatic = "static"
	KindToken  = "token"
)

// Error variables for identity failures.
var (
	// ErrSignedOut indicates there is no current user.
	ErrSignedOut = errors.New("signed out")

	// ErrInvalidToken indicates the session token could not be used.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrNoUser indicates no user id could be resolved from any source.
	ErrNoUser = errors.New("no user id configured")
)

// User is a signed-in identity.
type User struct {
	ID          string
	DisplayName string
}

// Label is the name shown in the header.
func (u User) Label() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// Provider yields the current user and switches between signed in and out.
type Provider interface {
	// Current returns the signed-in user or ErrSignedOut.
	Current() (User, error)
	// SignIn resolves and returns the user.
	SignIn(ctx context.Context) (User, error)
	// SignOut forgets the current user.
	SignOut()
}

// New builds the provider named by kind. An empty kind means KindStatic.
func New(kind, userID, displayName, token, secret string) (Provider, error) {
	switch strings.ToLower(kind) {
	case "", KindStatic:
		return NewStatic(userID, displayName), nil
	case KindToken:
		return NewTokenProvider(token, secret), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", kind)
	}
}

// =============================================================================
// STATIC PROVIDER
// =============================================================================

// Static resolves the user id from, in order: the configured id, the
// HELIX_USER_ID environment variable, the OS user name.
type Static struct {
	mu          sync.Mutex
	configured  string
	displayName string
	current     *User

	lookupEnv func(string) (string, bool)
	osUser    func() (string, error)
}

// NewStatic creates a Static provider.
func NewStatic(userID, displayName string) *Static {
	return &Static{
		configured:  strings.TrimSpace(userID),
		displayName: displayName,
		lookupEnv:   os.LookupEnv,
		osUser: func() (string, error) {
			u, err := user.Current()
			if err != nil {
				return "", err
			}
			return u.Username, nil
		},
	}
}

// Current implements Provider.
func (s *Static) Current() (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return User{}, ErrSignedOut
	}
	return *s.current, nil
}

// SignIn implements Provider.
func (s *Static) SignIn(context.Context) (User, error) {
	id, err := s.resolve()
	if err != nil {
		return User{}, err
	}
	u := User{ID: id, DisplayName: s.displayName}

	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()
	return u, nil
}

func (s *Static) resolve() (string, error) {
	if s.configured != "" {
		return s.configured, nil
	}
	if v, ok := s.lookupEnv(EnvUserID); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	name, err := s.osUser()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoUser, err)
	}
	if name == "" {
		return "", ErrNoUser
	}
	return name, nil
}

// SignOut implements Provider.
func (s *Static) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}
