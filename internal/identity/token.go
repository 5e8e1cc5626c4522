// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider takes the user from a session JWT issued by an external
// sign-in service. The "sub" claim is the user id ("user_id" is accepted
// as well); "name" or "email" become the display name.
//
// With a secret the token must be HS256-signed with it. Without one the
// claims are read unverified and only expiry is checked; the backend
// remains responsible for authorizing the id.
type TokenProvider struct {
	mu      sync.Mutex
	token   string
	secret  []byte
	current *User
	now     func() time.Time
}

// NewTokenProvider creates a TokenProvider.
func NewTokenProvider(token, secret string) *TokenProvider {
	p := &TokenProvider{token: strings.TrimSpace(token), now: time.Now}
	if secret != "" {
		p.secret = []byte(secret)
	}
	return p
}

// Current implements Provider.
func (p *TokenProvider) Current() (User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return User{}, ErrSignedOut
	}
	return *p.current, nil
}

// SignIn implements Provider.
func (p *TokenProvider) SignIn(context.Context) (User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token == "" {
		return User{}, fmt.Errorf("%w: no token configured", ErrInvalidToken)
	}
	claims, err := p.parse()
	if err != nil {
		return User{}, err
	}

	id, _ := claims.GetSubject()
	if id == "" {
		id, _ = claims["user_id"].(string)
	}
	if id == "" {
		return User{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	u := User{ID: id}
	if name, ok := claims["name"].(string); ok {
		u.DisplayName = name
	} else if email, ok := claims["email"].(string); ok {
		u.DisplayName = email
	}
	p.current = &u
	return u, nil
}

func (p *TokenProvider) parse() (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	if p.secret != nil {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(p.now),
		)
		token, err := parser.ParseWithClaims(p.token, claims, func(t *jwt.Token) (interface{}, error) {
			return p.secret, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		if !token.Valid {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	if _, _, err := jwt.NewParser().ParseUnverified(p.token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if exp != nil && !p.now().Before(exp.Time) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}
	return claims, nil
}

// SignOut implements Provider. The token is kept so SignIn works again.
func (p *TokenProvider) SignOut() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
}
