// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLocalhost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"localhost:5000", true},
		{"127.0.0.1", true},
		{"127.8.9.10", true},
		{"::1", true},
		{"[::1]:5000", true},
		{"0:0:0:0:0:0:0:1", true},
		{"10.0.0.1", false},
		{"api.example.com", false},
		{"localhost.example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLocalhost(tt.host))
		})
	}
}

func TestCheckBaseURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		localOnly bool
		wantErr   error
	}{
		{"loopback local-only", "http://127.0.0.1:5000", true, nil},
		{"remote allowed", "https://api.example.com", false, nil},
		{"remote blocked", "https://api.example.com", true, ErrNonLocalhost},
		{"file scheme", "file:///etc/passwd", false, ErrInvalidURL},
		{"ftp scheme", "ftp://127.0.0.1", false, ErrInvalidURLScheme},
		{"no host", "http://", false, ErrInvalidURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBaseURL(tt.url, tt.localOnly)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckListenAddr(t *testing.T) {
	assert.NoError(t, CheckListenAddr(":5000", false))
	assert.NoError(t, CheckListenAddr("127.0.0.1:5000", true))
	assert.NoError(t, CheckListenAddr("[::1]:0", true))
	assert.ErrorIs(t, CheckListenAddr(":5000", true), ErrNonLocalhost)
	assert.ErrorIs(t, CheckListenAddr("0.0.0.0:5000", true), ErrNonLocalhost)
	assert.Error(t, CheckListenAddr("no-port", true))
}

func TestIsCleartextRemote(t *testing.T) {
	assert.True(t, IsCleartextRemote("http://api.example.com"))
	assert.False(t, IsCleartextRemote("https://api.example.com"))
	assert.False(t, IsCleartextRemote("http://localhost:5000"))
	assert.False(t, IsCleartextRemote("not a url"))
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, "[LOCAL]", StatusBadge(true))
	assert.Empty(t, StatusBadge(false))
}
