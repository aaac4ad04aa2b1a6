package auth_test

import (
	"testing"

	"taskboard/internal/auth"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		want     []string
	}{
		{
			name:     "valid password",
			password: "TestPass123!",
			username: "alice",
			want:     nil,
		},
		{
			name:     "too short",
			password: "Ab1!",
			username: "alice",
			want:     []string{"This password is too short. It must contain at least 8 characters."},
		},
		{
			name:     "too common",
			password: "password123",
			username: "alice",
			want:     []string{"This password is too common."},
		},
		{
			name:     "similar to username",
			password: "alice2024secret",
			username: "alice",
			want:     []string{"The password is too similar to the username."},
		},
		{
			name:     "entirely numeric",
			password: "4815162342",
			username: "alice",
			want:     []string{"This password is entirely numeric."},
		},
		{
			name:     "short username does not trigger similarity",
			password: "edward-likes-go",
			username: "ed",
			want:     nil,
		},
		{
			name:     "multiple failures reported together",
			password: "1234567",
			username: "alice",
			want: []string{
				"This password is too short. It must contain at least 8 characters.",
				"This password is entirely numeric.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auth.ValidatePassword(tt.password, tt.username)
			assert.Equal(t, tt.want, got)
		})
	}
}
