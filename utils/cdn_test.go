package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedCDNURL(t *testing.T) {
	const (
		hostname  = "res.cloudinary.com"
		accountID = "cablenet"
	)

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"matching host and account", "https://res.cloudinary.com/cablenet/image/upload/v1/loc.jpg", true},
		{"account path only", "https://res.cloudinary.com/cablenet/x", true},
		{"wrong host", "https://cdn.example.com/cablenet/image/upload/v1/loc.jpg", false},
		{"wrong account", "https://res.cloudinary.com/other/image/upload/v1/loc.jpg", false},
		{"account as prefix of another", "https://res.cloudinary.com/cablenetx/loc.jpg", false},
		{"account with no trailing path", "https://res.cloudinary.com/cablenet", false},
		{"relative url has no host", "/cablenet/image/loc.jpg", false},
		{"empty string", "", false},
		{"not a url", "://nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedCDNURL(tt.raw, hostname, accountID))
		})
	}
}

func TestIsAllowedCDNURLUnconfigured(t *testing.T) {
	// With no account configured every URL is rejected.
	assert.False(t, IsAllowedCDNURL("https://res.cloudinary.com/cablenet/x", "res.cloudinary.com", ""))
	assert.False(t, IsAllowedCDNURL("https://res.cloudinary.com/cablenet/x", "", "cablenet"))
}
