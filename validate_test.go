package main

import (
	"context"
	"strings"
	"testing"

	"github.com/shazow/netsetup/network/networkmanager"
	"github.com/shazow/netsetup/network/settings"
	"github.com/stretchr/testify/assert"
)

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name  string
		input networkInput
		err   string
	}{
		{"valid", networkInput{SSID: "Cafe", Password: "espresso"}, ""},
		{"open network", networkInput{SSID: "Cafe"}, ""},
		{"static address", networkInput{SSID: "Cafe", Address: "192.168.1.10", Gateway: "192.168.1.1", DNS: "8.8.8.8"}, ""},
		{"missing ssid", networkInput{}, "ssid is required"},
		{"long ssid", networkInput{SSID: "abcdefghijklmnopqrstuvwxyz0123456"}, "ssid must be at most 32 bytes"},
		{"multibyte ssid at limit", networkInput{SSID: strings.Repeat("é", 16)}, ""},
		{"multibyte ssid over limit", networkInput{SSID: strings.Repeat("é", 17)}, "ssid must be at most 32 bytes"},
		{"short password", networkInput{SSID: "Cafe", Password: "short"}, "password must be at least 8 characters"},
		{"bad address", networkInput{SSID: "Cafe", Address: "192.168.1"}, "address must be an IPv4 address"},
		{"several", networkInput{SSID: "Cafe", Password: "x", DNS: "dns"}, "password must be at least 8 characters; dns must be an IPv4 address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateInput(tt.input)
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestRunAddRejectsInvalidInput(t *testing.T) {
	a, svc, _ := newTestApp(t)
	err := a.runAdd(context.Background(), networkmanager.AddOptions{
		SSID:   "Cafe",
		Manual: &settings.ManualIPv4{Address: "not-an-ip"},
	})
	assert.ErrorContains(t, err, "address must be an IPv4 address")
	assert.Zero(t, svc.CallCount("org.freedesktop.NetworkManager.Settings", "AddConnection"))
}
