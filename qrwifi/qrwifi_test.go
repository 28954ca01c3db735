package qrwifi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeWifiString(t *testing.T) {
	assert.Equal(t, `a\;b\,c\:d\\e\"f`, EscapeWifiString(`a;b,c:d\e"f`))
	assert.Equal(t, "plain", EscapeWifiString("plain"))
}

func TestPayload(t *testing.T) {
	assert.Equal(t, "WIFI:S:Hotspot;T:WPA;P:letmein123;;", Payload("Hotspot", "letmein123", false))
	assert.Equal(t, "WIFI:S:Cafe;T:nopass;H:true;;", Payload("Cafe", "", true))
	assert.Equal(t, `WIFI:S:My\;Net;T:WPA;P:p\:w;;`, Payload("My;Net", "p:w", false))
}

func TestGenerateWifiQRCode(t *testing.T) {
	code, err := GenerateWifiQRCode("Hotspot", "letmein123", false)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
}
