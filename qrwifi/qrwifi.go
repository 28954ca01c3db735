// Package qrwifi renders Wi-Fi join QR codes for terminals.
package qrwifi

import (
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// EscapeWifiString handles the special character escaping for SSID and Password.
func EscapeWifiString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`;`, `\;`,
		`,`, `\,`,
		`:`, `\:`,
		`"`, `\"`,
	)
	return r.Replace(s)
}

// Payload builds the WIFI: string for a WPA network, or an open one when
// password is empty.
func Payload(ssid, password string, isHidden bool) string {
	var b strings.Builder

	b.WriteString("WIFI:S:")
	b.WriteString(EscapeWifiString(ssid))
	b.WriteString(";")

	if password == "" {
		b.WriteString("T:nopass;")
	} else {
		b.WriteString("T:WPA;P:")
		b.WriteString(EscapeWifiString(password))
		b.WriteString(";")
	}

	if isHidden {
		b.WriteString("H:true;")
	}

	b.WriteString(";")
	return b.String()
}

// GenerateWifiQRCode returns the QR code for the network as block characters.
func GenerateWifiQRCode(ssid, password string, isHidden bool) (string, error) {
	q, err := qrcode.New(Payload(ssid, password, isHidden), qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
