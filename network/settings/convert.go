package settings

import (
	"log/slog"
	"strconv"
	"strings"
)

// StringToBytes converts s into the byte sequence NetworkManager expects for
// "ay" fields such as 802-11-wireless.ssid. An empty string yields an empty,
// non-nil slice.
func StringToBytes(s string) []byte {
	b := make([]byte, len(s))
	copy(b, s)
	return b
}

// BytesToString is the inverse of StringToBytes.
func BytesToString(b []byte) string {
	return string(b)
}

// DottedToDigits converts a dotted address for an "au" field by dropping the
// dots and emitting every remaining character as its own number, so
// "8.8.8.8" becomes [8 8 8 8] and "10.0.0.1" becomes [1 0 0 0 1].
//
// Malformed input is logged and yields nil.
func DottedToDigits(addr string) []uint32 {
	digits := strings.ReplaceAll(addr, ".", "")
	out := make([]uint32, 0, len(digits))
	for _, r := range digits {
		n, err := strconv.ParseUint(string(r), 10, 32)
		if err != nil {
			slog.Warn("unable to convert address to array of numbers", "address", addr, "error", err)
			return nil
		}
		out = append(out, uint32(n))
	}
	return out
}
