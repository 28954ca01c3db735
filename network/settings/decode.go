package settings

// Profile is the structured view of a decoded settings bundle.
type Profile struct {
	ID         string `json:"id"`
	UUID       string `json:"uuid"`
	Type       string `json:"type"`
	SSID       string `json:"ssid,omitempty"`
	Mode       string `json:"mode,omitempty"`
	KeyMgmt    string `json:"key_mgmt,omitempty"`
	IPv4Method string `json:"ipv4_method,omitempty"`
	IPv6Method string `json:"ipv6_method,omitempty"`
}

// IsWireless reports whether the profile has a wireless section with an SSID.
func (p Profile) IsWireless() bool {
	return p.SSID != ""
}

// Decode extracts the commonly used fields of b.
func Decode(b Bundle) Profile {
	ssid, _ := SSID(b)
	return Profile{
		ID:         b.LookupString(SectionConnection, "id"),
		UUID:       b.LookupString(SectionConnection, "uuid"),
		Type:       b.LookupString(SectionConnection, "type"),
		SSID:       ssid,
		Mode:       b.LookupString(SectionWireless, "mode"),
		KeyMgmt:    b.LookupString(SectionWirelessSecurity, "key-mgmt"),
		IPv4Method: b.LookupString(SectionIPv4, "method"),
		IPv6Method: b.LookupString(SectionIPv6, "method"),
	}
}

// SSID returns the 802-11-wireless.ssid of b. The second return value is
// false when the bundle has no wireless section or no ssid key.
func SSID(b Bundle) (string, bool) {
	v, ok := b.Lookup(SectionWireless, "ssid")
	if !ok {
		return "", false
	}
	switch d := v.Data.(type) {
	case []byte:
		return BytesToString(d), true
	case string:
		return d, true
	}
	return "", false
}
