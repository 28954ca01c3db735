package settings

import (
	"fmt"

	"github.com/google/uuid"
)

// Section names.
const (
	SectionConnection       = "connection"
	SectionWireless         = "802-11-wireless"
	SectionWirelessSecurity = "802-11-wireless-security"
	SectionEthernet         = "802-3-ethernet"
	SectionIPv4             = "ipv4"
	SectionIPv6             = "ipv6"
)

// Connection types as they appear in connection.type.
const (
	TypeWireless = "802-11-wireless"
	TypeEthernet = "802-3-ethernet"
	TypeBridge   = "bridge"
)

// SharingID is the connection.id of internet sharing profiles.
const SharingID = "Internet Sharing over Ethernet"

// ManualPrefix is the prefix length used for every manual IPv4 address.
const ManualPrefix = 24

// Kind selects which profile Encode builds.
type Kind int

const (
	KindWirelessClient Kind = iota
	KindAccessPoint
	KindEthernet
	KindEthernetSharing
)

func (k Kind) String() string {
	switch k {
	case KindWirelessClient:
		return "wireless-client"
	case KindAccessPoint:
		return "access-point"
	case KindEthernet:
		return "ethernet"
	case KindEthernetSharing:
		return "ethernet-sharing"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ManualIPv4 is a static IPv4 configuration.
type ManualIPv4 struct {
	Address string
	Gateway string
	DNS     string
}

// Params are the inputs of Encode. Which fields are used depends on the kind.
type Params struct {
	// ID is the connection.id. Wireless kinds default it to SSID.
	ID       string
	SSID     string
	Password string
	// UUID is the connection.uuid. A random one is generated when empty.
	UUID string
	// Manual switches ipv4 from DHCP to a static configuration. Only
	// KindWirelessClient and KindEthernet use it.
	Manual *ManualIPv4
}

// Encode builds a fresh settings bundle for kind.
func Encode(kind Kind, p Params) (Bundle, error) {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	switch kind {
	case KindWirelessClient:
		return wirelessClient(p), nil
	case KindAccessPoint:
		return accessPoint(p), nil
	case KindEthernet:
		return ethernet(p), nil
	case KindEthernetSharing:
		return ethernetSharing(p), nil
	}
	return nil, fmt.Errorf("unknown profile kind: %s", kind)
}

func connectionSection(id, connUUID, typ string) Section {
	return Section{Name: SectionConnection, Entries: []Entry{
		{"id", String(id)},
		{"uuid", String(connUUID)},
		{"type", String(typ)},
	}}
}

func wirelessID(p Params) string {
	if p.ID != "" {
		return p.ID
	}
	return p.SSID
}

func wirelessClient(p Params) Bundle {
	b := Bundle{
		connectionSection(wirelessID(p), p.UUID, TypeWireless),
		{Name: SectionWireless, Entries: []Entry{
			{"ssid", Bytes(StringToBytes(p.SSID))},
			{"mode", String("infrastructure")},
		}},
	}
	if p.Password != "" {
		b = append(b, Section{Name: SectionWirelessSecurity, Entries: []Entry{
			{"key-mgmt", String("wpa-psk")},
			{"psk", String(p.Password)},
		}})
	}
	return append(b,
		Section{Name: SectionIPv6, Entries: []Entry{{"method", String("auto")}}},
		ipv4Section(p.Manual),
	)
}

func accessPoint(p Params) Bundle {
	return Bundle{
		connectionSection(wirelessID(p), p.UUID, TypeWireless),
		{Name: SectionWireless, Entries: []Entry{
			{"ssid", Bytes(StringToBytes(p.SSID))},
			{"mode", String("ap")},
		}},
		// WPA2-PSK only: CCMP for both ciphers over RSN.
		{Name: SectionWirelessSecurity, Entries: []Entry{
			{"key-mgmt", String("wpa-psk")},
			{"psk", String(p.Password)},
			{"group", Strings("ccmp")},
			{"pairwise", Strings("ccmp")},
			{"proto", Strings("rsn")},
		}},
		sharedIPv4(),
		ignoredIPv6(),
	}
}

func ethernet(p Params) Bundle {
	id := p.ID
	if id == "" {
		id = "Wired connection"
	}
	return Bundle{
		connectionSection(id, p.UUID, TypeEthernet),
		{Name: SectionEthernet},
		ipv4Section(p.Manual),
		{Name: SectionIPv6, Entries: []Entry{{"method", String("auto")}}},
	}
}

func ethernetSharing(p Params) Bundle {
	id := p.ID
	if id == "" {
		id = SharingID
	}
	return Bundle{
		connectionSection(id, p.UUID, TypeEthernet),
		{Name: SectionEthernet, Entries: []Entry{
			{"auto-negotiate", Bool(false)},
		}},
		sharedIPv4(),
		ignoredIPv6(),
	}
}

// sharedIPv4 makes NetworkManager run a DHCP server and NAT for the profile.
func sharedIPv4() Section {
	return Section{Name: SectionIPv4, Entries: []Entry{{"method", String("shared")}}}
}

func ignoredIPv6() Section {
	return Section{Name: SectionIPv6, Entries: []Entry{{"method", String("ignore")}}}
}

func ipv4Section(manual *ManualIPv4) Section {
	if manual == nil {
		return Section{Name: SectionIPv4, Entries: []Entry{{"method", String("auto")}}}
	}

	entries := []Entry{
		{"method", String("manual")},
		{"address-data", Dicts([]Entry{
			{"address", String(manual.Address)},
			{"prefix", Uint32(ManualPrefix)},
		})},
		{"gateway", String(manual.Gateway)},
	}
	// A DNS value that fails to convert is left out rather than sent empty.
	if manual.DNS != "" {
		if dns := DottedToDigits(manual.DNS); dns != nil {
			entries = append(entries, Entry{"dns", Uint32s(dns)})
		}
	}
	entries = append(entries, Entry{"routes", Uint32Lists([][]uint32{})})
	return Section{Name: SectionIPv4, Entries: entries}
}
