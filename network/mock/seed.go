package mock

import (
	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/shazow/netsetup/network"
	"github.com/shazow/netsetup/network/settings"
)

// WifiCapAP is NM_WIFI_DEVICE_CAP_AP.
const WifiCapAP uint32 = 0x40

// Security flag values used by the seeded access points.
const (
	apFlagsPrivacy = uint32(gonetworkmanager.Nm80211APFlagsPrivacy)
	apSecPSK       = uint32(gonetworkmanager.Nm80211APSecKeyMgmtPSK)
	apSecCCMP      = uint32(gonetworkmanager.Nm80211APSecPairCCMP)
)

// New returns a service with a few devices, visible networks and saved
// profiles.
func New() *Service {
	s := &Service{Connectivity: network.ConnectivityFull}

	eth := s.AddDevice(&Device{
		Interface:    "eth0",
		Driver:       "e1000e",
		Type:         network.DeviceTypeEthernet,
		Connectivity: network.ConnectivityFull,
		IPv4:         &IPv4Config{Address: "192.168.1.50", Prefix: 24, Gateway: "192.168.1.1"},
	})
	s.AddDevice(&Device{
		Interface:            "wlan0",
		Driver:               "iwlwifi",
		Type:                 network.DeviceTypeWifi,
		Connectivity:         network.ConnectivityLimited,
		WirelessCapabilities: 0x1 | 0x2 | 0x4 | 0x8 | 0x10 | WifiCapAP,
		AccessPoints: []*AccessPoint{
			{SSID: "TacoBoutAGoodSignal", Frequency: 2437, Strength: 99, Mode: 2, HwAddress: "00:11:22:33:44:55", MaxBitrate: 144000, Flags: apFlagsPrivacy, RsnFlags: apSecPSK | apSecCCMP, LastSeen: 1200},
			{SSID: "Password is password", Frequency: 5180, Strength: 87, Mode: 2, HwAddress: "AA:BB:CC:DD:EE:FF", MaxBitrate: 540000, Flags: apFlagsPrivacy, RsnFlags: apSecPSK | apSecCCMP, LastSeen: 1198},
			{SSID: "Dunder MiffLAN", Frequency: 2412, Strength: 48, Mode: 2, HwAddress: "11:22:33:44:55:66", MaxBitrate: 54000, Flags: apFlagsPrivacy, WpaFlags: apSecPSK, LastSeen: 1150},
			{SSID: "Unencrypted_Honeypot", Frequency: 2462, Strength: 30, Mode: 2, HwAddress: "DE:AD:BE:EF:00:01", MaxBitrate: 54000, LastSeen: 1101},
		},
	})
	s.AddDevice(&Device{
		Interface:            "wlan1",
		Driver:               "rtl8xxxu",
		Type:                 network.DeviceTypeWifi,
		Connectivity:         network.ConnectivityNone,
		WirelessCapabilities: 0x1 | 0x2,
	})
	s.AddDevice(&Device{
		Interface:    "lo",
		Type:         network.DeviceTypeGeneric,
		Connectivity: network.ConnectivityUnknown,
		IPv4:         &IPv4Config{Address: "127.0.0.1", Prefix: 8},
	})

	s.AddConnection(mustEncode(settings.KindWirelessClient, settings.Params{SSID: "Password is password", Password: "password"}))
	s.AddConnection(mustEncode(settings.KindWirelessClient, settings.Params{SSID: "HideYoKidsHideYoWiFi", Password: "hidden"}))
	wired := s.AddConnection(mustEncode(settings.KindEthernet, settings.Params{ID: "Wired connection 1"}))

	s.Active = append(s.Active, &ActiveConnection{
		Path:       s.newPath("ActiveConnection"),
		Connection: wired,
		Device:     eth.Path,
	})
	return s
}

func mustEncode(kind settings.Kind, p settings.Params) settings.Bundle {
	b, err := settings.Encode(kind, p)
	if err != nil {
		panic(err)
	}
	return b
}
