// Package network holds the data model shared by the NetworkManager client:
// devices, saved and active connections, and scanned access points.
package network

import (
	"fmt"

	gonetworkmanager "github.com/Wifx/gonetworkmanager/v3"
	"github.com/godbus/dbus/v5"
)

// DeviceType is NetworkManager's NM_DEVICE_TYPE classification.
type DeviceType uint32

const (
	DeviceTypeUnknown  = DeviceType(gonetworkmanager.NmDeviceTypeUnknown)
	DeviceTypeEthernet = DeviceType(gonetworkmanager.NmDeviceTypeEthernet)
	DeviceTypeWifi     = DeviceType(gonetworkmanager.NmDeviceTypeWifi)
	DeviceTypeBridge   = DeviceType(gonetworkmanager.NmDeviceTypeBridge)
	DeviceTypeGeneric  = DeviceType(gonetworkmanager.NmDeviceTypeGeneric)
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeEthernet:
		return "ethernet"
	case DeviceTypeWifi:
		return "wifi"
	case DeviceTypeBridge:
		return "bridge"
	case DeviceTypeGeneric:
		return "generic"
	case DeviceTypeUnknown:
		return "unknown"
	default:
		return "other"
	}
}

// Connectivity is NetworkManager's NM_CONNECTIVITY level.
type Connectivity uint32

const (
	ConnectivityUnknown = Connectivity(gonetworkmanager.NmConnectivityUnknown)
	ConnectivityNone    = Connectivity(gonetworkmanager.NmConnectivityNone)
	ConnectivityPortal  = Connectivity(gonetworkmanager.NmConnectivityPortal)
	ConnectivityLimited = Connectivity(gonetworkmanager.NmConnectivityLimited)
	ConnectivityFull    = Connectivity(gonetworkmanager.NmConnectivityFull)
)

func (c Connectivity) String() string {
	switch c {
	case ConnectivityUnknown:
		return "UNKNOWN"
	case ConnectivityNone:
		return "NONE"
	case ConnectivityPortal:
		return "PORTAL"
	case ConnectivityLimited:
		return "LIMITED"
	case ConnectivityFull:
		return "FULL"
	default:
		return fmt.Sprintf("Connectivity(%d)", uint32(c))
	}
}

// Connected reports whether c counts as connected. Only full connectivity
// does; portal and limited are treated as disconnected.
func (c Connectivity) Connected() bool {
	return c == ConnectivityFull
}

// IPv4Config is the resolved IPv4 configuration of a device. Fields are empty
// when the device has no configuration or it could not be resolved.
type IPv4Config struct {
	Address string `json:"address"`
	Prefix  string `json:"prefix"`
	Gateway string `json:"gateway"`
}

// Device is a snapshot of one network interface known to NetworkManager.
type Device struct {
	Path      dbus.ObjectPath `json:"path"`
	Interface string          `json:"interface"`
	Driver    string          `json:"driver"`
	Type      DeviceType      `json:"type"`
	Connected bool            `json:"connected"`
	// APCapable is only resolved for wifi devices.
	APCapable bool       `json:"ap_capable"`
	IPv4      IPv4Config `json:"ipv4"`
}

// SavedNetwork is a persisted wireless profile.
type SavedNetwork struct {
	SSID string          `json:"ssid"`
	Path dbus.ObjectPath `json:"path"`
}

// ActiveConnection is a profile currently applied to a device.
type ActiveConnection struct {
	Path       dbus.ObjectPath `json:"path"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Connection dbus.ObjectPath `json:"connection"`
}

// AccessPoint is a wireless network seen in a scan. All values are the
// stringified NetworkManager AccessPoint properties.
type AccessPoint struct {
	SSID       string `json:"Ssid"`
	Frequency  string `json:"Frequency"`
	Strength   string `json:"Strength"`
	Mode       string `json:"Mode"`
	HwAddress  string `json:"HwAddress"`
	MaxBitrate string `json:"MaxBitrate"`
	Flags      string `json:"Flags"`
	WpaFlags   string `json:"WpaFlags"`
	RsnFlags   string `json:"RsnFlags"`
	LastSeen   string `json:"LastSeen"`
}

// AccessPointProperties lists the AccessPoint properties fetched per scan
// result, in the order they are stored in AccessPoint.
var AccessPointProperties = []string{
	"Ssid",
	"Frequency",
	"Strength",
	"Mode",
	"HwAddress",
	"MaxBitrate",
	"Flags",
	"WpaFlags",
	"RsnFlags",
	"LastSeen",
}

// Set assigns the named property. It returns false for unknown names.
func (ap *AccessPoint) Set(property, value string) bool {
	switch property {
	case "Ssid":
		ap.SSID = value
	case "Frequency":
		ap.Frequency = value
	case "Strength":
		ap.Strength = value
	case "Mode":
		ap.Mode = value
	case "HwAddress":
		ap.HwAddress = value
	case "MaxBitrate":
		ap.MaxBitrate = value
	case "Flags":
		ap.Flags = value
	case "WpaFlags":
		ap.WpaFlags = value
	case "RsnFlags":
		ap.RsnFlags = value
	case "LastSeen":
		ap.LastSeen = value
	default:
		return false
	}
	return true
}

// Properties returns the access point as a property name to value map.
func (ap AccessPoint) Properties() map[string]string {
	return map[string]string{
		"Ssid":       ap.SSID,
		"Frequency":  ap.Frequency,
		"Strength":   ap.Strength,
		"Mode":       ap.Mode,
		"HwAddress":  ap.HwAddress,
		"MaxBitrate": ap.MaxBitrate,
		"Flags":      ap.Flags,
		"WpaFlags":   ap.WpaFlags,
		"RsnFlags":   ap.RsnFlags,
		"LastSeen":   ap.LastSeen,
	}
}

// IsSecure reports whether any of the security flag words is set.
func (ap AccessPoint) IsSecure() bool {
	for _, f := range []string{ap.Flags, ap.WpaFlags, ap.RsnFlags} {
		if f != "" && f != "0" {
			return true
		}
	}
	return false
}
