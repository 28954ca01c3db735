// Package mock is an in-memory NetworkManager that answers bus calls. It is
// used by tests and by the mock build of the CLI.
package mock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/shazow/netsetup/bus"
	"github.com/shazow/netsetup/network"
	"github.com/shazow/netsetup/network/settings"
)

const (
	nmIface               = "org.freedesktop.NetworkManager"
	settingsIface         = nmIface + ".Settings"
	connectionIface       = settingsIface + ".Connection"
	activeConnectionIface = nmIface + ".Connection.Active"
	deviceIface           = nmIface + ".Device"
	wirelessIface         = deviceIface + ".Wireless"
	ip4ConfigIface        = nmIface + ".IP4Config"
	accessPointIface      = nmIface + ".AccessPoint"

	nmPath       = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	settingsPath = dbus.ObjectPath("/org/freedesktop/NetworkManager/Settings")
	noPath       = dbus.ObjectPath("/")
)

var (
	ErrUnknownMethod = errors.New("org.freedesktop.DBus.Error.UnknownMethod")
	ErrUnknownObject = errors.New("org.freedesktop.DBus.Error.UnknownObject")
	ErrInvalidArgs   = errors.New("org.freedesktop.DBus.Error.InvalidArgs")
	ErrNoConnection  = errors.New("org.freedesktop.NetworkManager.UnknownConnection")
)

// IPv4Config is an IP4Config object.
type IPv4Config struct {
	Path    dbus.ObjectPath
	Address string
	Prefix  uint32
	Gateway string
}

// AccessPoint is a scan result attached to a wifi device.
type AccessPoint struct {
	Path       dbus.ObjectPath
	SSID       string
	Frequency  uint32
	Strength   uint8
	Mode       uint32
	HwAddress  string
	MaxBitrate uint32
	Flags      uint32
	WpaFlags   uint32
	RsnFlags   uint32
	LastSeen   int32
}

// Device is a network device.
type Device struct {
	Path                 dbus.ObjectPath
	Interface            string
	Driver               string
	Type                 network.DeviceType
	Connectivity         network.Connectivity
	WirelessCapabilities uint32
	IPv4                 *IPv4Config
	AccessPoints         []*AccessPoint
}

// Connection is a saved profile.
type Connection struct {
	Path     dbus.ObjectPath
	Settings map[string]map[string]dbus.Variant
}

// ActiveConnection binds a saved profile to a device.
type ActiveConnection struct {
	Path       dbus.ObjectPath
	Connection dbus.ObjectPath
	Device     dbus.ObjectPath
}

// Service is a fake NetworkManager. The zero value is an empty service.
type Service struct {
	mu sync.Mutex

	Devices      []*Device
	Connections  []*Connection
	Active       []*ActiveConnection
	Connectivity network.Connectivity

	// MethodErrors fails calls to a method ("Interface.Member") or a
	// property ("Interface.Property").
	MethodErrors map[string]error
	// PathErrors fails every call on an object.
	PathErrors map[dbus.ObjectPath]error

	calls  []bus.Call
	nextID int
}

// Invoke implements bus.Invoker.
func (s *Service) Invoke(ctx context.Context, call bus.Call) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, &bus.Error{Call: call, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)

	body, err := s.dispatch(call)
	if err != nil {
		return nil, &bus.Error{Call: call, Err: err}
	}
	return body, nil
}

// Calls returns every call received so far.
func (s *Service) Calls() []bus.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bus.Call(nil), s.calls...)
}

// CallCount returns how many calls were made to member on iface.
func (s *Service) CallCount(iface, member string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Interface == iface && c.Member == member {
			n++
		}
	}
	return n
}

// SavedSSIDs returns the SSIDs of all saved wireless profiles, duplicates
// included.
func (s *Service) SavedSSIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ssids []string
	for _, c := range s.Connections {
		if ssid, ok := settings.SSID(settings.FromWire(c.Settings)); ok {
			ssids = append(ssids, ssid)
		}
	}
	return ssids
}

// AddDevice registers a device, assigning object paths as needed.
func (s *Service) AddDevice(d *Device) *Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Path == "" {
		d.Path = s.newPath("Devices")
	}
	if d.IPv4 != nil && d.IPv4.Path == "" {
		d.IPv4.Path = s.newPath("IP4Config")
	}
	for _, ap := range d.AccessPoints {
		if ap.Path == "" {
			ap.Path = s.newPath("AccessPoint")
		}
	}
	s.Devices = append(s.Devices, d)
	return d
}

// AddConnection saves a profile directly, bypassing the bus.
func (s *Service) AddConnection(b settings.Bundle) dbus.ObjectPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addConnection(b.Wire())
}

func (s *Service) newPath(kind string) dbus.ObjectPath {
	s.nextID++
	if kind == "Settings" {
		return dbus.ObjectPath(fmt.Sprintf("%s/%d", settingsPath, s.nextID))
	}
	return dbus.ObjectPath(fmt.Sprintf("%s/%s/%d", nmPath, kind, s.nextID))
}

func (s *Service) addConnection(w map[string]map[string]dbus.Variant) dbus.ObjectPath {
	c := &Connection{Path: s.newPath("Settings"), Settings: w}
	s.Connections = append(s.Connections, c)
	return c.Path
}

func (s *Service) dispatch(call bus.Call) ([]interface{}, error) {
	if err, ok := s.PathErrors[call.Path]; ok {
		return nil, err
	}
	if call.Interface == bus.PropertiesInterface && call.Member == "Get" {
		return s.getProperty(call)
	}
	if err, ok := s.MethodErrors[call.Method()]; ok {
		return nil, err
	}

	switch call.Method() {
	case nmIface + ".GetDevices":
		paths := make([]dbus.ObjectPath, 0, len(s.Devices))
		for _, d := range s.Devices {
			paths = append(paths, d.Path)
		}
		return []interface{}{paths}, nil
	case nmIface + ".CheckConnectivity":
		return []interface{}{uint32(s.Connectivity)}, nil
	case nmIface + ".ActivateConnection":
		return s.activate(call)
	case settingsIface + ".ListConnections":
		paths := make([]dbus.ObjectPath, 0, len(s.Connections))
		for _, c := range s.Connections {
			paths = append(paths, c.Path)
		}
		return []interface{}{paths}, nil
	case settingsIface + ".AddConnection":
		if len(call.Args) != 1 {
			return nil, ErrInvalidArgs
		}
		w, ok := call.Args[0].(map[string]map[string]dbus.Variant)
		if !ok {
			return nil, ErrInvalidArgs
		}
		return []interface{}{s.addConnection(w)}, nil
	case connectionIface + ".GetSettings":
		c := s.connection(call.Path)
		if c == nil {
			return nil, ErrUnknownObject
		}
		return []interface{}{c.Settings}, nil
	case connectionIface + ".Delete":
		return nil, s.deleteConnection(call.Path)
	case deviceIface + ".Disconnect":
		d := s.device(call.Path)
		if d == nil {
			return nil, ErrUnknownObject
		}
		s.deactivate(func(a *ActiveConnection) bool { return a.Device == d.Path })
		d.Connectivity = network.ConnectivityNone
		return nil, nil
	case wirelessIface + ".RequestScan":
		d := s.device(call.Path)
		if d == nil || d.Type != network.DeviceTypeWifi {
			return nil, ErrUnknownObject
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, call.Method())
}

func (s *Service) activate(call bus.Call) ([]interface{}, error) {
	if len(call.Args) != 3 {
		return nil, ErrInvalidArgs
	}
	connPath, ok1 := call.Args[0].(dbus.ObjectPath)
	devPath, ok2 := call.Args[1].(dbus.ObjectPath)
	if !ok1 || !ok2 {
		return nil, ErrInvalidArgs
	}
	d := s.device(devPath)
	if d == nil {
		return nil, ErrUnknownObject
	}

	var conn *Connection
	if connPath == noPath {
		// Pick the first profile that fits the device.
		for _, c := range s.Connections {
			if connectionFits(c, d) {
				conn = c
				break
			}
		}
	} else {
		conn = s.connection(connPath)
	}
	if conn == nil {
		return nil, ErrNoConnection
	}

	s.deactivate(func(a *ActiveConnection) bool { return a.Device == d.Path })
	active := &ActiveConnection{Path: s.newPath("ActiveConnection"), Connection: conn.Path, Device: d.Path}
	s.Active = append(s.Active, active)
	d.Connectivity = network.ConnectivityFull
	return []interface{}{active.Path}, nil
}

func connectionFits(c *Connection, d *Device) bool {
	typ := settings.FromWire(c.Settings).LookupString(settings.SectionConnection, "type")
	switch d.Type {
	case network.DeviceTypeWifi:
		return typ == settings.TypeWireless
	case network.DeviceTypeEthernet:
		return typ == settings.TypeEthernet
	case network.DeviceTypeBridge:
		return typ == settings.TypeBridge
	}
	return false
}

func (s *Service) deactivate(match func(*ActiveConnection) bool) {
	kept := s.Active[:0]
	for _, a := range s.Active {
		if !match(a) {
			kept = append(kept, a)
		}
	}
	s.Active = kept
}

func (s *Service) deleteConnection(path dbus.ObjectPath) error {
	for i, c := range s.Connections {
		if c.Path == path {
			s.Connections = append(s.Connections[:i], s.Connections[i+1:]...)
			s.deactivate(func(a *ActiveConnection) bool { return a.Connection == path })
			return nil
		}
	}
	return ErrUnknownObject
}

func (s *Service) connection(path dbus.ObjectPath) *Connection {
	for _, c := range s.Connections {
		if c.Path == path {
			return c
		}
	}
	return nil
}

func (s *Service) device(path dbus.ObjectPath) *Device {
	for _, d := range s.Devices {
		if d.Path == path {
			return d
		}
	}
	return nil
}

func (s *Service) getProperty(call bus.Call) ([]interface{}, error) {
	if len(call.Args) != 2 {
		return nil, ErrInvalidArgs
	}
	iface, ok1 := call.Args[0].(string)
	name, ok2 := call.Args[1].(string)
	if !ok1 || !ok2 {
		return nil, ErrInvalidArgs
	}
	if err, ok := s.MethodErrors[iface+"."+name]; ok {
		return nil, err
	}

	v, err := s.lookupProperty(call.Path, iface, name)
	if err != nil {
		return nil, err
	}
	return []interface{}{dbus.MakeVariant(v)}, nil
}

func (s *Service) lookupProperty(path dbus.ObjectPath, iface, name string) (interface{}, error) {
	unknown := fmt.Errorf("%w: %s.%s on %s", ErrInvalidArgs, iface, name, path)

	switch iface {
	case nmIface:
		if path != nmPath {
			return nil, ErrUnknownObject
		}
		switch name {
		case "ActiveConnections":
			paths := make([]dbus.ObjectPath, 0, len(s.Active))
			for _, a := range s.Active {
				paths = append(paths, a.Path)
			}
			return paths, nil
		case "Connectivity":
			return uint32(s.Connectivity), nil
		}
		return nil, unknown

	case deviceIface, wirelessIface:
		d := s.device(path)
		if d == nil {
			return nil, ErrUnknownObject
		}
		if iface == wirelessIface {
			if d.Type != network.DeviceTypeWifi {
				return nil, unknown
			}
			switch name {
			case "AccessPoints":
				paths := make([]dbus.ObjectPath, 0, len(d.AccessPoints))
				for _, ap := range d.AccessPoints {
					paths = append(paths, ap.Path)
				}
				return paths, nil
			case "WirelessCapabilities":
				return d.WirelessCapabilities, nil
			}
			return nil, unknown
		}
		switch name {
		case "DeviceType":
			return uint32(d.Type), nil
		case "Ip4Connectivity":
			return uint32(d.Connectivity), nil
		case "Interface":
			return d.Interface, nil
		case "Driver":
			return d.Driver, nil
		case "Ip4Config":
			if d.IPv4 == nil {
				return noPath, nil
			}
			return d.IPv4.Path, nil
		}
		return nil, unknown

	case ip4ConfigIface:
		for _, d := range s.Devices {
			if d.IPv4 == nil || d.IPv4.Path != path {
				continue
			}
			switch name {
			case "AddressData":
				return []map[string]dbus.Variant{{
					"address": dbus.MakeVariant(d.IPv4.Address),
					"prefix":  dbus.MakeVariant(d.IPv4.Prefix),
				}}, nil
			case "Gateway":
				return d.IPv4.Gateway, nil
			}
			return nil, unknown
		}
		return nil, ErrUnknownObject

	case accessPointIface:
		for _, d := range s.Devices {
			for _, ap := range d.AccessPoints {
				if ap.Path == path {
					return apProperty(ap, name, unknown)
				}
			}
		}
		return nil, ErrUnknownObject

	case activeConnectionIface:
		for _, a := range s.Active {
			if a.Path != path {
				continue
			}
			switch name {
			case "Connection":
				return a.Connection, nil
			case "Devices":
				return []dbus.ObjectPath{a.Device}, nil
			case "Type", "Id":
				c := s.connection(a.Connection)
				if c == nil {
					return nil, ErrUnknownObject
				}
				key := "type"
				if name == "Id" {
					key = "id"
				}
				return settings.FromWire(c.Settings).LookupString(settings.SectionConnection, key), nil
			}
			return nil, unknown
		}
		return nil, ErrUnknownObject
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, iface)
}

func apProperty(ap *AccessPoint, name string, unknown error) (interface{}, error) {
	switch name {
	case "Ssid":
		return settings.StringToBytes(ap.SSID), nil
	case "Frequency":
		return ap.Frequency, nil
	case "Strength":
		return ap.Strength, nil
	case "Mode":
		return ap.Mode, nil
	case "HwAddress":
		return ap.HwAddress, nil
	case "MaxBitrate":
		return ap.MaxBitrate, nil
	case "Flags":
		return ap.Flags, nil
	case "WpaFlags":
		return ap.WpaFlags, nil
	case "RsnFlags":
		return ap.RsnFlags, nil
	case "LastSeen":
		return ap.LastSeen, nil
	}
	return nil, unknown
}
