// Package networkmanager is a NetworkManager client built on a bus.Invoker.
//
// Listing operations (devices, saved networks, scans) are best effort: a
// record that can't be read is dropped and logged instead of failing the
// whole listing. Operations that write profiles return errors.
package networkmanager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/shazow/netsetup/bus"
)

// D-Bus names of the NetworkManager service.
const (
	nmDest   = "org.freedesktop.NetworkManager"
	nmPath   = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	nmIface  = "org.freedesktop.NetworkManager"
	nmNoPath = dbus.ObjectPath("/")

	settingsPath  = dbus.ObjectPath("/org/freedesktop/NetworkManager/Settings")
	settingsIface = nmIface + ".Settings"

	connectionIface       = settingsIface + ".Connection"
	activeConnectionIface = nmIface + ".Connection.Active"
	deviceIface           = nmIface + ".Device"
	wirelessIface         = deviceIface + ".Wireless"
	ip4ConfigIface        = nmIface + ".IP4Config"
	accessPointIface      = nmIface + ".AccessPoint"
)

// wifiCapAP is NM_WIFI_DEVICE_CAP_AP.
const wifiCapAP uint32 = 0x40

// Client talks to NetworkManager through a shared Invoker.
type Client struct {
	bus    bus.Invoker
	logger *slog.Logger
}

// New creates a Client. A nil logger uses slog.Default().
func New(invoker bus.Invoker, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{bus: invoker, logger: logger}
}

func (c *Client) call(ctx context.Context, path dbus.ObjectPath, iface, member, signature string, args ...interface{}) ([]interface{}, error) {
	return c.bus.Invoke(ctx, bus.Call{
		Destination: nmDest,
		Path:        path,
		Interface:   iface,
		Member:      member,
		Signature:   signature,
		Args:        args,
	})
}

func (c *Client) property(ctx context.Context, path dbus.ObjectPath, iface, name string) (dbus.Variant, error) {
	body, err := c.bus.Invoke(ctx, bus.GetProperty(nmDest, path, iface, name))
	if err != nil {
		return dbus.Variant{}, err
	}
	return replyAs[dbus.Variant](body)
}

// propertyAs fetches a property and asserts its type.
func propertyAs[T any](ctx context.Context, c *Client, path dbus.ObjectPath, iface, name string) (T, error) {
	var zero T
	v, err := c.property(ctx, path, iface, name)
	if err != nil {
		return zero, err
	}
	val, ok := v.Value().(T)
	if !ok {
		return zero, fmt.Errorf("%s.%s on %s: %w: got %T", iface, name, path, bus.ErrUnexpectedReply, v.Value())
	}
	return val, nil
}

// replyAs returns the first value of a reply body.
func replyAs[T any](body []interface{}) (T, error) {
	var zero T
	if len(body) == 0 {
		return zero, bus.ErrEmptyReply
	}
	val, ok := body[0].(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T", bus.ErrUnexpectedReply, body[0])
	}
	return val, nil
}
