// Package bus is the remote-call primitive the rest of the module is built on:
// send one typed method call over D-Bus and return its reply body.
package bus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// PropertiesInterface is the standard D-Bus property getter interface.
const PropertiesInterface = "org.freedesktop.DBus.Properties"

// Call describes a single remote method invocation.
type Call struct {
	Destination string
	Path        dbus.ObjectPath
	Interface   string
	Member      string
	// Signature is the D-Bus type signature of Args, e.g. "ss" or "ooo".
	// It may be empty for calls without arguments.
	Signature string
	Args      []interface{}
}

// Method returns the fully qualified method name, e.g.
// "org.freedesktop.NetworkManager.GetDevices".
func (c Call) Method() string {
	return c.Interface + "." + c.Member
}

func (c Call) String() string {
	return fmt.Sprintf("%s %s.%s(%s)", c.Path, c.Interface, c.Member, c.Signature)
}

// GetProperty builds an org.freedesktop.DBus.Properties.Get call for a
// single property. The reply body holds one dbus.Variant.
func GetProperty(dest string, path dbus.ObjectPath, iface, name string) Call {
	return Call{
		Destination: dest,
		Path:        path,
		Interface:   PropertiesInterface,
		Member:      "Get",
		Signature:   "ss",
		Args:        []interface{}{iface, name},
	}
}

// Invoker sends one call and returns the reply body, or an error if the
// remote side could not be reached or rejected the call.
type Invoker interface {
	Invoke(ctx context.Context, call Call) ([]interface{}, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, call Call) ([]interface{}, error)

func (f InvokerFunc) Invoke(ctx context.Context, call Call) ([]interface{}, error) {
	return f(ctx, call)
}
