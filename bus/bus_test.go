package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProperty(t *testing.T) {
	call := GetProperty("org.freedesktop.NetworkManager", "/org/freedesktop/NetworkManager/Devices/1", "org.freedesktop.NetworkManager.Device", "Driver")

	assert.Equal(t, PropertiesInterface, call.Interface)
	assert.Equal(t, "org.freedesktop.DBus.Properties.Get", call.Method())
	assert.Equal(t, []interface{}{"org.freedesktop.NetworkManager.Device", "Driver"}, call.Args)

	sig, err := signatureOf(call.Args)
	require.NoError(t, err)
	assert.Equal(t, call.Signature, sig)
}

func TestSignatureOf(t *testing.T) {
	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"none", nil, ""},
		{"strings", []interface{}{"a", "b"}, "ss"},
		{"paths", []interface{}{dbus.ObjectPath("/"), dbus.ObjectPath("/a"), dbus.ObjectPath("/")}, "ooo"},
		{"settings", []interface{}{map[string]map[string]dbus.Variant{}}, "a{sa{sv}}"},
		{"options", []interface{}{map[string]dbus.Variant{}}, "a{sv}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := signatureOf(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig)
		})
	}

	_, err := signatureOf([]interface{}{nil})
	assert.ErrorIs(t, err, ErrSignatureMismatch)
}

func TestInvokeSignatureMismatch(t *testing.T) {
	// The signature is checked before anything is sent, so no connection is
	// needed.
	c := NewWithConn(nil, nil)
	call := Call{
		Destination: "org.freedesktop.NetworkManager",
		Path:        "/org/freedesktop/NetworkManager",
		Interface:   "org.freedesktop.NetworkManager",
		Member:      "ActivateConnection",
		Signature:   "ooo",
		Args:        []interface{}{"/", "/", "/"},
	}

	_, err := c.Invoke(context.Background(), call)
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	var busErr *Error
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, "ActivateConnection", busErr.Call.Member)
	assert.Contains(t, err.Error(), "ActivateConnection")
}

func TestInvokerFunc(t *testing.T) {
	want := errors.New("unreachable")
	var inv Invoker = InvokerFunc(func(ctx context.Context, call Call) ([]interface{}, error) {
		return nil, &Error{Call: call, Err: want}
	})

	_, err := inv.Invoke(context.Background(), Call{Member: "GetDevices"})
	assert.ErrorIs(t, err, want)
}
