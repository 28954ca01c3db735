package bus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// Conn is an Invoker backed by a godbus connection. A single Conn is meant to
// be created once per process and shared by every component.
type Conn struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// New connects to the system bus.
func New(logger *slog.Logger) (*Conn, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}
	return NewWithConn(conn, logger), nil
}

// NewWithConn wraps an existing godbus connection.
func NewWithConn(conn *dbus.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{conn: conn, logger: logger}
}

// Invoke implements Invoker.
func (c *Conn) Invoke(ctx context.Context, call Call) ([]interface{}, error) {
	if call.Signature != "" || len(call.Args) > 0 {
		sig, err := signatureOf(call.Args)
		if err != nil {
			return nil, &Error{Call: call, Err: err}
		}
		if sig != call.Signature {
			return nil, &Error{Call: call, Err: fmt.Errorf("%w: have %q, declared %q", ErrSignatureMismatch, sig, call.Signature)}
		}
	}

	c.logger.Debug("dbus call", "path", call.Path, "method", call.Method())
	obj := c.conn.Object(call.Destination, call.Path)
	res := obj.CallWithContext(ctx, call.Method(), 0, call.Args...)
	if res.Err != nil {
		return nil, &Error{Call: call, Err: res.Err}
	}
	return res.Body, nil
}

// Close closes the underlying connection. The shared system bus connection
// is closed for the whole process.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// signatureOf returns the D-Bus signature of args. godbus panics on values it
// can't represent, so that is turned into an error here.
func signatureOf(args []interface{}) (sig string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrSignatureMismatch, r)
		}
	}()
	return dbus.SignatureOf(args...).String(), nil
}
