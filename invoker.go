//go:build !mock

package main

import (
	"log/slog"

	"github.com/shazow/netsetup/bus"
)

func newInvoker(logger *slog.Logger) (bus.Invoker, func() error, error) {
	conn, err := bus.New(logger)
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}
