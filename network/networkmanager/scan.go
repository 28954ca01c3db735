package networkmanager

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/shazow/netsetup/network"
	"golang.org/x/sync/errgroup"
)

// Scan returns the access points the device currently sees, in
// NetworkManager's order. It does not trigger a new scan; see RequestScan.
// An access point whose properties can't be read (usually because it vanished
// mid-scan) is logged and left out of the result.
func (c *Client) Scan(ctx context.Context, device dbus.ObjectPath) ([]network.AccessPoint, error) {
	paths, err := propertyAs[[]dbus.ObjectPath](ctx, c, device, wirelessIface, "AccessPoints")
	if err != nil {
		return nil, fmt.Errorf("failed to list access points: %w", err)
	}

	found := make([]*network.AccessPoint, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			ap, err := c.getAccessPoint(ctx, path)
			if err != nil {
				c.logger.Warn("skipping access point", "path", path, "error", err)
				return nil
			}
			found[i] = &ap
			return nil
		})
	}
	_ = g.Wait()

	aps := make([]network.AccessPoint, 0, len(paths))
	for _, ap := range found {
		if ap != nil {
			aps = append(aps, *ap)
		}
	}
	return aps, nil
}

func (c *Client) getAccessPoint(ctx context.Context, path dbus.ObjectPath) (network.AccessPoint, error) {
	values := make([]string, len(network.AccessPointProperties))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range network.AccessPointProperties {
		g.Go(func() error {
			v, err := c.property(gctx, path, accessPointIface, name)
			if err != nil {
				return err
			}
			values[i] = stringify(v.Value())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return network.AccessPoint{}, err
	}

	var ap network.AccessPoint
	for i, name := range network.AccessPointProperties {
		ap.Set(name, values[i])
	}
	return ap, nil
}

func stringify(v interface{}) string {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// RequestScan asks the device to rescan. Results show up in later calls to
// Scan once NetworkManager has finished scanning.
func (c *Client) RequestScan(ctx context.Context, device dbus.ObjectPath) error {
	_, err := c.call(ctx, device, wirelessIface, "RequestScan", "a{sv}", map[string]dbus.Variant{})
	return err
}
