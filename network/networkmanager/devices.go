package networkmanager

import (
	"context"
	"fmt"
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/shazow/netsetup/network"
	"golang.org/x/sync/errgroup"
)

func (c *Client) getDevicePaths(ctx context.Context) ([]dbus.ObjectPath, error) {
	body, err := c.call(ctx, nmPath, nmIface, "GetDevices", "")
	if err != nil {
		return nil, err
	}
	return replyAs[[]dbus.ObjectPath](body)
}

// ListDevicesByType returns every device of type typ, in NetworkManager's
// enumeration order. If the devices can't be enumerated at all the result is
// empty; a single device that can't be read is skipped.
func (c *Client) ListDevicesByType(ctx context.Context, typ network.DeviceType) []network.Device {
	paths, err := c.getDevicePaths(ctx)
	if err != nil {
		c.logger.Error("failed to enumerate devices", "error", err)
		return []network.Device{}
	}

	found := make([]*network.Device, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			dev, err := c.getDevice(ctx, path)
			if err != nil {
				c.logger.Warn("skipping device", "path", path, "error", err)
				return nil
			}
			if dev.Type != typ {
				return nil
			}
			dev.IPv4 = c.GetIPv4Config(ctx, path)
			found[i] = &dev
			return nil
		})
	}
	_ = g.Wait()

	devices := make([]network.Device, 0, len(paths))
	for _, dev := range found {
		if dev != nil {
			devices = append(devices, *dev)
		}
	}
	return devices
}

// getDevice reads the type, connectivity, interface and driver of a device
// concurrently.
func (c *Client) getDevice(ctx context.Context, path dbus.ObjectPath) (network.Device, error) {
	dev := network.Device{Path: path}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		typ, err := propertyAs[uint32](gctx, c, path, deviceIface, "DeviceType")
		dev.Type = network.DeviceType(typ)
		return err
	})
	g.Go(func() error {
		level, err := propertyAs[uint32](gctx, c, path, deviceIface, "Ip4Connectivity")
		dev.Connected = network.Connectivity(level).Connected()
		return err
	})
	g.Go(func() error {
		iface, err := propertyAs[string](gctx, c, path, deviceIface, "Interface")
		dev.Interface = iface
		return err
	})
	g.Go(func() error {
		driver, err := propertyAs[string](gctx, c, path, deviceIface, "Driver")
		dev.Driver = driver
		return err
	})
	if err := g.Wait(); err != nil {
		return network.Device{}, err
	}
	return dev, nil
}

// GetIPv4Config resolves the active IPv4 address, prefix and gateway of a
// device. Any failure along the way yields an empty config.
func (c *Client) GetIPv4Config(ctx context.Context, device dbus.ObjectPath) network.IPv4Config {
	cfg, err := c.getIPv4Config(ctx, device)
	if err != nil {
		c.logger.Debug("no ipv4 configuration", "path", device, "error", err)
		return network.IPv4Config{}
	}
	return cfg
}

func (c *Client) getIPv4Config(ctx context.Context, device dbus.ObjectPath) (network.IPv4Config, error) {
	configPath, err := propertyAs[dbus.ObjectPath](ctx, c, device, deviceIface, "Ip4Config")
	if err != nil {
		return network.IPv4Config{}, err
	}
	if configPath == nmNoPath || configPath == "" {
		return network.IPv4Config{}, network.ErrNotFound
	}

	addressData, err := propertyAs[[]map[string]dbus.Variant](ctx, c, configPath, ip4ConfigIface, "AddressData")
	if err != nil {
		return network.IPv4Config{}, err
	}
	if len(addressData) == 0 {
		return network.IPv4Config{}, network.ErrNotFound
	}

	gateway, err := propertyAs[string](ctx, c, configPath, ip4ConfigIface, "Gateway")
	if err != nil {
		return network.IPv4Config{}, err
	}

	cfg := network.IPv4Config{Gateway: gateway}
	if v, ok := addressData[0]["address"]; ok {
		cfg.Address, _ = v.Value().(string)
	}
	if v, ok := addressData[0]["prefix"]; ok {
		if prefix, ok := v.Value().(uint32); ok {
			cfg.Prefix = strconv.FormatUint(uint64(prefix), 10)
		}
	}
	return cfg, nil
}

// ListWirelessDevices returns wifi devices with their access point capability
// resolved.
func (c *Client) ListWirelessDevices(ctx context.Context) []network.Device {
	devices := c.ListDevicesByType(ctx, network.DeviceTypeWifi)

	var g errgroup.Group
	for i := range devices {
		g.Go(func() error {
			caps, err := propertyAs[uint32](ctx, c, devices[i].Path, wirelessIface, "WirelessCapabilities")
			if err != nil {
				c.logger.Warn("failed to read wireless capabilities", "path", devices[i].Path, "error", err)
				return nil
			}
			devices[i].APCapable = caps&wifiCapAP != 0
			return nil
		})
	}
	_ = g.Wait()
	return devices
}

// ListWiredDevices returns ethernet devices.
func (c *Client) ListWiredDevices(ctx context.Context) []network.Device {
	return c.ListDevicesByType(ctx, network.DeviceTypeEthernet)
}

// ListAccessPointDevices returns wifi devices that can run an access point.
func (c *Client) ListAccessPointDevices(ctx context.Context) []network.Device {
	var devices []network.Device
	for _, dev := range c.ListWirelessDevices(ctx) {
		if dev.APCapable {
			devices = append(devices, dev)
		}
	}
	return devices
}

// FindDevice returns the device with the given interface name, of any type.
func (c *Client) FindDevice(ctx context.Context, iface string) (network.Device, error) {
	paths, err := c.getDevicePaths(ctx)
	if err != nil {
		return network.Device{}, err
	}
	for _, path := range paths {
		name, err := propertyAs[string](ctx, c, path, deviceIface, "Interface")
		if err != nil || name != iface {
			continue
		}
		dev, err := c.getDevice(ctx, path)
		if err != nil {
			return network.Device{}, err
		}
		dev.IPv4 = c.GetIPv4Config(ctx, path)
		return dev, nil
	}
	return network.Device{}, fmt.Errorf("device %q: %w", iface, network.ErrNotFound)
}

// EnableDevice asks NetworkManager to activate the best available profile on
// the device.
func (c *Client) EnableDevice(ctx context.Context, device dbus.ObjectPath) error {
	_, err := c.call(ctx, nmPath, nmIface, "ActivateConnection", "ooo", nmNoPath, device, nmNoPath)
	return err
}

// DisableDevice disconnects the device.
func (c *Client) DisableDevice(ctx context.Context, device dbus.ObjectPath) error {
	_, err := c.call(ctx, device, deviceIface, "Disconnect", "")
	return err
}

// CheckConnectivity asks NetworkManager to re-check global connectivity.
func (c *Client) CheckConnectivity(ctx context.Context) (network.Connectivity, error) {
	body, err := c.call(ctx, nmPath, nmIface, "CheckConnectivity", "")
	if err != nil {
		return network.ConnectivityUnknown, err
	}
	level, err := replyAs[uint32](body)
	if err != nil {
		return network.ConnectivityUnknown, err
	}
	return network.Connectivity(level), nil
}
