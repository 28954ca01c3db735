package networkmanager

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/shazow/netsetup/network"
	"github.com/shazow/netsetup/network/settings"
)

// CreateAccessPoint turns device into a WPA2 access point for ssid. An
// existing profile for ssid is reused as is. Failures are logged and not
// returned.
func (c *Client) CreateAccessPoint(ctx context.Context, ssid, password string, device network.Device) {
	logger := c.logger.With("ssid", ssid, "interface", device.Interface, "driver", device.Driver)

	existing, err := c.FindBySSID(ctx, ssid)
	if err != nil {
		logger.Error("unable to create access point", "error", err)
		return
	}

	if existing != "" {
		logger.Info("using existing configuration for access point", "path", existing)
		if err := c.Activate(ctx, existing, device.Path); err != nil {
			logger.Error("unable to create access point", "error", err)
			return
		}
		logger.Info("access point active")
		return
	}

	b, err := settings.Encode(settings.KindAccessPoint, settings.Params{SSID: ssid, Password: password})
	if err != nil {
		logger.Error("unable to create access point", "error", err)
		return
	}
	profile, err := c.addConnection(ctx, b)
	if err != nil {
		logger.Error("unable to create access point", "error", err)
		return
	}

	logger.Info("creating access point for the first time", "path", profile)
	if err := c.Activate(ctx, profile, device.Path); err != nil {
		logger.Error("unable to create access point", "error", err)
		return
	}
	logger.Info("access point active")
}

// ShareEthernet saves a new profile that shares this host's connection over
// ethernet and returns its path. The profile is not activated. On failure
// the error is logged and the returned path is empty.
func (c *Client) ShareEthernet(ctx context.Context) dbus.ObjectPath {
	b, err := settings.Encode(settings.KindEthernetSharing, settings.Params{})
	if err != nil {
		c.logger.Error("unable to share ethernet", "error", err)
		return ""
	}
	profile, err := c.addConnection(ctx, b)
	if err != nil {
		c.logger.Error("unable to share ethernet", "error", err)
		return ""
	}
	return profile
}
