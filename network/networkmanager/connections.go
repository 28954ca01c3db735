package networkmanager

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/shazow/netsetup/network"
	"github.com/shazow/netsetup/network/settings"
	"golang.org/x/sync/errgroup"
)

// AddOptions describes a wireless client profile to save.
type AddOptions struct {
	SSID string
	// Password is the WPA passphrase. An empty password saves an open network.
	Password string
	// Force replaces an existing profile with the same SSID.
	Force bool
	// Manual configures a static IPv4 address instead of DHCP.
	Manual *settings.ManualIPv4
}

func (c *Client) listConnections(ctx context.Context) ([]dbus.ObjectPath, error) {
	body, err := c.call(ctx, settingsPath, settingsIface, "ListConnections", "")
	if err != nil {
		return nil, err
	}
	return replyAs[[]dbus.ObjectPath](body)
}

// GetSettings returns the settings of a saved profile.
func (c *Client) GetSettings(ctx context.Context, profile dbus.ObjectPath) (settings.Bundle, error) {
	body, err := c.call(ctx, profile, connectionIface, "GetSettings", "")
	if err != nil {
		return nil, err
	}
	wire, err := replyAs[map[string]map[string]dbus.Variant](body)
	if err != nil {
		return nil, err
	}
	return settings.FromWire(wire), nil
}

// ListSaved returns every saved wireless profile that has an SSID. Other
// profiles are not listed. Profiles whose settings can't be read are skipped.
func (c *Client) ListSaved(ctx context.Context) ([]network.SavedNetwork, error) {
	paths, err := c.listConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	found := make([]*network.SavedNetwork, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			b, err := c.GetSettings(ctx, path)
			if err != nil {
				c.logger.Warn("skipping connection", "path", path, "error", err)
				return nil
			}
			if ssid, ok := settings.SSID(b); ok {
				found[i] = &network.SavedNetwork{SSID: ssid, Path: path}
			}
			return nil
		})
	}
	_ = g.Wait()

	saved := make([]network.SavedNetwork, 0, len(paths))
	for _, s := range found {
		if s != nil {
			saved = append(saved, *s)
		}
	}
	return saved, nil
}

// FindBySSID returns the path of the first saved profile for ssid, or "" if
// there is none.
func (c *Client) FindBySSID(ctx context.Context, ssid string) (dbus.ObjectPath, error) {
	if ssid == "" {
		return "", network.ErrMissingCredentials
	}
	saved, err := c.ListSaved(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range saved {
		if s.SSID == ssid {
			return s.Path, nil
		}
	}
	return "", nil
}

// findAllBySSID returns the paths of every saved profile for ssid.
func (c *Client) findAllBySSID(ctx context.Context, ssid string) ([]dbus.ObjectPath, error) {
	if ssid == "" {
		return nil, network.ErrMissingCredentials
	}
	saved, err := c.ListSaved(ctx)
	if err != nil {
		return nil, err
	}
	var paths []dbus.ObjectPath
	for _, s := range saved {
		if s.SSID == ssid {
			paths = append(paths, s.Path)
		}
	}
	return paths, nil
}

// Add saves a wireless client profile and returns its path.
//
// If a profile for the SSID already exists Add fails with a
// *network.DuplicateProfileError, unless opts.Force is set, in which case
// every old profile for the SSID is deleted first. The deletes and the add are
// separate calls: if the add fails, no profile for the SSID remains.
func (c *Client) Add(ctx context.Context, opts AddOptions) (dbus.ObjectPath, error) {
	existing, err := c.findAllBySSID(ctx, opts.SSID)
	if err != nil {
		return "", fmt.Errorf("unable to add network: %w", err)
	}

	if len(existing) > 0 {
		if !opts.Force {
			return "", &network.DuplicateProfileError{SSID: opts.SSID}
		}
		for _, path := range existing {
			c.logger.Info("network configuration already exists, replacing it", "ssid", opts.SSID, "path", path)
			if err := c.deleteConnection(ctx, path); err != nil {
				return "", fmt.Errorf("unable to replace network %q: %w", opts.SSID, err)
			}
		}
	}

	b, err := settings.Encode(settings.KindWirelessClient, settings.Params{
		SSID:     opts.SSID,
		Password: opts.Password,
		Manual:   opts.Manual,
	})
	if err != nil {
		return "", err
	}
	path, err := c.addConnection(ctx, b)
	if err != nil {
		return "", fmt.Errorf("unable to add network %q: %w", opts.SSID, err)
	}
	return path, nil
}

// Replace forgets the saved profile for ssid and saves a new one.
func (c *Client) Replace(ctx context.Context, ssid, password string) (dbus.ObjectPath, error) {
	if err := c.Forget(ctx, "", ssid); err != nil {
		return "", err
	}
	return c.Add(ctx, AddOptions{SSID: ssid, Password: password})
}

// Forget deletes a saved profile. If profile is empty, it is looked up by
// ssid. ErrMissingCredentials is returned when neither resolves to a profile.
func (c *Client) Forget(ctx context.Context, profile dbus.ObjectPath, ssid string) error {
	if profile == "" {
		if ssid == "" {
			return network.ErrMissingCredentials
		}
		path, err := c.FindBySSID(ctx, ssid)
		if err != nil {
			return err
		}
		if path == "" {
			return fmt.Errorf("no saved network for %q: %w", ssid, network.ErrMissingCredentials)
		}
		profile = path
	}
	return c.deleteConnection(ctx, profile)
}

// Activate applies a saved profile to a device.
func (c *Client) Activate(ctx context.Context, profile, device dbus.ObjectPath) error {
	_, err := c.call(ctx, nmPath, nmIface, "ActivateConnection", "ooo", profile, device, nmNoPath)
	return err
}

// addConnection persists b and returns the new profile path.
func (c *Client) addConnection(ctx context.Context, b settings.Bundle) (dbus.ObjectPath, error) {
	body, err := c.call(ctx, settingsPath, settingsIface, "AddConnection", "a{sa{sv}}", b.Wire())
	if err != nil {
		return "", err
	}
	return replyAs[dbus.ObjectPath](body)
}

func (c *Client) deleteConnection(ctx context.Context, profile dbus.ObjectPath) error {
	_, err := c.call(ctx, profile, connectionIface, "Delete", "")
	return err
}

// ActiveConnections returns the active wireless, ethernet and bridge
// connections, named by their profile id. Connections of other types and
// connections that can't be read are left out.
func (c *Client) ActiveConnections(ctx context.Context) ([]network.ActiveConnection, error) {
	paths, err := propertyAs[[]dbus.ObjectPath](ctx, c, nmPath, nmIface, "ActiveConnections")
	if err != nil {
		return nil, err
	}

	found := make([]*network.ActiveConnection, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			active, err := c.getActiveConnection(ctx, path)
			if err != nil {
				c.logger.Warn("skipping active connection", "path", path, "error", err)
				return nil
			}
			switch active.Type {
			case settings.TypeWireless, settings.TypeEthernet, settings.TypeBridge:
				found[i] = &active
			}
			return nil
		})
	}
	_ = g.Wait()

	actives := make([]network.ActiveConnection, 0, len(paths))
	for _, a := range found {
		if a != nil {
			actives = append(actives, *a)
		}
	}
	return actives, nil
}

func (c *Client) getActiveConnection(ctx context.Context, path dbus.ObjectPath) (network.ActiveConnection, error) {
	active := network.ActiveConnection{Path: path}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		typ, err := propertyAs[string](gctx, c, path, activeConnectionIface, "Type")
		active.Type = typ
		return err
	})
	g.Go(func() error {
		conn, err := propertyAs[dbus.ObjectPath](gctx, c, path, activeConnectionIface, "Connection")
		active.Connection = conn
		return err
	})
	if err := g.Wait(); err != nil {
		return active, err
	}

	switch active.Type {
	case settings.TypeWireless, settings.TypeEthernet, settings.TypeBridge:
	default:
		return active, nil
	}

	b, err := c.GetSettings(ctx, active.Connection)
	if err != nil {
		return active, err
	}
	active.Name = b.LookupString(settings.SectionConnection, "id")
	return active, nil
}
