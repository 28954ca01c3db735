package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/peterbourgon/ff/v3/ffcli"
	applog "github.com/shazow/netsetup/internal/log"
	"github.com/shazow/netsetup/network"
	"github.com/shazow/netsetup/network/networkmanager"
	"github.com/shazow/netsetup/network/settings"
	"github.com/shazow/netsetup/qrwifi"
)

// app is what every subcommand runs against.
type app struct {
	client *networkmanager.Client
	logs   *applog.Handler
	out    io.Writer
}

func commands(a *app, configPath *string) []*ffcli.Command {
	newFlagSet := func(name string) *flag.FlagSet {
		return flag.NewFlagSet("netsetup "+name, flag.ExitOnError)
	}

	devicesFlagSet := newFlagSet("devices")
	devicesType := devicesFlagSet.String("type", "all", "device type: wifi, ethernet, ap, all")
	devicesJSON := devicesFlagSet.Bool("json", false, "output in JSON format")

	scanFlagSet := newFlagSet("scan")
	scanRescan := scanFlagSet.Bool("rescan", false, "request a fresh scan before listing")
	scanJSON := scanFlagSet.Bool("json", false, "output in JSON format")
	scanSort := scanFlagSet.Bool("sort", false, "saved networks first, then by signal strength")

	savedFlagSet := newFlagSet("saved")
	savedJSON := savedFlagSet.Bool("json", false, "output in JSON format")

	activeFlagSet := newFlagSet("active")
	activeJSON := activeFlagSet.Bool("json", false, "output in JSON format")

	addFlagSet := newFlagSet("add")
	addPassword := addFlagSet.String("password", "", "WPA passphrase, empty for an open network")
	addForce := addFlagSet.Bool("force", false, "replace an existing profile for the same ssid")
	addAddress := addFlagSet.String("address", "", "static IPv4 address (default: DHCP)")
	addGateway := addFlagSet.String("gateway", "", "static IPv4 gateway")
	addDNS := addFlagSet.String("dns", "", "static IPv4 DNS server")

	replaceFlagSet := newFlagSet("replace")
	replacePassword := replaceFlagSet.String("password", "", "new WPA passphrase")

	forgetFlagSet := newFlagSet("forget")
	forgetPath := forgetFlagSet.String("path", "", "object path of the profile to forget")

	hotspotFlagSet := newFlagSet("hotspot")
	hotspotPassword := hotspotFlagSet.String("password", "", "WPA2 passphrase")
	hotspotIface := hotspotFlagSet.String("iface", "", "wifi interface (default: first access point capable device)")
	hotspotQR := hotspotFlagSet.Bool("qr", false, "print a QR code for joining the hotspot")

	cmd := func(name, usage, help string, fs *flag.FlagSet, exec func(ctx context.Context, args []string) error) *ffcli.Command {
		if fs == nil {
			fs = newFlagSet(name)
		}
		return &ffcli.Command{
			Name:       name,
			ShortUsage: "netsetup " + usage,
			ShortHelp:  help,
			FlagSet:    fs,
			Options:    subcommandOptions(name, configPath),
			Exec:       exec,
		}
	}

	return []*ffcli.Command{
		cmd("devices", "devices [-type wifi|ethernet|ap|all] [-json]", "List network devices", devicesFlagSet,
			func(ctx context.Context, args []string) error {
				return a.runDevices(ctx, *devicesType, *devicesJSON)
			}),
		cmd("scan", "scan [-rescan] [-sort] [-json] <iface>", "List wireless networks visible to a device", scanFlagSet,
			func(ctx context.Context, args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("scan requires an interface")
				}
				return a.runScan(ctx, args[0], scanOptions{rescan: *scanRescan, sort: *scanSort, json: *scanJSON})
			}),
		cmd("saved", "saved [-json]", "List saved wireless networks", savedFlagSet,
			func(ctx context.Context, args []string) error {
				return a.runSaved(ctx, *savedJSON)
			}),
		cmd("active", "active [-json]", "List active connections", activeFlagSet,
			func(ctx context.Context, args []string) error {
				return a.runActive(ctx, *activeJSON)
			}),
		cmd("connectivity", "connectivity", "Check global connectivity", nil,
			func(ctx context.Context, args []string) error {
				return a.runConnectivity(ctx)
			}),
		cmd("add", "add [-password pw] [-force] [-address ip -gateway ip -dns ip] <ssid>", "Save a wireless network", addFlagSet,
			func(ctx context.Context, args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("add requires an ssid")
				}
				opts := networkmanager.AddOptions{SSID: args[0], Password: *addPassword, Force: *addForce}
				if *addAddress != "" {
					opts.Manual = &settings.ManualIPv4{Address: *addAddress, Gateway: *addGateway, DNS: *addDNS}
				}
				return a.runAdd(ctx, opts)
			}),
		cmd("replace", "replace [-password pw] <ssid>", "Replace a saved wireless network", replaceFlagSet,
			func(ctx context.Context, args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("replace requires an ssid")
				}
				return a.runReplace(ctx, args[0], *replacePassword)
			}),
		cmd("forget", "forget [-path profile] [ssid]", "Delete a saved network", forgetFlagSet,
			func(ctx context.Context, args []string) error {
				var ssid string
				if len(args) > 0 {
					ssid = args[0]
				}
				return a.runForget(ctx, dbus.ObjectPath(*forgetPath), ssid)
			}),
		cmd("activate", "activate <ssid> <iface>", "Connect a device using a saved network", nil,
			func(ctx context.Context, args []string) error {
				if len(args) != 2 {
					return fmt.Errorf("activate requires an ssid and an interface")
				}
				return a.runActivate(ctx, args[0], args[1])
			}),
		cmd("hotspot", "hotspot -password pw [-iface name] [-qr] <ssid>", "Run a WPA2 access point", hotspotFlagSet,
			func(ctx context.Context, args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("hotspot requires an ssid")
				}
				return a.runHotspot(ctx, args[0], *hotspotPassword, *hotspotIface, *hotspotQR)
			}),
		cmd("share-ethernet", "share-ethernet", "Save a profile sharing this host's connection over ethernet", nil,
			func(ctx context.Context, args []string) error {
				return a.runShareEthernet(ctx)
			}),
		cmd("enable", "enable <iface>", "Activate the best profile on a device", nil,
			func(ctx context.Context, args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("enable requires an interface")
				}
				return a.runEnable(ctx, args[0], true)
			}),
		cmd("disable", "disable <iface>", "Disconnect a device", nil,
			func(ctx context.Context, args []string) error {
				if len(args) != 1 {
					return fmt.Errorf("disable requires an interface")
				}
				return a.runEnable(ctx, args[0], false)
			}),
	}
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) runDevices(ctx context.Context, typ string, asJSON bool) error {
	var devices []network.Device
	switch typ {
	case "wifi":
		devices = a.client.ListWirelessDevices(ctx)
	case "ethernet":
		devices = a.client.ListWiredDevices(ctx)
	case "ap":
		devices = a.client.ListAccessPointDevices(ctx)
	case "all":
		devices = append(devices, a.client.ListWiredDevices(ctx)...)
		devices = append(devices, a.client.ListWirelessDevices(ctx)...)
		devices = append(devices, a.client.ListDevicesByType(ctx, network.DeviceTypeBridge)...)
	default:
		return fmt.Errorf("invalid device type: %s", typ)
	}

	if asJSON {
		if devices == nil {
			devices = []network.Device{}
		}
		return a.writeJSON(devices)
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		addr := d.IPv4.Address
		if addr != "" {
			addr += "/" + d.IPv4.Prefix
		}
		ap := ""
		if d.Type == network.DeviceTypeWifi {
			ap = yesNo(d.APCapable)
		}
		rows = append(rows, []string{d.Interface, d.Type.String(), d.Driver, yesNo(d.Connected), addr, d.IPv4.Gateway, ap})
	}
	fmt.Fprint(a.out, renderTable([]string{"INTERFACE", "TYPE", "DRIVER", "CONNECTED", "ADDRESS", "GATEWAY", "AP"}, rows))
	return nil
}

type scanOptions struct {
	rescan bool
	sort   bool
	json   bool
}

func (a *app) runScan(ctx context.Context, iface string, opts scanOptions) error {
	dev, err := a.client.FindDevice(ctx, iface)
	if err != nil {
		return err
	}
	if opts.rescan {
		if err := a.client.RequestScan(ctx, dev.Path); err != nil {
			return fmt.Errorf("failed to request scan: %w", err)
		}
	}
	aps, err := a.client.Scan(ctx, dev.Path)
	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}
	if opts.sort {
		saved, err := a.client.ListSaved(ctx)
		if err != nil {
			return err
		}
		network.SortAccessPoints(aps, saved)
	}

	if opts.json {
		return a.writeJSON(aps)
	}

	rows := make([][]string, 0, len(aps))
	for _, ap := range aps {
		rows = append(rows, []string{ap.SSID, renderStrength(ap.Strength), ap.Frequency, ap.HwAddress, yesNo(ap.IsSecure())})
	}
	fmt.Fprint(a.out, renderTable([]string{"SSID", "STRENGTH", "FREQUENCY", "BSSID", "SECURE"}, rows))
	return nil
}

func (a *app) runSaved(ctx context.Context, asJSON bool) error {
	saved, err := a.client.ListSaved(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return a.writeJSON(saved)
	}
	for _, s := range saved {
		fmt.Fprintf(a.out, "%s\t%s\n", s.SSID, s.Path)
	}
	return nil
}

func (a *app) runActive(ctx context.Context, asJSON bool) error {
	active, err := a.client.ActiveConnections(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		return a.writeJSON(active)
	}
	for _, c := range active {
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", c.Name, c.Type, c.Path)
	}
	return nil
}

func (a *app) runConnectivity(ctx context.Context) error {
	level, err := a.client.CheckConnectivity(ctx)
	if err != nil {
		return err
	}
	style := errorStyle
	if level.Connected() {
		style = successStyle
	}
	fmt.Fprintln(a.out, style.Render(level.String()))
	return nil
}

func (a *app) runAdd(ctx context.Context, opts networkmanager.AddOptions) error {
	input := networkInput{SSID: opts.SSID, Password: opts.Password}
	if opts.Manual != nil {
		input.Address = opts.Manual.Address
		input.Gateway = opts.Manual.Gateway
		input.DNS = opts.Manual.DNS
	}
	if err := validateInput(input); err != nil {
		return err
	}
	path, err := a.client.Add(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "saved %q as %s\n", opts.SSID, path)
	return nil
}

func (a *app) runReplace(ctx context.Context, ssid, password string) error {
	if err := validateInput(networkInput{SSID: ssid, Password: password}); err != nil {
		return err
	}
	path, err := a.client.Replace(ctx, ssid, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "replaced %q with %s\n", ssid, path)
	return nil
}

func (a *app) runForget(ctx context.Context, profile dbus.ObjectPath, ssid string) error {
	if err := a.client.Forget(ctx, profile, ssid); err != nil {
		return err
	}
	if profile != "" {
		fmt.Fprintf(a.out, "forgot %s\n", profile)
	} else {
		fmt.Fprintf(a.out, "forgot %q\n", ssid)
	}
	return nil
}

func (a *app) runActivate(ctx context.Context, ssid, iface string) error {
	profile, err := a.client.FindBySSID(ctx, ssid)
	if err != nil {
		return err
	}
	if profile == "" {
		return fmt.Errorf("no saved network for %q: %w", ssid, network.ErrNotFound)
	}
	dev, err := a.client.FindDevice(ctx, iface)
	if err != nil {
		return err
	}
	if err := a.client.Activate(ctx, profile, dev.Path); err != nil {
		return fmt.Errorf("failed to activate %q on %s: %w", ssid, iface, err)
	}
	fmt.Fprintf(a.out, "activated %q on %s\n", ssid, iface)
	return nil
}

func (a *app) runHotspot(ctx context.Context, ssid, password, iface string, qr bool) error {
	if password == "" {
		return fmt.Errorf("hotspot requires a password: %w", network.ErrMissingCredentials)
	}
	if err := validateInput(networkInput{SSID: ssid, Password: password}); err != nil {
		return err
	}

	var dev network.Device
	if iface != "" {
		var err error
		if dev, err = a.client.FindDevice(ctx, iface); err != nil {
			return err
		}
	} else {
		devices := a.client.ListAccessPointDevices(ctx)
		if len(devices) == 0 {
			return fmt.Errorf("no access point capable device: %w", network.ErrNotFound)
		}
		dev = devices[0]
	}

	a.logs.Reset()
	a.client.CreateAccessPoint(ctx, ssid, password, dev)
	if err := lastError(a.logs.Errors()); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "hotspot %q running on %s\n", ssid, dev.Interface)
	if qr {
		code, err := qrwifi.GenerateWifiQRCode(ssid, password, false)
		if err != nil {
			return err
		}
		fmt.Fprint(a.out, code)
	}
	return nil
}

func (a *app) runShareEthernet(ctx context.Context) error {
	a.logs.Reset()
	path := a.client.ShareEthernet(ctx)
	if path == "" {
		if err := lastError(a.logs.Errors()); err != nil {
			return err
		}
		return errors.New("unable to share ethernet")
	}
	fmt.Fprintf(a.out, "saved %q as %s\n", settings.SharingID, path)
	return nil
}

func (a *app) runEnable(ctx context.Context, iface string, enable bool) error {
	dev, err := a.client.FindDevice(ctx, iface)
	if err != nil {
		return err
	}
	if enable {
		err = a.client.EnableDevice(ctx, dev.Path)
	} else {
		err = a.client.DisableDevice(ctx, dev.Path)
	}
	if err != nil {
		return err
	}
	state := "disabled"
	if enable {
		state = "enabled"
	}
	fmt.Fprintf(a.out, "%s %s\n", state, iface)
	return nil
}

// lastError turns the most recent error record into an error, or returns nil
// if there is none.
func lastError(records []slog.Record) error {
	if len(records) == 0 {
		return nil
	}
	r := records[len(records)-1]
	msg := r.Message
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == "error" {
			msg = fmt.Sprintf("%s: %s", msg, attr.Value)
			return false
		}
		return true
	})
	return errors.New(msg)
}
