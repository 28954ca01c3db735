package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/shazow/netsetup/internal/config"
	applog "github.com/shazow/netsetup/internal/log"
	"github.com/shazow/netsetup/network/networkmanager"
)

var (
	// Version is the version of the application. It is set at build time.
	Version string = "dev"
)

func main() {
	var (
		rootFlagSet = flag.NewFlagSet("netsetup", flag.ExitOnError)
		version     = rootFlagSet.Bool("version", false, "display version")
		logLevel    = rootFlagSet.String("log-level", "info", "log level: debug, info, warn, error (env: NETSETUP_LOG_LEVEL)")
		configPath  = rootFlagSet.String("config", config.DefaultPath(), "path to config toml file (env: NETSETUP_CONFIG)")
	)

	// Populated after flags are parsed, before any subcommand runs.
	a := &app{out: os.Stdout}

	root := &ffcli.Command{
		Name:        "netsetup",
		ShortUsage:  "netsetup [flags] <subcommand> [args...]",
		FlagSet:     rootFlagSet,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("NETSETUP"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(config.TOMLParser),
			ff.WithAllowMissingConfigFile(true),
			ff.WithIgnoreUndefined(true),
		},
		Subcommands: commands(a, configPath),
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println(Version)
		return
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	a.logs = applog.Init(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger := slog.Default()

	invoker, closeInvoker, err := newInvoker(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeInvoker()
	a.client = networkmanager.New(invoker, logger)

	if err := root.Run(context.Background()); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		closeInvoker()
		os.Exit(1)
	}
}

// subcommandOptions reads the same config file as the root command, scoped to
// the subcommand's [name] table.
func subcommandOptions(name string, configPath *string) []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix("NETSETUP"),
		ff.WithConfigFileVia(configPath),
		ff.WithConfigFileParser(config.SectionParser(name)),
		ff.WithAllowMissingConfigFile(true),
		ff.WithIgnoreUndefined(true),
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
