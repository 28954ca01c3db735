// Package config reads netsetup's TOML config file into flags.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// TOMLParser is an ff.ConfigFileParser. Top-level keys set the flag of the
// same name and tables set "table.key" flags; array values set the flag once
// per element.
//
//	log-level = "debug"
//	[hotspot]
//	password = "hunter22"
func TOMLParser(r io.Reader, set func(name, value string) error) error {
	m, err := decode(r)
	if err != nil {
		return err
	}
	return setAll("", m, set)
}

// SectionParser returns a parser for one subcommand: top-level values and the
// values of the [section] table set flags by their bare names. Other tables
// are ignored.
func SectionParser(section string) func(io.Reader, func(name, value string) error) error {
	return func(r io.Reader, set func(name, value string) error) error {
		m, err := decode(r)
		if err != nil {
			return err
		}
		scoped := map[string]interface{}{}
		for k, v := range m {
			if _, ok := v.(map[string]interface{}); !ok {
				scoped[k] = v
			}
		}
		if table, ok := m[section].(map[string]interface{}); ok {
			for k, v := range table {
				scoped[k] = v
			}
		}
		return setAll("", scoped, set)
	}
}

func decode(r io.Reader) (map[string]interface{}, error) {
	var m map[string]interface{}
	if _, err := toml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return m, nil
}

func setAll(prefix string, m map[string]interface{}, set func(name, value string) error) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch v := m[k].(type) {
		case map[string]interface{}:
			if err := setAll(name, v, set); err != nil {
				return err
			}
		case []interface{}:
			for _, item := range v {
				if err := set(name, fmt.Sprint(item)); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
		default:
			if err := set(name, fmt.Sprint(v)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/netsetup/config.toml, falling back to
// ~/.config. It returns "" if neither can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "netsetup", "config.toml")
}
