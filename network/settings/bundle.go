// Package settings encodes NetworkManager connection profiles.
//
// A profile is an ordered list of sections ("connection", "802-11-wireless",
// "ipv4", ...), each an ordered list of keys with explicitly typed values.
// Lookups are linear and the first match wins, so a Bundle keeps whatever
// shape it was built or decoded with.
package settings

import (
	"fmt"
	"sort"

	"github.com/godbus/dbus/v5"
)

// D-Bus signatures understood by NetworkManager's settings encoding.
const (
	SigString      = "s"
	SigUint32      = "u"
	SigBool        = "b"
	SigBytes       = "ay"
	SigStrings     = "as"
	SigUint32s     = "au"
	SigUint32Lists = "aau"
	SigDicts       = "aa{sv}"
)

// Value is a settings value tagged with its D-Bus signature.
type Value struct {
	Signature string
	Data      interface{}
}

func String(s string) Value { return Value{SigString, s} }
func Uint32(u uint32) Value { return Value{SigUint32, u} }
func Bool(b bool) Value { return Value{SigBool, b} }
func Bytes(b []byte) Value { return Value{SigBytes, b} }
func Strings(s ...string) Value { return Value{SigStrings, s} }
func Uint32s(u []uint32) Value { return Value{SigUint32s, u} }
func Uint32Lists(u [][]uint32) Value { return Value{SigUint32Lists, u} }
func Dicts(d ...[]Entry) Value { return Value{SigDicts, d} }

func (v Value) String() string {
	switch d := v.Data.(type) {
	case []byte:
		return BytesToString(d)
	default:
		return fmt.Sprint(d)
	}
}

// Entry is one key of a section.
type Entry struct {
	Key   string
	Value Value
}

// Section is a named group of entries.
type Section struct {
	Name    string
	Entries []Entry
}

// Lookup returns the first entry named key.
func (s Section) Lookup(key string) (Value, bool) {
	return lookup(s.Entries, key)
}

func lookup(entries []Entry, key string) (Value, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Bundle is a full connection profile.
type Bundle []Section

// Section returns the first section named name.
func (b Bundle) Section(name string) (Section, bool) {
	for _, s := range b {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Lookup returns the value of key in the first section named section.
func (b Bundle) Lookup(section, key string) (Value, bool) {
	s, ok := b.Section(section)
	if !ok {
		return Value{}, false
	}
	return s.Lookup(key)
}

// LookupString is Lookup for string values. A missing key or a value of
// another type yields "".
func (b Bundle) LookupString(section, key string) string {
	v, ok := b.Lookup(section, key)
	if !ok {
		return ""
	}
	s, _ := v.Data.(string)
	return s
}

// Wire converts the bundle into the a{sa{sv}} shape godbus sends. Sections
// or keys that appear more than once keep their first value, matching Lookup.
func (b Bundle) Wire() map[string]map[string]dbus.Variant {
	out := make(map[string]map[string]dbus.Variant, len(b))
	for _, s := range b {
		if _, seen := out[s.Name]; seen {
			continue
		}
		out[s.Name] = wireEntries(s.Entries)
	}
	return out
}

func wireEntries(entries []Entry) map[string]dbus.Variant {
	m := make(map[string]dbus.Variant, len(entries))
	for _, e := range entries {
		if _, seen := m[e.Key]; seen {
			continue
		}
		m[e.Key] = e.Value.variant()
	}
	return m
}

func (v Value) variant() dbus.Variant {
	data := v.Data
	switch d := v.Data.(type) {
	case [][]Entry:
		dicts := make([]map[string]dbus.Variant, 0, len(d))
		for _, entries := range d {
			dicts = append(dicts, wireEntries(entries))
		}
		data = dicts
	case nil:
		// Typed empty values so godbus can still encode the signature.
		switch v.Signature {
		case SigBytes:
			data = []byte{}
		case SigStrings:
			data = []string{}
		case SigUint32s:
			data = []uint32{}
		case SigUint32Lists:
			data = [][]uint32{}
		case SigDicts:
			data = []map[string]dbus.Variant{}
		}
	}
	return dbus.MakeVariantWithSignature(data, dbus.ParseSignatureMust(v.Signature))
}

// FromWire converts a GetSettings reply into a Bundle. Map iteration order is
// not stable, so sections and keys are sorted by name.
func FromWire(w map[string]map[string]dbus.Variant) Bundle {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	b := make(Bundle, 0, len(names))
	for _, name := range names {
		b = append(b, Section{Name: name, Entries: entriesFromWire(w[name])})
	}
	return b
}

func entriesFromWire(m map[string]dbus.Variant) []Entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: valueFromVariant(m[k])})
	}
	return entries
}

func valueFromVariant(v dbus.Variant) Value {
	data := v.Value()
	if dicts, ok := data.([]map[string]dbus.Variant); ok {
		nested := make([][]Entry, 0, len(dicts))
		for _, d := range dicts {
			nested = append(nested, entriesFromWire(d))
		}
		data = nested
	}
	return Value{Signature: v.Signature().String(), Data: data}
}
