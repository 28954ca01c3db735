package settings

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWirelessClientRoundTrip(t *testing.T) {
	b, err := Encode(KindWirelessClient, Params{SSID: "TestNet", Password: "hunter22"})
	require.NoError(t, err)

	decoded := FromWire(b.Wire())
	v, ok := decoded.Lookup(SectionWireless, "ssid")
	require.True(t, ok)
	assert.Equal(t, SigBytes, v.Signature)

	raw, ok := v.Data.([]byte)
	require.True(t, ok, "ssid should decode to bytes, got %T", v.Data)
	assert.Equal(t, "TestNet", BytesToString(raw))

	p := Decode(decoded)
	assert.Equal(t, "TestNet", p.ID)
	assert.Equal(t, "TestNet", p.SSID)
	assert.Equal(t, TypeWireless, p.Type)
	assert.Equal(t, "infrastructure", p.Mode)
	assert.Equal(t, "wpa-psk", p.KeyMgmt)
	assert.Equal(t, "auto", p.IPv4Method)
	assert.Equal(t, "auto", p.IPv6Method)
	assert.NotEmpty(t, p.UUID)
}

func TestWirelessClientWithoutPassword(t *testing.T) {
	b, err := Encode(KindWirelessClient, Params{SSID: "Cafe"})
	require.NoError(t, err)

	_, ok := b.Section(SectionWirelessSecurity)
	assert.False(t, ok, "open networks should not carry a security section")
}

func TestEncodeKeepsGivenUUID(t *testing.T) {
	b, err := Encode(KindEthernet, Params{UUID: "5b1d2b6a-3a4c-4f8e-9c1e-2c6a5a0b7f10"})
	require.NoError(t, err)
	assert.Equal(t, "5b1d2b6a-3a4c-4f8e-9c1e-2c6a5a0b7f10", b.LookupString(SectionConnection, "uuid"))
	assert.Equal(t, "Wired connection", b.LookupString(SectionConnection, "id"))
}

func TestAccessPointProfile(t *testing.T) {
	b, err := Encode(KindAccessPoint, Params{SSID: "Hotspot", Password: "letmein123"})
	require.NoError(t, err)

	assert.Equal(t, "ap", b.LookupString(SectionWireless, "mode"))
	assert.Equal(t, "shared", b.LookupString(SectionIPv4, "method"))
	assert.Equal(t, "ignore", b.LookupString(SectionIPv6, "method"))
	assert.Equal(t, "letmein123", b.LookupString(SectionWirelessSecurity, "psk"))

	for key, want := range map[string]string{"group": "ccmp", "pairwise": "ccmp", "proto": "rsn"} {
		v, ok := b.Lookup(SectionWirelessSecurity, key)
		require.True(t, ok, key)
		assert.Equal(t, SigStrings, v.Signature, key)
		assert.Equal(t, []string{want}, v.Data, key)
	}
}

func TestEthernetSharingProfile(t *testing.T) {
	b, err := Encode(KindEthernetSharing, Params{})
	require.NoError(t, err)

	p := Decode(b)
	assert.Equal(t, SharingID, p.ID)
	assert.Equal(t, TypeEthernet, p.Type)
	assert.Equal(t, "shared", p.IPv4Method)
	assert.Equal(t, "ignore", p.IPv6Method)
	assert.False(t, p.IsWireless())

	v, ok := b.Lookup(SectionEthernet, "auto-negotiate")
	require.True(t, ok)
	assert.Equal(t, false, v.Data)
}

func TestManualIPv4(t *testing.T) {
	manual := &ManualIPv4{Address: "192.168.1.100", Gateway: "192.168.1.1", DNS: "8.8.8.8"}
	b, err := Encode(KindWirelessClient, Params{SSID: "Static", Password: "pw", Manual: manual})
	require.NoError(t, err)

	assert.Equal(t, "manual", b.LookupString(SectionIPv4, "method"))
	assert.Equal(t, "192.168.1.1", b.LookupString(SectionIPv4, "gateway"))

	v, ok := b.Lookup(SectionIPv4, "address-data")
	require.True(t, ok)
	require.Equal(t, SigDicts, v.Signature)
	dicts := v.Data.([][]Entry)
	require.Len(t, dicts, 1)
	addr, _ := lookup(dicts[0], "address")
	prefix, _ := lookup(dicts[0], "prefix")
	assert.Equal(t, "192.168.1.100", addr.Data)
	assert.Equal(t, uint32(24), prefix.Data)

	dns, ok := b.Lookup(SectionIPv4, "dns")
	require.True(t, ok)
	assert.Equal(t, []uint32{8, 8, 8, 8}, dns.Data)

	// The nested dicts must survive the wire conversion.
	wire := b.Wire()
	ad := wire[SectionIPv4]["address-data"]
	assert.Equal(t, "aa{sv}", ad.Signature().String())
	maps, ok := ad.Value().([]map[string]dbus.Variant)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.100", maps[0]["address"].Value())
}

func TestManualIPv4BadDNSIsDropped(t *testing.T) {
	manual := &ManualIPv4{Address: "10.0.0.2", Gateway: "10.0.0.1", DNS: "dns.example"}
	b, err := Encode(KindEthernet, Params{Manual: manual})
	require.NoError(t, err)

	_, ok := b.Lookup(SectionIPv4, "dns")
	assert.False(t, ok)
	assert.Equal(t, "manual", b.LookupString(SectionIPv4, "method"))
}

func TestUnknownKind(t *testing.T) {
	_, err := Encode(Kind(42), Params{})
	assert.Error(t, err)
}

func TestStringToBytes(t *testing.T) {
	assert.Equal(t, []byte{'T', 'e', 's', 't'}, StringToBytes("Test"))

	empty := StringToBytes("")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDottedToDigits(t *testing.T) {
	tests := []struct {
		in   string
		want []uint32
	}{
		{"8.8.8.8", []uint32{8, 8, 8, 8}},
		{"1.1.1.1", []uint32{1, 1, 1, 1}},
		{"10.0.0.1", []uint32{1, 0, 0, 0, 1}},
		{"192.168.1.1", []uint32{1, 9, 2, 1, 6, 8, 1, 1}},
		{"", []uint32{}},
		{"8.8.x.8", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DottedToDigits(tt.in))
		})
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	b := Bundle{
		{Name: SectionConnection, Entries: []Entry{
			{"id", String("first")},
			{"id", String("second")},
		}},
		{Name: SectionConnection, Entries: []Entry{
			{"id", String("other-section")},
			{"type", String(TypeBridge)},
		}},
	}

	assert.Equal(t, "first", b.LookupString(SectionConnection, "id"))
	// Only the first section is searched.
	_, ok := b.Lookup(SectionConnection, "type")
	assert.False(t, ok)

	wire := b.Wire()
	assert.Equal(t, "first", wire[SectionConnection]["id"].Value())
	assert.NotContains(t, wire[SectionConnection], "type")
}

func TestFromWireSortsSections(t *testing.T) {
	b := FromWire(map[string]map[string]dbus.Variant{
		"ipv4":       {"method": dbus.MakeVariant("auto")},
		"connection": {"type": dbus.MakeVariant(TypeEthernet), "id": dbus.MakeVariant("eth")},
	})

	require.Len(t, b, 2)
	assert.Equal(t, SectionConnection, b[0].Name)
	assert.Equal(t, "id", b[0].Entries[0].Key)
	assert.Equal(t, SigString, b[0].Entries[0].Value.Signature)
	assert.Equal(t, SectionIPv4, b[1].Name)

	_, ok := SSID(b)
	assert.False(t, ok)
}
