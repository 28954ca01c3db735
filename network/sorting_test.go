package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ssids(aps []AccessPoint) []string {
	var s []string
	for _, ap := range aps {
		s = append(s, ap.SSID)
	}
	return s
}

func TestSortAccessPoints(t *testing.T) {
	tests := []struct {
		name     string
		aps      []AccessPoint
		saved    []SavedNetwork
		expected []string
	}{
		{
			name: "Sort by strength",
			aps: []AccessPoint{
				{SSID: "Weak", Strength: "10"},
				{SSID: "Strong", Strength: "90"},
				{SSID: "Medium", Strength: "50"},
			},
			expected: []string{"Strong", "Medium", "Weak"},
		},
		{
			name: "Saved networks first",
			aps: []AccessPoint{
				{SSID: "Strong", Strength: "90"},
				{SSID: "Home", Strength: "20"},
			},
			saved:    []SavedNetwork{{SSID: "Home"}},
			expected: []string{"Home", "Strong"},
		},
		{
			name: "Same strength by SSID",
			aps: []AccessPoint{
				{SSID: "B", Strength: "40"},
				{SSID: "A", Strength: "40"},
			},
			expected: []string{"A", "B"},
		},
		{
			name: "Unparseable strength last",
			aps: []AccessPoint{
				{SSID: "Broken", Strength: ""},
				{SSID: "Faint", Strength: "1"},
			},
			expected: []string{"Faint", "Broken"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SortAccessPoints(tt.aps, tt.saved)
			assert.Equal(t, tt.expected, ssids(tt.aps))
		})
	}
}
