package network

import (
	"sort"
	"strconv"
)

// SortAccessPoints sorts scan results in place.
// The sorting order is:
// 1. Networks with a saved profile first.
// 2. By signal strength (strongest first).
// 3. Fallback to SSID alphabetically.
func SortAccessPoints(aps []AccessPoint, saved []SavedNetwork) {
	known := make(map[string]bool, len(saved))
	for _, s := range saved {
		known[s.SSID] = true
	}

	sort.SliceStable(aps, func(i, j int) bool {
		a := aps[i]
		b := aps[j]

		if known[a.SSID] != known[b.SSID] {
			return known[a.SSID]
		}

		// Unparseable strengths sort as 0.
		sa, _ := strconv.Atoi(a.Strength)
		sb, _ := strconv.Atoi(b.Strength)
		if sa != sb {
			return sa > sb
		}

		return a.SSID < b.SSID
	})
}
