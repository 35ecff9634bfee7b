// Package useragent derives a coarse device category and browser name from a
// user-agent string using substring matching. It is a heuristic, not a full
// UA parser: acceptable imprecision for telemetry, never authoritative.
package useragent

import "strings"

// Device categories.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// Classify returns the device category and "Name/Major" browser label for a
// user-agent string. Unknown agents classify as desktop with an empty browser.
func Classify(ua string) (device, browser string) {
	lower := strings.ToLower(ua)

	device = DeviceDesktop
	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		device = DeviceTablet
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "iphone") || strings.Contains(lower, "android"):
		device = DeviceMobile
	}

	// Order matters: Edge and Opera embed "Chrome", Chrome embeds "Safari".
	for _, probe := range []struct {
		token string
		name  string
	}{
		{"edg/", "Edge"},
		{"opr/", "Opera"},
		{"firefox/", "Firefox"},
		{"chrome/", "Chrome"},
		{"version/", "Safari"},
	} {
		if idx := strings.Index(lower, probe.token); idx >= 0 {
			if probe.name == "Safari" && !strings.Contains(lower, "safari") {
				continue
			}
			browser = probe.name
			if major := majorVersion(lower[idx+len(probe.token):]); major != "" {
				browser += "/" + major
			}
			return device, browser
		}
	}
	return device, ""
}

func majorVersion(rest string) string {
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	return rest[:end]
}
