package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DeviceProfile describes the browser a harvest session emulates.
type DeviceProfile struct {
	Name        string  `json:"name"`
	UserAgent   string  `json:"user_agent"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ScaleFactor float64 `json:"scale_factor"`
	Mobile      bool    `json:"mobile"`
	Touch       bool    `json:"touch"`
}

// DefaultDevice is the profile used when none is configured.
const DefaultDevice = "iPhone 13 Pro"

var devices = map[string]DeviceProfile{
	"iPhone 13 Pro": {
		Name:        "iPhone 13 Pro",
		UserAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1",
		Width:       390,
		Height:      664,
		ScaleFactor: 3,
		Mobile:      true,
		Touch:       true,
	},
	"iPhone X": {
		Name:        "iPhone X",
		UserAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 11_0 like Mac OS X) AppleWebKit/604.1.38 (KHTML, like Gecko) Version/11.0 Mobile/15A372 Safari/604.1",
		Width:       375,
		Height:      635,
		ScaleFactor: 3,
		Mobile:      true,
		Touch:       true,
	},
	"iPad Pro": {
		Name:        "iPad Pro",
		UserAgent:   "Mozilla/5.0 (iPad; CPU OS 11_0 like Mac OS X) AppleWebKit/604.1.34 (KHTML, like Gecko) Version/11.0 Mobile/15A5341f Safari/604.1",
		Width:       1024,
		Height:      1366,
		ScaleFactor: 2,
		Mobile:      true,
		Touch:       true,
	},
	"Pixel 5": {
		Name:        "Pixel 5",
		UserAgent:   "Mozilla/5.0 (Linux; Android 11; Pixel 5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		Width:       393,
		Height:      727,
		ScaleFactor: 2.75,
		Mobile:      true,
		Touch:       true,
	},
	"Galaxy S9+": {
		Name:        "Galaxy S9+",
		UserAgent:   "Mozilla/5.0 (Linux; Android 8.0.0; SM-G965U Build/R16NW) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		Width:       320,
		Height:      658,
		ScaleFactor: 4.5,
		Mobile:      true,
		Touch:       true,
	},
	"Desktop Chrome": {
		Name:        "Desktop Chrome",
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		Width:       1280,
		Height:      720,
		ScaleFactor: 1,
	},
}

// LookupDevice finds a profile by name, ignoring case.
func LookupDevice(name string) (DeviceProfile, error) {
	if d, ok := devices[name]; ok {
		return d, nil
	}
	for k, d := range devices {
		if strings.EqualFold(k, name) {
			return d, nil
		}
	}
	return DeviceProfile{}, fmt.Errorf("unknown device profile %q (known: %s)", name, strings.Join(DeviceNames(), ", "))
}

// DeviceNames lists the known profiles.
func DeviceNames() []string {
	names := make([]string, 0, len(devices))
	for k := range devices {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LaunchOptions configures the browser a harvest session drives.
type LaunchOptions struct {
	Headless bool
	Device   DeviceProfile
	Hooks    []HookPoint
}

// ClickTarget locates the payment trigger, either structurally or by text.
type ClickTarget struct {
	XPath       string
	TextPattern string
}

func (c ClickTarget) String() string {
	if c.XPath != "" {
		return "xpath=" + c.XPath
	}
	return "text=" + c.TextPattern
}

// HarvestReport is the outcome of one harvest session.
type HarvestReport struct {
	SessionID string        `json:"session_id"`
	Target    string        `json:"target"`
	Device    string        `json:"device"`
	Platform  Platform      `json:"platform"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Partial   bool          `json:"partial"`
	Clicked   string        `json:"clicked,omitempty"`
	URIs      []string      `json:"uris"`
	Evidence  []Evidence    `json:"evidence"`

	// NewSinceBaseline lists URIs absent from earlier evidence, when compared.
	NewSinceBaseline []string `json:"new_since_baseline,omitempty"`
}

// CompareBaseline records which harvested URIs earlier sessions never saw.
func (r *HarvestReport) CompareBaseline(baseline []Evidence) {
	known := make(map[string]bool, len(baseline))
	for _, ev := range baseline {
		known[ev.URI] = true
	}
	fresh := make([]string, 0)
	for _, u := range r.URIs {
		if !known[u] {
			fresh = append(fresh, u)
		}
	}
	r.NewSinceBaseline = fresh
}
