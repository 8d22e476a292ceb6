package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sbp-deeplinks/internal/domain"
	"sbp-deeplinks/internal/usecase"
)

// DeviceEnv overrides the emulated harvest device.
const DeviceEnv = "DEEPLINKS_DEVICE"

// Config holds all settings of the deeplinks tool.
type Config struct {
	// RegistryPath points at a bank registry YAML. Empty uses the builtin one.
	RegistryPath string        `yaml:"registry_path"`
	Log          LogConfig     `yaml:"log"`
	Harvest      HarvestConfig `yaml:"harvest"`
	Server       ServerConfig  `yaml:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// HarvestConfig configures harvest sessions.
type HarvestConfig struct {
	Driver            string        `yaml:"driver"` // rod, playwright
	BrowserBin        string        `yaml:"browser_bin"`
	Headless          bool          `yaml:"headless"`
	Device            string        `yaml:"device"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	SettleTimeout     time.Duration `yaml:"settle_timeout"`
	ExtendedWait      time.Duration `yaml:"extended_wait"`
	ClickTimeout      time.Duration `yaml:"click_timeout"`
	TriggerXPath      string        `yaml:"trigger_xpath"`
	TriggerPatterns   []string      `yaml:"trigger_patterns"`
	Hooks             []string      `yaml:"hooks"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

const (
	DriverRod        = "rod"
	DriverPlaywright = "playwright"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	hooks := make([]string, 0, len(domain.AllHookPoints))
	for _, p := range domain.AllHookPoints {
		hooks = append(hooks, string(p))
	}
	return &Config{
		Log: LogConfig{Level: "info"},
		Harvest: HarvestConfig{
			Driver:            DriverRod,
			Headless:          true,
			Device:            domain.DefaultDevice,
			NavigationTimeout: 30 * time.Second,
			SettleTimeout:     20 * time.Second,
			ExtendedWait:      15 * time.Second,
			ClickTimeout:      5 * time.Second,
			TriggerXPath:      `//*[@id="app"]/main/div[2]/div[1]/button`,
			TriggerPatterns:   []string{"/pay|оплатить/i", "/sber pay/i"},
			Hooks:             hooks,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if device := os.Getenv(DeviceEnv); device != "" {
		c.Harvest.Device = device
	}
}

// Validate checks values a YAML file may have broken.
func (c *Config) Validate() error {
	switch c.Harvest.Driver {
	case DriverRod, DriverPlaywright:
	default:
		return fmt.Errorf("unknown harvest driver %q (want %s or %s)", c.Harvest.Driver, DriverRod, DriverPlaywright)
	}
	if _, err := domain.LookupDevice(c.Harvest.Device); err != nil {
		return err
	}
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"navigation_timeout", c.Harvest.NavigationTimeout},
		{"settle_timeout", c.Harvest.SettleTimeout},
		{"extended_wait", c.Harvest.ExtendedWait},
		{"click_timeout", c.Harvest.ClickTimeout},
	} {
		if d.v < 0 {
			return fmt.Errorf("harvest.%s must not be negative", d.name)
		}
	}
	if _, err := c.HookPoints(); err != nil {
		return err
	}
	return nil
}

// HookPoints parses the configured interception points.
func (c *Config) HookPoints() ([]domain.HookPoint, error) {
	points := make([]domain.HookPoint, 0, len(c.Harvest.Hooks))
	for _, h := range c.Harvest.Hooks {
		p, ok := domain.ParseHookPoint(strings.TrimSpace(h))
		if !ok {
			return nil, fmt.Errorf("unknown hook point %q", h)
		}
		points = append(points, p)
	}
	return points, nil
}

// ToHarvestConfig builds the session settings the harvest usecase runs with.
func (c *Config) ToHarvestConfig() (usecase.HarvestConfig, error) {
	device, err := domain.LookupDevice(c.Harvest.Device)
	if err != nil {
		return usecase.HarvestConfig{}, err
	}
	hooks, err := c.HookPoints()
	if err != nil {
		return usecase.HarvestConfig{}, err
	}

	var triggers []domain.ClickTarget
	if c.Harvest.TriggerXPath != "" {
		triggers = append(triggers, domain.ClickTarget{XPath: c.Harvest.TriggerXPath})
	}
	for _, p := range c.Harvest.TriggerPatterns {
		triggers = append(triggers, domain.ClickTarget{TextPattern: p})
	}

	return usecase.HarvestConfig{
		NavigationTimeout: c.Harvest.NavigationTimeout,
		SettleTimeout:     c.Harvest.SettleTimeout,
		ExtendedWait:      c.Harvest.ExtendedWait,
		ClickTimeout:      c.Harvest.ClickTimeout,
		Triggers:          triggers,
		Launch: domain.LaunchOptions{
			Headless: c.Harvest.Headless,
			Device:   device,
			Hooks:    hooks,
		},
	}, nil
}
