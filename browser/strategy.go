package browser

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/youchan/profileshot/config"
)

// Strategy selects how the browser attaches to a Chrome profile
type Strategy string

const (
	// StrategyAuto tries the copy strategy and falls back to a plain launch
	StrategyAuto Strategy = "auto"
	// StrategyDirect launches Chrome against the live profile directory
	StrategyDirect Strategy = "direct"
	// StrategyCopy copies profile data into a temp dir and launches a
	// persistent context against the copy
	StrategyCopy Strategy = "copy"
	// StrategySimple launches a plain browser without any profile
	StrategySimple Strategy = "simple"
	// StrategyTemp is the copy strategy with extra compositor and IPC
	// flags plus more aggressive reload recovery
	StrategyTemp Strategy = "temp"
)

// ParseStrategy validates a strategy name from the CLI
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAuto, StrategyDirect, StrategyCopy, StrategySimple, StrategyTemp:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy: %s (must be auto, direct, copy, simple, or temp)", s)
}

// UsesProfileCopy reports whether the strategy launches against a
// temporary copy of the profile data
func (s Strategy) UsesProfileCopy() bool {
	return s == StrategyCopy || s == StrategyTemp
}

// buildLauncher configures a rod launcher for the given strategy.
// userDataDir is the live Chrome user data dir for StrategyDirect, the
// temporary copy for copy-based strategies, and empty for StrategySimple.
func buildLauncher(cfg *config.Config, strategy Strategy, userDataDir, profileName string) *launcher.Launcher {
	l := launcher.New().
		Bin(cfg.Chrome.ExecutablePath).
		Headless(cfg.Browser.Headless).
		Leakless(true).
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("start-maximized").
		Set("disable-blink-features", "AutomationControlled").
		Set("exclude-switches", "enable-automation").
		Delete("enable-automation")

	switch strategy {
	case StrategyDirect:
		l = l.UserDataDir(userDataDir).
			ProfileDir(profileName).
			Set("disable-web-security").
			Set("allow-running-insecure-content").
			Set("disable-features", "VizDisplayCompositor")
	case StrategyCopy:
		l = l.UserDataDir(userDataDir).
			Set("disable-web-security").
			Set("allow-running-insecure-content")
	case StrategyTemp:
		l = l.UserDataDir(userDataDir).
			Set("disable-web-security").
			Set("allow-running-insecure-content").
			Set("disable-features", "VizDisplayCompositor").
			Set("disable-ipc-flooding-protection")
	case StrategySimple:
		l = l.Set("disable-plugins-discovery")
	}

	l = l.Set("window-size", fmt.Sprintf("%d,%d", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight))

	return l
}
