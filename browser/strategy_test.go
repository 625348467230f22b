// Package browser - Tests for strategy parsing and launcher construction
package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/youchan/profileshot/config"
)

func newTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Chrome.ExecutablePath = "/usr/bin/google-chrome"
	cfg.Chrome.UserDataDir = "/home/user/.config/google-chrome"
	return cfg
}

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"auto", "direct", "copy", "simple", "temp"} {
		s, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("ParseStrategy(%q) failed: %v", name, err)
		}
		if string(s) != name {
			t.Errorf("Expected strategy %q, got %q", name, s)
		}
	}

	if _, err := ParseStrategy("bogus"); err == nil {
		t.Error("ParseStrategy should reject unknown strategies")
	}
}

func TestUsesProfileCopy(t *testing.T) {
	if !StrategyCopy.UsesProfileCopy() || !StrategyTemp.UsesProfileCopy() {
		t.Error("copy and temp strategies should use a profile copy")
	}
	if StrategyDirect.UsesProfileCopy() || StrategySimple.UsesProfileCopy() {
		t.Error("direct and simple strategies should not use a profile copy")
	}
}

func TestBuildLauncherDirect(t *testing.T) {
	cfg := newTestConfig()
	l := buildLauncher(cfg, StrategyDirect, cfg.Chrome.UserDataDir, "Profile 1")

	if got := l.Get(flags.Bin); got != cfg.Chrome.ExecutablePath {
		t.Errorf("Expected bin %s, got %s", cfg.Chrome.ExecutablePath, got)
	}
	if got := l.Get(flags.UserDataDir); got != cfg.Chrome.UserDataDir {
		t.Errorf("Expected live user data dir, got %s", got)
	}
	if got := l.Get(flags.ProfileDir); got != "Profile 1" {
		t.Errorf("Expected profile directory flag, got %s", got)
	}
	if _, has := l.GetFlags("disable-web-security"); !has {
		t.Error("Direct strategy should disable web security")
	}
	if _, has := l.GetFlags("enable-automation"); has {
		t.Error("enable-automation should be removed")
	}
}

func TestBuildLauncherCopy(t *testing.T) {
	cfg := newTestConfig()
	l := buildLauncher(cfg, StrategyCopy, "/tmp/chrome-profile-x", "Profile 1")

	if got := l.Get(flags.UserDataDir); got != "/tmp/chrome-profile-x" {
		t.Errorf("Expected temp user data dir, got %s", got)
	}
	// The copy already lands in Default/, so no profile-directory flag
	if got := l.Get(flags.ProfileDir); got != "" {
		t.Errorf("Copy strategy should not set profile directory, got %s", got)
	}
	if _, has := l.GetFlags("disable-ipc-flooding-protection"); has {
		t.Error("Copy strategy should not carry the temp-only IPC flag")
	}
}

func TestBuildLauncherTempExtras(t *testing.T) {
	cfg := newTestConfig()
	l := buildLauncher(cfg, StrategyTemp, "/tmp/chrome-profile-x", "Default")

	if _, has := l.GetFlags("disable-ipc-flooding-protection"); !has {
		t.Error("Temp strategy should disable IPC flooding protection")
	}
	if got := l.Get("disable-features"); got != "VizDisplayCompositor" {
		t.Errorf("Temp strategy should disable VizDisplayCompositor, got %s", got)
	}
}

func TestBuildLauncherSimple(t *testing.T) {
	cfg := newTestConfig()
	l := buildLauncher(cfg, StrategySimple, "", "ignored")

	// The launcher falls back to its own scratch dir; the live profile
	// data must not be bound
	if got := l.Get(flags.UserDataDir); got == cfg.Chrome.UserDataDir {
		t.Error("Simple strategy must not bind the live user data dir")
	}
	if got := l.Get(flags.ProfileDir); got != "" {
		t.Errorf("Simple strategy should not set profile directory, got %s", got)
	}
	if _, has := l.GetFlags("disable-plugins-discovery"); !has {
		t.Error("Simple strategy should disable plugins discovery")
	}
	if _, has := l.GetFlags("no-sandbox"); !has {
		t.Error("Common flags should apply to the simple strategy")
	}
}

func TestBuildLauncherWindowSize(t *testing.T) {
	cfg := newTestConfig()
	cfg.Browser.ViewportWidth = 1366
	cfg.Browser.ViewportHeight = 768

	l := buildLauncher(cfg, StrategySimple, "", "")
	if got := l.Get("window-size"); got != "1366,768" {
		t.Errorf("Expected window-size 1366,768, got %s", got)
	}
}
