// Package stealth - Tests for browser variation helpers
package stealth

import (
	"strings"
	"testing"
	"time"

	"github.com/youchan/profileshot/config"
	"github.com/youchan/profileshot/logger"
)

func newTestManager(t *testing.T, cfg *config.StealthConfig) *Manager {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return NewManager(cfg, log)
}

func TestRandomViewport(t *testing.T) {
	m := newTestManager(t, &config.StealthConfig{})

	for i := 0; i < 20; i++ {
		w, h := m.RandomViewport()
		found := false
		for _, v := range viewports {
			if v[0] == w && v[1] == h {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Viewport %dx%d not in the known set", w, h)
		}
	}
}

func TestRandomUserAgent(t *testing.T) {
	m := newTestManager(t, &config.StealthConfig{})

	for i := 0; i < 10; i++ {
		ua := m.RandomUserAgent()
		if !strings.Contains(ua, "Chrome/") {
			t.Errorf("User agent should look like Chrome: %s", ua)
		}
	}
}

func TestPageLoadDelayBounds(t *testing.T) {
	m := newTestManager(t, &config.StealthConfig{
		PageLoadWaitMin: 1,
		PageLoadWaitMax: 5,
	})

	start := time.Now()
	m.PageLoadDelay()
	elapsed := time.Since(start)

	if elapsed < time.Millisecond {
		t.Errorf("Delay should be at least the minimum, got %s", elapsed)
	}
	if elapsed > time.Second {
		t.Errorf("Delay should stay near the configured window, got %s", elapsed)
	}
}

func TestPageLoadDelayDegenerateWindow(t *testing.T) {
	m := newTestManager(t, &config.StealthConfig{
		PageLoadWaitMin: 2,
		PageLoadWaitMax: 2,
	})

	// A zero-width window must not panic rand.Intn
	m.PageLoadDelay()
}
