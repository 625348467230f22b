// Package stealth provides light anti-detection measures for the
// screenshot browser: viewport and user agent variation plus humanized
// waits around page loads. Fingerprint masking itself is handled by the
// go-rod/stealth page script applied in the browser package.
package stealth

import (
	"math/rand"
	"time"

	"github.com/youchan/profileshot/config"
	"github.com/youchan/profileshot/logger"
)

// Common desktop viewport sizes
var viewports = [][2]int{
	{1920, 1080},
	{1680, 1050},
	{1600, 900},
	{1536, 864},
	{1440, 900},
	{1366, 768},
}

// Recent desktop Chrome user agents
var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Manager handles stealth-related variation for the browser
type Manager struct {
	config *config.StealthConfig
	logger *logger.Logger
	rand   *rand.Rand
}

// NewManager creates a stealth manager
func NewManager(cfg *config.StealthConfig, log *logger.Logger) *Manager {
	return &Manager{
		config: cfg,
		logger: log.WithModule("stealth"),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RandomViewport returns a random common desktop viewport size
func (m *Manager) RandomViewport() (int, int) {
	v := viewports[m.rand.Intn(len(viewports))]
	return v[0], v[1]
}

// RandomUserAgent returns a random desktop Chrome user agent
func (m *Manager) RandomUserAgent() string {
	return userAgents[m.rand.Intn(len(userAgents))]
}

// PageLoadDelay sleeps for a randomized duration within the configured
// page load wait window
func (m *Manager) PageLoadDelay() {
	min := m.config.PageLoadWaitMin
	max := m.config.PageLoadWaitMax
	if max <= min {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}

	delay := min + m.rand.Intn(max-min)
	m.logger.Debugf("Page load delay: %dms", delay)
	time.Sleep(time.Duration(delay) * time.Millisecond)
}
