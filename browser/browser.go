// Package browser manages the Chrome instance used for captures. It wraps
// rod with the profile attach strategies, navigation retry behavior, and
// full-page screenshot support the capture flow needs.
package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	rodstealth "github.com/go-rod/stealth"
	"github.com/youchan/profileshot/config"
	"github.com/youchan/profileshot/logger"
	"github.com/youchan/profileshot/profile"
	"github.com/youchan/profileshot/stealth"
)

// Browser wraps the rod browser with profile attach strategies
type Browser struct {
	config   *config.Config
	logger   *logger.Logger
	stealth  *stealth.Manager
	profiles *profile.Manager

	strategy Strategy
	browser  *rod.Browser
	page     *rod.Page
	tempDir  string
}

// New creates a browser instance
func New(cfg *config.Config, log *logger.Logger, sm *stealth.Manager, pm *profile.Manager) *Browser {
	return &Browser{
		config:   cfg,
		logger:   log.WithModule("browser"),
		stealth:  sm,
		profiles: pm,
	}
}

// Strategy returns the strategy the browser was launched with
func (b *Browser) Strategy() Strategy {
	return b.strategy
}

// Launch starts Chrome attached to the named profile using the given
// strategy. StrategySimple ignores the profile name. Copy-based strategies
// stage profile data in a temporary user data directory that is removed
// again by Close.
func (b *Browser) Launch(strategy Strategy, profileName string) error {
	b.strategy = strategy
	b.logger.Infof("Launching browser (strategy: %s)", strategy)

	userDataDir := ""
	switch {
	case strategy == StrategyDirect:
		userDataDir = b.profiles.UserDataDir()
	case strategy.UsesProfileCopy():
		tempDir, err := os.MkdirTemp("", "chrome-profile-*")
		if err != nil {
			return fmt.Errorf("failed to create temp user data dir: %w", err)
		}
		b.tempDir = tempDir

		// The copy lands in Default/ so Chrome picks it up as the
		// active profile of the temp user data dir
		copied, err := b.profiles.CopyData(profileName, filepath.Join(tempDir, "Default"))
		if err != nil {
			return fmt.Errorf("failed to copy profile data: %w", err)
		}
		if copied == 0 {
			b.logger.Warn("No profile data copied, proceeding with an empty profile")
		}
		userDataDir = tempDir
	}

	l := buildLauncher(b.config, strategy, userDataDir, profileName)

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b.browser = rod.New().
		ControlURL(controlURL).
		Timeout(time.Duration(b.config.Browser.Timeout) * time.Second)

	if b.config.Browser.SlowMotion > 0 {
		b.browser = b.browser.SlowMotion(time.Duration(b.config.Browser.SlowMotion) * time.Millisecond)
	}

	if err := b.browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	b.logger.Info("Browser launched successfully")

	return b.preparePage()
}

// preparePage picks up the initial page of a profile launch (or creates
// one) and applies viewport, user agent, locale, and fingerprint settings
func (b *Browser) preparePage() error {
	pages, err := b.browser.Pages()
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	if len(pages) > 0 {
		b.page = pages.First()
		b.logger.Debug("Using existing page")
	} else {
		b.page, err = b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		b.logger.Debug("Created new page")
	}

	width, height := b.config.Browser.ViewportWidth, b.config.Browser.ViewportHeight
	if b.config.Stealth.RandomizeViewport {
		width, height = b.stealth.RandomViewport()
	}
	err = b.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
	if err != nil {
		b.logger.WithError(err).Warn("Failed to set viewport")
	}

	userAgent := ""
	if b.strategy == StrategySimple {
		// The no-profile launch always pins a fixed desktop user agent
		userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	} else if b.config.Stealth.RandomUserAgent {
		userAgent = b.stealth.RandomUserAgent()
	}
	if userAgent != "" {
		err = b.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent})
		if err != nil {
			b.logger.WithError(err).Warn("Failed to set user agent")
		}
	}

	if _, err := b.page.SetExtraHeaders([]string{"Accept-Language", b.config.Navigation.AcceptLanguage}); err != nil {
		b.logger.WithError(err).Warn("Failed to set Accept-Language header")
	}

	if b.config.Navigation.Locale != "" {
		err = proto.EmulationSetLocaleOverride{Locale: b.config.Navigation.Locale}.Call(b.page)
		if err != nil {
			b.logger.WithError(err).Warn("Failed to set locale override")
		}
	}
	if b.config.Navigation.TimezoneID != "" {
		err = proto.EmulationSetTimezoneOverride{TimezoneID: b.config.Navigation.TimezoneID}.Call(b.page)
		if err != nil {
			b.logger.WithError(err).Warn("Failed to set timezone override")
		}
	}

	// Fingerprint masking on every new document
	b.page.EvalOnNewDocument(rodstealth.JS)

	b.logger.Info("Page prepared")
	return nil
}

// Page returns the active page
func (b *Browser) Page() *rod.Page {
	return b.page
}

// CurrentURL returns the URL of the active page, or an empty string when
// it cannot be read
func (b *Browser) CurrentURL() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Title returns the title of the active page
func (b *Browser) Title() string {
	info, err := b.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

// Screenshot captures a full-page PNG and writes it to filename
func (b *Browser) Screenshot(filename string) error {
	data, err := b.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("screenshot failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}

	b.logger.WithField("filename", filename).Info("Screenshot saved")
	return nil
}

// Close shuts down the browser and removes any temporary profile copy
func (b *Browser) Close() error {
	b.logger.Info("Closing browser")

	if b.page != nil {
		b.page.Close()
	}

	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}

	if b.tempDir != "" {
		// Best effort, the temp dir holds nothing durable
		if rmErr := os.RemoveAll(b.tempDir); rmErr != nil {
			b.logger.WithError(rmErr).Warn("Failed to remove temp profile directory")
		} else {
			b.logger.Debugf("Removed temp profile directory: %s", b.tempDir)
		}
		b.tempDir = ""
	}

	return err
}
