package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
)

// Navigate loads the target URL with retry behavior. The primary attempt
// waits for the full load event; on failure it retries waiting only for a
// stable DOM. Copy-based and no-profile launches additionally fall back to
// forcing the location from JavaScript when both attempts fail.
func (b *Browser) Navigate(url string) error {
	b.logger.BrowserAction("navigate", url)

	err := b.navigateAndWaitLoad(url, b.config.NavTimeout())
	if err != nil {
		b.logger.WithError(err).Warn("Navigation wait failed, retrying with DOM-ready wait")
		err = b.navigateAndWaitDOM(url, b.config.RetryTimeout())
	}

	if err != nil && (b.strategy == StrategyTemp || b.strategy == StrategySimple) {
		b.logger.WithError(err).Warn("Navigation failed, forcing location via JavaScript")
		err = b.navigateViaScript(url)
	}

	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	b.stealth.PageLoadDelay()

	// The temp strategy also waits out pending network activity, but a
	// busy page is not a failure
	if b.strategy == StrategyTemp {
		b.waitNetworkIdle()
	}

	b.logResponseStatus()
	return nil
}

// navigateAndWaitLoad navigates and waits for the page load event
func (b *Browser) navigateAndWaitLoad(url string, timeout time.Duration) error {
	page := b.page.Timeout(timeout)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// navigateAndWaitDOM navigates and waits only for the DOM to stop changing
func (b *Browser) navigateAndWaitDOM(url string, timeout time.Duration) error {
	page := b.page.Timeout(timeout)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitDOMStable(time.Second, 0)
}

// navigateViaScript assigns window.location directly. Some profile-bound
// launches refuse the initial CDP navigation but follow a location change.
func (b *Browser) navigateViaScript(url string) error {
	_, err := b.page.Timeout(b.config.RetryTimeout()).Eval(`u => { window.location.href = u }`, url)
	if err != nil {
		return fmt.Errorf("script navigation failed: %w", err)
	}
	time.Sleep(time.Duration(b.config.Capture.SettleWaitMs) * time.Millisecond)
	return nil
}

// waitNetworkIdle blocks until in-flight requests settle or the configured
// network idle window elapses
func (b *Browser) waitNetworkIdle() {
	timeout := time.Duration(b.config.Navigation.NetworkIdleSeconds) * time.Second
	page := b.page.Timeout(timeout)
	wait := page.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)
	wait()
	if page.GetContext().Err() != nil {
		b.logger.Warn("Network idle wait timed out, continuing")
	} else {
		b.logger.Debug("Network idle")
	}
}

// EnsureLoaded recovers pages stuck on about:blank or without a title by
// reloading once. It returns the final URL and title.
func (b *Browser) EnsureLoaded() (string, string) {
	currentURL := b.CurrentURL()
	title := b.Title()
	b.logger.Infof("Current URL: %s", currentURL)
	b.logger.Infof("Page title: %s", title)

	if currentURL != "about:blank" && strings.TrimSpace(title) != "" {
		return currentURL, title
	}

	b.logger.Warn("Page did not load properly, reloading")

	page := b.page.Timeout(b.config.RetryTimeout())
	if err := page.Reload(); err != nil {
		b.logger.WithError(err).Warn("Reload failed")
		return currentURL, title
	}
	if err := page.WaitDOMStable(time.Second, 0); err != nil {
		b.logger.WithError(err).Warn("Wait after reload failed")
	}
	time.Sleep(5 * time.Second)

	currentURL = b.CurrentURL()
	title = b.Title()
	b.logger.Infof("URL after reload: %s", currentURL)
	b.logger.Infof("Title after reload: %s", title)
	return currentURL, title
}

// logResponseStatus reads the navigation response status from the
// performance API and logs HTTP errors. An error page still gets captured.
func (b *Browser) logResponseStatus() {
	res, err := b.page.Timeout(5 * time.Second).Eval(`() => {
		const nav = performance.getEntriesByType('navigation')[0]
		return nav && nav.responseStatus ? nav.responseStatus : 0
	}`)
	if err != nil {
		b.logger.WithError(err).Debug("Could not read response status")
		return
	}

	status := res.Value.Int()
	if status >= 400 {
		b.logger.Warnf("HTTP error status: %d", status)
	} else if status > 0 {
		b.logger.Infof("Response status: %d", status)
	}
}

// CheckLoginStatus inspects the landed page for site-specific login
// indicators. The result is informational only.
func (b *Browser) CheckLoginStatus(url string) {
	switch {
	case strings.Contains(url, "naver.com"):
		userEls := b.queryAll(`.gnb_name, [data-clk="gnb.myinfo"], .MyView-module__user_name`)
		loginEls := b.queryAll(`a[href*="login"], .MyView-module__link_login`)
		switch {
		case len(userEls) > 0:
			b.logger.Info("Naver: logged-in session detected")
		case len(loginEls) > 0:
			b.logger.Info("Naver: not logged in")
		default:
			b.logger.Info("Naver: login state unclear")
		}
	case strings.Contains(url, "google.com"):
		profileEls := b.queryAll(`[data-ogsr-up], .gb_d, [aria-label*="Google Account"]`)
		if len(profileEls) > 0 {
			b.logger.Info("Google: logged-in session detected")
		} else {
			b.logger.Info("Google: not logged in")
		}
	default:
		b.logger.Debug("No login indicators known for this site")
	}
}

// queryAll returns the elements matching selector without waiting
func (b *Browser) queryAll(selector string) rod.Elements {
	els, err := b.page.Timeout(2 * time.Second).Elements(selector)
	if err != nil {
		return nil
	}
	return els
}
