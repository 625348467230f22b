// Package capture orchestrates a screenshot run: profile validation,
// browser launch with strategy fallback, navigation, capture, and history
// recording.
package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/youchan/profileshot/browser"
	"github.com/youchan/profileshot/config"
	"github.com/youchan/profileshot/logger"
	"github.com/youchan/profileshot/profile"
	"github.com/youchan/profileshot/stealth"
	"github.com/youchan/profileshot/storage"
)

// Runner executes capture requests
type Runner struct {
	config   *config.Config
	logger   *logger.Logger
	profiles *profile.Manager
	stealth  *stealth.Manager
	db       *storage.Database
}

// Request describes one capture
type Request struct {
	Profile  string
	URL      string
	Strategy browser.Strategy
}

// Result describes a completed capture
type Result struct {
	OutputPath string
	FinalURL   string
	Title      string
	SizeBytes  int64
	Duration   time.Duration
	Strategy   browser.Strategy
}

// NewRunner creates a capture runner. The database may be nil, in which
// case no history is recorded.
func NewRunner(cfg *config.Config, log *logger.Logger, pm *profile.Manager, sm *stealth.Manager, db *storage.Database) *Runner {
	return &Runner{
		config:   cfg,
		logger:   log.WithModule("capture"),
		profiles: pm,
		stealth:  sm,
		db:       db,
	}
}

// OutputFilename builds the timestamped screenshot path for a profile
func OutputFilename(outputDir, profileName string, ts time.Time) string {
	name := fmt.Sprintf("screenshot_%s_%s.png", profile.SanitizeName(profileName), ts.Format("20060102_150405"))
	return filepath.Join(outputDir, name)
}

// Run performs one capture and records it in the history database
func (r *Runner) Run(req Request) (*Result, error) {
	start := time.Now()

	result, err := r.run(req, start)

	if r.db != nil {
		record := &storage.Capture{
			Profile:    req.Profile,
			URL:        req.URL,
			Strategy:   string(req.Strategy),
			DurationMs: time.Since(start).Milliseconds(),
			Status:     "ok",
		}
		if result != nil {
			record.FinalURL = result.FinalURL
			record.OutputPath = result.OutputPath
			record.SizeBytes = result.SizeBytes
			record.Strategy = string(result.Strategy)
		}
		if err != nil {
			record.Status = "failed"
			record.Error = err.Error()
		}
		if _, dbErr := r.db.RecordCapture(record); dbErr != nil {
			r.logger.WithError(dbErr).Warn("Failed to record capture history")
		}
	}

	return result, err
}

func (r *Runner) run(req Request, start time.Time) (*Result, error) {
	// A plain launch needs no profile on disk; everything else does
	if req.Strategy != browser.StrategySimple {
		if _, err := r.profiles.Validate(req.Profile); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(r.config.Capture.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := OutputFilename(r.config.Capture.OutputDir, req.Profile, start)
	r.logger.CaptureEvent(req.Profile, string(req.Strategy), outputPath)

	b, err := r.launch(req)
	if err != nil {
		return nil, err
	}
	defer b.Close()

	if err := b.Navigate(req.URL); err != nil {
		return nil, err
	}

	// Settle before inspecting or capturing
	time.Sleep(time.Duration(r.config.Capture.SettleWaitMs) * time.Millisecond)

	finalURL, title := b.EnsureLoaded()
	b.CheckLoginStatus(finalURL)

	r.logger.Info("Taking screenshot")
	if err := b.Screenshot(outputPath); err != nil {
		return nil, err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("screenshot file was not created: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("screenshot file is empty: %s", outputPath)
	}
	if info.Size() < int64(r.config.Capture.MinFileSizeKB)*1024 {
		r.logger.Warnf("Screenshot is only %.1f KB, the page may not have loaded properly", float64(info.Size())/1024)
	}

	if r.config.Capture.HoldOpenMs > 0 {
		r.logger.Infof("Holding browser open for %.0fs", float64(r.config.Capture.HoldOpenMs)/1000)
		time.Sleep(time.Duration(r.config.Capture.HoldOpenMs) * time.Millisecond)
	}

	return &Result{
		OutputPath: outputPath,
		FinalURL:   finalURL,
		Title:      title,
		SizeBytes:  info.Size(),
		Duration:   time.Since(start),
		Strategy:   b.Strategy(),
	}, nil
}

// launch starts the browser, resolving the auto strategy: try the profile
// copy first and fall back to a plain no-profile launch
func (r *Runner) launch(req Request) (*browser.Browser, error) {
	strategy := req.Strategy
	if strategy == browser.StrategyAuto {
		strategy = browser.StrategyCopy
	}

	b := browser.New(r.config, r.logger, r.stealth, r.profiles)
	err := b.Launch(strategy, req.Profile)
	if err == nil {
		return b, nil
	}

	if req.Strategy == browser.StrategyAuto {
		r.logger.WithError(err).Warn("Profile launch failed, falling back to plain launch")
		b.Close()

		b = browser.New(r.config, r.logger, r.stealth, r.profiles)
		if err := b.Launch(browser.StrategySimple, req.Profile); err != nil {
			return nil, fmt.Errorf("fallback launch failed: %w", err)
		}
		return b, nil
	}

	return nil, err
}
