// profileshot launches a local Chrome bound to a user profile, navigates
// it to a URL, and saves a full-page screenshot.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/youchan/profileshot/browser"
	"github.com/youchan/profileshot/capture"
	"github.com/youchan/profileshot/config"
	"github.com/youchan/profileshot/logger"
	"github.com/youchan/profileshot/process"
	"github.com/youchan/profileshot/profile"
	"github.com/youchan/profileshot/stealth"
	"github.com/youchan/profileshot/storage"
)

// Application holds all components of the screenshot tool
type Application struct {
	config   *config.Config
	logger   *logger.Logger
	profiles *profile.Manager
	sweeper  *process.Sweeper
	stealth  *stealth.Manager
	db       *storage.Database
	runner   *capture.Runner
}

// Command line flags
var (
	configPath   = flag.String("config", "config.yaml", "Path to configuration file")
	strategyName = flag.String("strategy", "auto", "Profile attach strategy: auto, direct, copy, simple, temp")
	urlFlag      = flag.String("url", "", "URL to capture (overrides the positional argument)")
	outputDir    = flag.String("output-dir", "", "Screenshot output directory (overrides config)")
	listProfiles = flag.Bool("list", false, "List available Chrome profiles and exit")
	historyCount = flag.Int("history", 0, "Print the last N captures and exit")
	killChrome   = flag.Bool("kill", false, "Terminate running Chrome processes before launching")
	assumeYes    = flag.Bool("yes", false, "Skip interactive confirmations")
	headless     = flag.Bool("headless", false, "Run the browser headless")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("Note: No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		fmt.Println("\nPlease ensure CHROMIUM_EXECUTABLE_PATH and CHROMIUM_USERDATA_PATH")
		fmt.Println("point at your Chrome installation, or set them in the config file.")
		os.Exit(1)
	}

	// Apply flag overrides
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if *headless {
		cfg.Browser.Headless = true
	}
	if *outputDir != "" {
		cfg.Capture.OutputDir = *outputDir
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputFile: cfg.Logging.OutputFile,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Chrome profile screenshot tool starting...")
	log.Infof("Chrome executable: %s", cfg.Chrome.ExecutablePath)
	log.Infof("User data dir: %s", cfg.Chrome.UserDataDir)

	app, err := NewApplication(cfg, log)
	if err != nil {
		log.Errorf("Failed to initialize application: %v", err)
		os.Exit(1)
	}

	setupGracefulShutdown(app)

	if err := app.Run(); err != nil {
		log.Errorf("Application error: %v", err)
		app.Close()
		os.Exit(1)
	}

	app.Close()
	log.Info("Done")
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *config.Config, log *logger.Logger) (*Application, error) {
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	profiles := profile.NewManager(cfg.Chrome.UserDataDir, log)
	sweeper := process.NewSweeper(&cfg.Process, log)
	stealthMgr := stealth.NewManager(&cfg.Stealth, log)
	runner := capture.NewRunner(cfg, log, profiles, stealthMgr, db)

	return &Application{
		config:   cfg,
		logger:   log,
		profiles: profiles,
		sweeper:  sweeper,
		stealth:  stealthMgr,
		db:       db,
		runner:   runner,
	}, nil
}

// Run executes the selected operation
func (app *Application) Run() error {
	if *listProfiles {
		app.printProfileInfo()
		return nil
	}

	if *historyCount > 0 {
		return app.printHistory(*historyCount)
	}

	strategy, err := browser.ParseStrategy(*strategyName)
	if err != nil {
		return err
	}

	app.printProfileInfo()

	profileName, ok := app.resolveProfile()
	if !ok {
		// Clean cancel
		app.logger.Info("No profile selected, exiting")
		return nil
	}

	url := app.resolveURL()

	app.logger.Infof("Capturing %s with profile %q (strategy: %s)", url, profileName, strategy)

	if *killChrome {
		if err := app.sweeper.Sweep(app.confirmKill); err != nil {
			app.logger.WithError(err).Warn("Process sweep failed, continuing")
		}
	}

	result, err := app.runner.Run(capture.Request{
		Profile:  profileName,
		URL:      url,
		Strategy: strategy,
	})
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	app.logger.Infof("Screenshot saved: %s", result.OutputPath)
	app.logger.Infof("File size: %.2f MB", float64(result.SizeBytes)/1024/1024)
	app.logger.Infof("Duration: %s", result.Duration.Round(10*time.Millisecond))

	app.printTodayStats()
	return nil
}

// resolveProfile returns the profile name from the first positional
// argument or an interactive prompt. ok is false on a clean cancel.
func (app *Application) resolveProfile() (string, bool) {
	if flag.NArg() > 0 {
		return flag.Arg(0), true
	}

	fmt.Print("\nProfile name to use: ")
	name := readLine()
	if name == "" {
		return "", false
	}
	return name, true
}

// resolveURL returns the target URL from the -url flag, the second
// positional argument, or an interactive prompt with a default
func (app *Application) resolveURL() string {
	if *urlFlag != "" {
		return *urlFlag
	}
	if flag.NArg() > 1 {
		return flag.Arg(1)
	}
	if flag.NArg() > 0 {
		// Profile was given on the command line; don't prompt
		return app.config.Capture.DefaultURL
	}

	fmt.Printf("URL to visit (default: %s): ", app.config.Capture.DefaultURL)
	url := readLine()
	if url == "" {
		return app.config.Capture.DefaultURL
	}
	return url
}

// confirmKill asks before terminating running Chrome processes
func (app *Application) confirmKill(count int) bool {
	if *assumeYes {
		return true
	}

	fmt.Printf("Terminate %d running Chrome process(es)? (y/N): ", count)
	answer := strings.ToLower(readLine())
	return answer == "y" || answer == "yes"
}

// printProfileInfo prints the available profile inventory
func (app *Application) printProfileInfo() {
	infos := app.profiles.DescribeAll()

	fmt.Printf("\nChrome profiles in %s:\n", app.profiles.UserDataDir())
	if len(infos) == 0 {
		fmt.Println("  (no profiles found)")
		return
	}

	display := infos
	if len(display) > 10 {
		display = display[:10]
	}
	for i, info := range display {
		marker := ""
		if info.HasLoginData && info.HasCookies {
			marker = " [login data]"
		} else if info.HasCookies {
			marker = " [cookies]"
		}
		fmt.Printf("  %d. %s (%.1f MB)%s\n", i+1, info.Name, float64(info.SizeBytes)/1024/1024, marker)
	}
	if len(infos) > len(display) {
		fmt.Printf("  ... and %d more\n", len(infos)-len(display))
	}
}

// printHistory prints the most recent capture records
func (app *Application) printHistory(limit int) error {
	captures, err := app.db.GetRecentCaptures(limit)
	if err != nil {
		return err
	}

	if len(captures) == 0 {
		fmt.Println("No captures recorded yet")
		return nil
	}

	fmt.Printf("Last %d capture(s):\n", len(captures))
	for _, c := range captures {
		line := fmt.Sprintf("  %s  %-8s %-8s %s", c.CreatedAt.Format("2006-01-02 15:04:05"), c.Profile, c.Strategy, c.URL)
		if c.Status != "ok" {
			line += fmt.Sprintf("  FAILED: %s", c.Error)
		} else {
			line += fmt.Sprintf("  -> %s (%.1f KB)", c.OutputPath, float64(c.SizeBytes)/1024)
		}
		fmt.Println(line)
	}
	return nil
}

// printTodayStats logs today's capture totals
func (app *Application) printTodayStats() {
	stats, err := app.db.GetTodayStats()
	if err != nil {
		app.logger.WithError(err).Warn("Failed to get daily stats")
		return
	}
	app.logger.Infof("Today: %d capture(s), %d failure(s), %.1f MB total",
		stats.Captures, stats.Failures, float64(stats.TotalSize)/1024/1024)
}

// Close cleans up application resources
func (app *Application) Close() {
	if app.db != nil {
		app.db.Close()
		app.db = nil
	}
}

// setupGracefulShutdown handles OS signals for graceful shutdown
func setupGracefulShutdown(app *Application) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		app.logger.Infof("Received signal: %v", sig)
		app.Close()
		os.Exit(0)
	}()
}

var stdin = bufio.NewReader(os.Stdin)

// readLine reads one trimmed line from stdin
func readLine() string {
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}
