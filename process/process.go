// Package process finds and terminates running Chrome processes so a
// profile-bound launch does not collide with a live browser holding the
// same user data directory.
package process

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/youchan/profileshot/config"
	"github.com/youchan/profileshot/logger"
)

// Sweeper terminates existing browser processes before a launch
type Sweeper struct {
	config *config.ProcessConfig
	logger *logger.Logger
}

// NewSweeper creates a process sweeper
func NewSweeper(cfg *config.ProcessConfig, log *logger.Logger) *Sweeper {
	return &Sweeper{
		config: cfg,
		logger: log.WithModule("process"),
	}
}

// ListPIDs returns the PIDs of running processes matching the configured pattern
func (s *Sweeper) ListPIDs() ([]string, error) {
	out, err := exec.Command("pgrep", "-f", s.config.MatchPattern).Output()
	if err != nil {
		// pgrep exits 1 when nothing matches
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("pgrep failed: %w", err)
	}

	var pids []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			pids = append(pids, line)
		}
	}
	return pids, nil
}

// Sweep terminates matching processes. The confirm callback is invoked
// with the process count before anything is killed; returning false keeps
// the processes running. Processes surviving the termination wait are
// force-killed.
func (s *Sweeper) Sweep(confirm func(count int) bool) error {
	s.logger.Info("Checking for running Chrome processes")

	pids, err := s.ListPIDs()
	if err != nil {
		return err
	}
	if len(pids) == 0 {
		s.logger.Info("No running Chrome processes found")
		return nil
	}

	s.logger.Infof("Found %d Chrome process(es)", len(pids))

	if confirm != nil && !confirm(len(pids)) {
		s.logger.Info("Keeping existing processes")
		return nil
	}

	for _, pid := range pids {
		if err := exec.Command("kill", "-TERM", pid).Run(); err != nil {
			s.logger.WithError(err).Warnf("Failed to terminate process %s", pid)
			continue
		}
		s.logger.ProcessEvent("terminated", pid)
	}

	// Give Chrome time to shut down before checking for survivors
	time.Sleep(time.Duration(s.config.TermWaitSeconds) * time.Second)

	remaining, err := s.ListPIDs()
	if err != nil {
		return err
	}
	for _, pid := range remaining {
		if err := exec.Command("kill", "-KILL", pid).Run(); err != nil {
			s.logger.WithError(err).Warnf("Failed to force-kill process %s", pid)
			continue
		}
		s.logger.ProcessEvent("force_killed", pid)
	}

	return nil
}
