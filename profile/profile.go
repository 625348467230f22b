// Package profile manages Chrome user profile directories.
// It enumerates available profiles, validates selections, and copies
// profile data into temporary user-data directories for isolated launches.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/youchan/profileshot/logger"
)

// keyFiles are the profile files inspected when sizing a profile.
var keyFiles = []string{"Cookies", "Login Data", "History", "Preferences"}

// Manager provides access to the profiles under a Chrome user data directory
type Manager struct {
	userDataDir string
	logger      *logger.Logger
}

// Info describes a single Chrome profile
type Info struct {
	Name         string
	Path         string
	SizeBytes    int64
	HasLoginData bool
	HasCookies   bool
}

// NewManager creates a profile manager for the given user data directory
func NewManager(userDataDir string, log *logger.Logger) *Manager {
	return &Manager{
		userDataDir: userDataDir,
		logger:      log.WithModule("profile"),
	}
}

// UserDataDir returns the managed user data directory
func (m *Manager) UserDataDir() string {
	return m.userDataDir
}

// List returns the names of all available profiles, sorted.
// Chrome keeps the primary profile in "Default" and additional ones
// in "Profile N" subdirectories.
func (m *Manager) List() []string {
	var profiles []string

	if _, err := os.Stat(m.userDataDir); err != nil {
		return profiles
	}

	if _, err := os.Stat(filepath.Join(m.userDataDir, "Default")); err == nil {
		profiles = append(profiles, "Default")
	}

	entries, err := os.ReadDir(m.userDataDir)
	if err != nil {
		return profiles
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "Profile ") {
			profiles = append(profiles, entry.Name())
		}
	}

	sort.Strings(profiles)
	return profiles
}

// Validate checks that the named profile exists and returns its path.
// The error for a missing profile lists up to five available profiles.
func (m *Manager) Validate(name string) (string, error) {
	profilePath := filepath.Join(m.userDataDir, name)

	if _, err := os.Stat(profilePath); err != nil {
		available := m.List()
		msg := fmt.Sprintf("profile %q not found", name)
		if len(available) > 0 {
			shown := available
			if len(shown) > 5 {
				shown = shown[:5]
			}
			msg += fmt.Sprintf(" (available: %s", strings.Join(shown, ", "))
			if len(available) > 5 {
				msg += fmt.Sprintf(" and %d more", len(available)-5)
			}
			msg += ")"
		} else {
			msg += " (no profiles available)"
		}
		return "", fmt.Errorf("%s", msg)
	}

	return profilePath, nil
}

// Describe returns details for the named profile. Size covers only the
// key data files, matching how the tool reports profile weight.
func (m *Manager) Describe(name string) Info {
	profilePath := filepath.Join(m.userDataDir, name)

	info := Info{
		Name: name,
		Path: profilePath,
	}

	for _, fileName := range keyFiles {
		if st, err := os.Stat(filepath.Join(profilePath, fileName)); err == nil {
			info.SizeBytes += st.Size()
		}
	}

	if _, err := os.Stat(filepath.Join(profilePath, "Login Data")); err == nil {
		info.HasLoginData = true
	}
	if _, err := os.Stat(filepath.Join(profilePath, "Cookies")); err == nil {
		info.HasCookies = true
	}

	return info
}

// DescribeAll returns details for every available profile
func (m *Manager) DescribeAll() []Info {
	names := m.List()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, m.Describe(name))
	}
	return infos
}

// SanitizeName converts a profile name to a filesystem-safe form
// usable inside screenshot filenames.
func SanitizeName(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	safe = strings.ReplaceAll(safe, "/", "_")
	return safe
}
