package profile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// essentialFiles are the profile data files carried into a temporary
// user-data directory. They cover cookies, saved credentials, form data,
// history, and preferences.
var essentialFiles = []string{
	"Cookies",
	"Login Data",
	"Preferences",
	"Secure Preferences",
	"Web Data",
	"History",
	"Bookmarks",
}

// essentialDirs are the profile storage directories carried along with
// the essential files.
var essentialDirs = []string{
	"Local Storage",
	"Session Storage",
	"IndexedDB",
	"databases",
}

// CopyData copies the essential data of the named profile into destDir.
// Missing source items are skipped with a warning. It returns the number
// of items copied; zero means the launch will proceed with an empty profile.
func (m *Manager) CopyData(name, destDir string) (int, error) {
	sourcePath := filepath.Join(m.userDataDir, name)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create temp profile directory: %w", err)
	}

	copied := 0

	for _, fileName := range essentialFiles {
		src := filepath.Join(sourcePath, fileName)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := copyFile(src, filepath.Join(destDir, fileName)); err != nil {
			m.logger.WithError(err).Warnf("Failed to copy %s", fileName)
			continue
		}
		copied++
		m.logger.Debugf("Copied %s", fileName)
	}

	for _, dirName := range essentialDirs {
		src := filepath.Join(sourcePath, dirName)
		if st, err := os.Stat(src); err != nil || !st.IsDir() {
			continue
		}
		if err := copyDir(src, filepath.Join(destDir, dirName)); err != nil {
			m.logger.WithError(err).Warnf("Failed to copy %s/", dirName)
			continue
		}
		copied++
		m.logger.Debugf("Copied %s/", dirName)
	}

	m.logger.ProfileEvent("copy", name, map[string]interface{}{
		"dest":  destDir,
		"items": copied,
	})

	return copied, nil
}

// copyFile copies a single file, preserving its mode
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copyDir recursively copies a directory tree
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}
