// Package profile - Tests for profile enumeration, validation, and copying
package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/youchan/profileshot/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error"})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return log
}

// newTestUserData creates a fake Chrome user data dir with the given profiles
func newTestUserData(t *testing.T, profiles ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range profiles {
		if err := os.MkdirAll(filepath.Join(dir, p), 0755); err != nil {
			t.Fatalf("Failed to create profile dir %s: %v", p, err)
		}
	}
	return dir
}

func TestList(t *testing.T) {
	dir := newTestUserData(t, "Default", "Profile 2", "Profile 1", "System Profile", "GrShaderCache")
	m := NewManager(dir, newTestLogger(t))

	profiles := m.List()

	if len(profiles) != 3 {
		t.Fatalf("Expected 3 profiles, got %d: %v", len(profiles), profiles)
	}
	// Default first, then Profile N sorted
	if profiles[0] != "Default" || profiles[1] != "Profile 1" || profiles[2] != "Profile 2" {
		t.Errorf("Unexpected profile order: %v", profiles)
	}
}

func TestListMissingUserDataDir(t *testing.T) {
	m := NewManager("/nonexistent/userdata", newTestLogger(t))
	if profiles := m.List(); len(profiles) != 0 {
		t.Errorf("Expected no profiles for missing dir, got %v", profiles)
	}
}

func TestValidate(t *testing.T) {
	dir := newTestUserData(t, "Default", "Profile 1")
	m := NewManager(dir, newTestLogger(t))

	path, err := m.Validate("Profile 1")
	if err != nil {
		t.Fatalf("Validate should succeed for existing profile: %v", err)
	}
	if path != filepath.Join(dir, "Profile 1") {
		t.Errorf("Unexpected profile path: %s", path)
	}
}

func TestValidateMissingListsAvailable(t *testing.T) {
	dir := newTestUserData(t, "Default", "Profile 1")
	m := NewManager(dir, newTestLogger(t))

	_, err := m.Validate("Profile 99")
	if err == nil {
		t.Fatal("Validate should fail for missing profile")
	}
	if !strings.Contains(err.Error(), "Default") || !strings.Contains(err.Error(), "Profile 1") {
		t.Errorf("Error should list available profiles, got: %v", err)
	}
}

func TestValidateMissingTruncatesList(t *testing.T) {
	dir := newTestUserData(t, "Default",
		"Profile 1", "Profile 2", "Profile 3", "Profile 4", "Profile 5", "Profile 6")
	m := NewManager(dir, newTestLogger(t))

	_, err := m.Validate("nope")
	if err == nil {
		t.Fatal("Validate should fail for missing profile")
	}
	if !strings.Contains(err.Error(), "and 2 more") {
		t.Errorf("Error should mention truncated profiles, got: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	dir := newTestUserData(t, "Default")
	profileDir := filepath.Join(dir, "Default")

	if err := os.WriteFile(filepath.Join(profileDir, "Cookies"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(profileDir, "History"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, newTestLogger(t))
	info := m.Describe("Default")

	if info.SizeBytes != 150 {
		t.Errorf("Expected size 150, got %d", info.SizeBytes)
	}
	if !info.HasCookies {
		t.Error("HasCookies should be true")
	}
	if info.HasLoginData {
		t.Error("HasLoginData should be false without a Login Data file")
	}
}

func TestSanitizeName(t *testing.T) {
	if got := SanitizeName("Profile 1"); got != "Profile_1" {
		t.Errorf("Expected Profile_1, got %s", got)
	}
	if got := SanitizeName("a/b c"); got != "a_b_c" {
		t.Errorf("Expected a_b_c, got %s", got)
	}
}

func TestCopyData(t *testing.T) {
	dir := newTestUserData(t, "Default")
	profileDir := filepath.Join(dir, "Default")

	// Two essential files and one essential directory with a nested file
	if err := os.WriteFile(filepath.Join(profileDir, "Cookies"), []byte("cookies"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(profileDir, "Preferences"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	storageDir := filepath.Join(profileDir, "Local Storage", "leveldb")
	if err := os.MkdirAll(storageDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(storageDir, "000001.log"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}
	// A non-essential file that must not be copied
	if err := os.WriteFile(filepath.Join(profileDir, "Visited Links"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, newTestLogger(t))
	destDir := filepath.Join(t.TempDir(), "Default")

	copied, err := m.CopyData("Default", destDir)
	if err != nil {
		t.Fatalf("CopyData failed: %v", err)
	}
	if copied != 3 {
		t.Errorf("Expected 3 items copied, got %d", copied)
	}

	data, err := os.ReadFile(filepath.Join(destDir, "Cookies"))
	if err != nil || string(data) != "cookies" {
		t.Errorf("Cookies file not copied correctly: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "Local Storage", "leveldb", "000001.log")); err != nil {
		t.Errorf("Nested storage file not copied: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "Visited Links")); !os.IsNotExist(err) {
		t.Error("Non-essential file should not be copied")
	}
}

func TestCopyDataEmptyProfile(t *testing.T) {
	dir := newTestUserData(t, "Default")
	m := NewManager(dir, newTestLogger(t))

	copied, err := m.CopyData("Default", filepath.Join(t.TempDir(), "Default"))
	if err != nil {
		t.Fatalf("CopyData should not fail on an empty profile: %v", err)
	}
	if copied != 0 {
		t.Errorf("Expected 0 items copied, got %d", copied)
	}
}
