// Package prefs persists trailhead's UI preferences in
// ~/.config/trailhead/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/golang/glog"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds what the TUI remembers between runs.
type Prefs struct {
	Theme string `toml:"theme"`
	// StartView is the screen shown on launch: home, directory or favorites.
	StartView string `toml:"start_view"`
}

const (
	defaultPrefsPath = "~/.config/trailhead/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultStartView = "home"
)

// StartViews lists the accepted StartView values.
var StartViews = []string{"home", "directory", "favorites"}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, StartView: defaultStartView}
}

// Load reads preferences from path. Preferences are cosmetic, so an
// unreadable or malformed file is logged and replaced by defaults.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		glog.Warningf("prefs: %v", err)
		return Defaults()
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			glog.Warningf("prefs: read %s: %v", resolved, err)
		}
		return Defaults()
	}

	var p Prefs
	if err := toml.Unmarshal(data, &p); err != nil {
		glog.Warningf("prefs: parse %s: %v", resolved, err)
		return Defaults()
	}
	return p.normalize()
}

func (p Prefs) normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.StartView = strings.ToLower(strings.TrimSpace(p.StartView))
	if !slices.Contains(StartViews, p.StartView) {
		p.StartView = defaultStartView
	}
	return p
}

// Save writes p to path through a temp file and rename, creating
// directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Update loads the stored preferences, applies fn and saves the result.
func Update(path string, fn func(*Prefs)) error {
	p := Load(path)
	fn(&p)
	return Save(path, p)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
