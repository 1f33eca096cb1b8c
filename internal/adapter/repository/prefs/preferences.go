// Package prefs persists shell preferences in the Fyne preferences store.
package prefs

import (
	"encoding/json"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

const (
	keyVolume      = "govis.volume"
	keyVisualizers = "govis.visualizers"
	keyLyricsDir   = "govis.lyrics_dir"
)

// Repository implements ports.PreferencesRepository on fyne.Preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type Repository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewRepository wraps prefs, usually fyne.CurrentApp().Preferences().
func NewRepository(prefs fyne.Preferences) *Repository {
	return &Repository{prefs: prefs}
}

// SaveVolume persists the volume level.
func (r *Repository) SaveVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.NewValidationError("volume", volume, "must be between 0.0 and 1.0")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// LoadVolume retrieves the saved volume level, 1.0 if none.
func (r *Repository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.FloatWithFallback(keyVolume, 1.0), nil
}

// SaveVisualizers persists the selected visualizer types.
func (r *Repository) SaveVisualizers(types []string) error {
	data, err := json.Marshal(types)
	if err != nil {
		return domain.NewServiceError("PreferencesRepository", "SaveVisualizers", "failed to marshal types", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetString(keyVisualizers, string(data))
	return nil
}

// LoadVisualizers retrieves the saved visualizer types.
func (r *Repository) LoadVisualizers() ([]string, error) {
	r.mu.RLock()
	data := r.prefs.String(keyVisualizers)
	r.mu.RUnlock()

	if data == "" {
		return []string{}, nil
	}

	var types []string
	if err := json.Unmarshal([]byte(data), &types); err != nil {
		return nil, domain.NewServiceError("PreferencesRepository", "LoadVisualizers", "failed to unmarshal types", err)
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

// SaveLastLyricsDir persists the folder of the last lyric file.
func (r *Repository) SaveLastLyricsDir(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs.SetString(keyLyricsDir, dir)
	return nil
}

// LoadLastLyricsDir retrieves the saved lyric folder.
func (r *Repository) LoadLastLyricsDir() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefs.String(keyLyricsDir), nil
}

// Clear removes all saved preferences.
func (r *Repository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyVolume)
	r.prefs.RemoveValue(keyVisualizers)
	r.prefs.RemoveValue(keyLyricsDir)
	return nil
}

var _ ports.PreferencesRepository = (*Repository)(nil)
