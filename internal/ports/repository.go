// Package ports define repository interfaces for shell state persistence.
package ports

// PreferencesRepository handles the persistence of shell preferences.
// The visualization core never reads it; only the UI shell does.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the volume level.
	//
	// Returns an error if saving fails.
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume level.
	// If no volume was saved, returns 1.0 (full volume) as default.
	LoadVolume() (float64, error)

	// SaveVisualizers persists the selected visualizer types, in stacking order.
	SaveVisualizers(types []string) error

	// LoadVisualizers retrieves the saved visualizer types.
	// If nothing was saved, returns an empty slice.
	LoadVisualizers() ([]string, error)

	// SaveLastLyricsDir persists the folder the last lyric file was picked from.
	SaveLastLyricsDir(dir string) error

	// LoadLastLyricsDir retrieves the saved lyric folder ("" if none).
	LoadLastLyricsDir() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
