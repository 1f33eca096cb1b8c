// Package res holds static content shown by the desktop shell.
package res

// AboutContent contains the Markdown content for the About dialog.
// This is maintained separately for easy updates.
const AboutContent = `A music visualizer built with Go and Fyne.

**Features:**
- Plays WAV and MP3 files or URLs
- Eight spectrum-driven visualizers, stackable in any combination
- Synchronized LRC lyrics with a reveal sweep
- Live spectrum frames over WebSocket

**Shortcuts:**
- Space: play / pause
- Alt+Up / Alt+Down: volume
- Right-click the stage: pick visualizers
`
