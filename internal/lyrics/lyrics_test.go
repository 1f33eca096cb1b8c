package lyrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/logger"
)

type fakeView struct {
	line    *domain.TimedLine
	reveal  float64
	shows   int
	clears  int
	reveals []float64
}

func (v *fakeView) ShowLine(line domain.TimedLine) {
	v.line = &line
	v.shows++
}

func (v *fakeView) SetReveal(percent float64) {
	v.reveal = percent
	v.reveals = append(v.reveals, percent)
}

func (v *fakeView) ClearLine() {
	v.line = nil
	v.reveal = 0
	v.clears++
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func twoLines() domain.Script {
	return domain.Script{
		{Start: 0, End: 2 * time.Second, Text: "A"},
		{Start: 2 * time.Second, End: 5 * time.Second, Text: "B"},
	}
}

func newSync() (*Synchronizer, *fakeView, *animation.ManualClock) {
	view := &fakeView{}
	clock := animation.NewManualClock(epoch)
	s := NewSynchronizer(view, clock, logger.NewTestLogger())
	return s, view, clock
}

func TestSynchronizer_ActiveLineAndStartPercent(t *testing.T) {
	s, view, _ := newSync()
	s.OnScriptReplaced(twoLines())
	s.OnPlayingChange(true)

	s.OnTimeUpdate(time.Second)
	assert.Equal(t, 0, s.Active())
	require.NotNil(t, view.line)
	assert.Equal(t, "A", view.line.Text)
	assert.InDelta(t, 50.0, view.reveal, 1e-9)

	s.OnTimeUpdate(3 * time.Second)
	assert.Equal(t, 1, s.Active())
	assert.Equal(t, "B", view.line.Text)
	assert.InDelta(t, 100.0/3, view.reveal, 1e-9)

	s.OnTimeUpdate(10 * time.Second)
	assert.Equal(t, NoLine, s.Active())
	assert.Nil(t, view.line)
}

func TestSynchronizer_SameLineIsNoop(t *testing.T) {
	s, view, _ := newSync()
	s.OnScriptReplaced(twoLines())
	s.OnPlayingChange(true)

	s.OnTimeUpdate(500 * time.Millisecond)
	s.OnTimeUpdate(1500 * time.Millisecond)
	assert.Equal(t, 1, view.shows)
}

func TestSynchronizer_RevealRunsToEndOfLine(t *testing.T) {
	s, view, clock := newSync()
	s.OnScriptReplaced(twoLines())
	s.OnPlayingChange(true)

	s.OnTimeUpdate(time.Second)

	// One second remains; half of it takes the sweep from 50 to 75.
	clock.Advance(500 * time.Millisecond)
	s.Refresh()
	assert.InDelta(t, 75.0, view.reveal, 1e-6)

	clock.Advance(time.Second)
	s.Refresh()
	assert.InDelta(t, 100.0, view.reveal, 1e-6)
}

func TestSynchronizer_PausedRevealStartsFrozen(t *testing.T) {
	s, _, clock := newSync()
	s.OnScriptReplaced(twoLines())

	s.OnTimeUpdate(time.Second)
	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 50.0, s.Reveal(), 1e-9)

	s.OnPlayingChange(true)
	clock.Advance(500 * time.Millisecond)
	assert.InDelta(t, 75.0, s.Reveal(), 1e-6)
}

func TestSynchronizer_PauseResumeKeepsProgress(t *testing.T) {
	s, _, clock := newSync()
	s.OnScriptReplaced(twoLines())
	s.OnPlayingChange(true)
	s.OnTimeUpdate(2500 * time.Millisecond)

	// Sweep runs from 1/6 to 100% over the remaining 2.5s.
	clock.Advance(time.Second)
	s.OnPlayingChange(false)
	progress := s.Reveal()
	assert.InDelta(t, 50.0, progress, 1e-6)

	clock.Advance(10 * time.Second)
	s.OnPlayingChange(true)
	assert.InDelta(t, progress, s.Reveal(), 1e-9)
}

func TestSynchronizer_ScriptReplacedClears(t *testing.T) {
	s, view, _ := newSync()
	s.OnScriptReplaced(twoLines())
	s.OnTimeUpdate(time.Second)
	require.NotNil(t, view.line)

	s.OnScriptReplaced(domain.Script{{Start: 0, End: time.Minute, Text: "new"}})
	assert.Equal(t, NoLine, s.Active())
	assert.Nil(t, view.line)

	s.Refresh()
	assert.Nil(t, view.line)

	s.OnTimeUpdate(time.Second)
	assert.Equal(t, "new", view.line.Text)
}

func TestSynchronizer_OverlapFirstMatchWins(t *testing.T) {
	s, view, _ := newSync()
	s.OnScriptReplaced(domain.Script{
		{Start: 0, End: 4 * time.Second, Text: "first"},
		{Start: time.Second, End: 3 * time.Second, Text: "second"},
	})

	s.OnTimeUpdate(2 * time.Second)
	assert.Equal(t, "first", view.line.Text)
}

func TestSynchronizer_EmptyScript(t *testing.T) {
	s, view, _ := newSync()
	s.OnTimeUpdate(time.Second)
	assert.Equal(t, NoLine, s.Active())
	assert.Nil(t, view.line)
}

const sample = `[ti: Test Song]
[ar: Someone]
[al: Somewhere]
[00:01.00]Hello world (Hola mundo)
[00:03.50]Second line
[00:06.000]
[00:08.5]Back again
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "Test Song", doc.Meta.Title)
	assert.Equal(t, "Someone", doc.Meta.Artist)
	assert.Equal(t, "Somewhere", doc.Meta.Album)

	require.Len(t, doc.Script, 3)

	assert.Equal(t, "Hello world", doc.Script[0].Text)
	assert.Equal(t, "Hola mundo", doc.Script[0].Translation)
	assert.Equal(t, time.Second, doc.Script[0].Start)
	assert.Equal(t, 3500*time.Millisecond, doc.Script[0].End)

	// An empty timed line ends the previous one.
	assert.Equal(t, 6*time.Second, doc.Script[1].End)

	assert.Equal(t, 8500*time.Millisecond, doc.Script[2].Start)
	assert.Equal(t, 8500*time.Millisecond+LastLineTail, doc.Script[2].End)
}

func TestParse_MultipleStamps(t *testing.T) {
	script, err := Parse(strings.NewReader("[00:10.00][00:02.00]chorus\n[00:05.00]verse\n"))
	require.NoError(t, err)

	require.Len(t, script, 3)
	assert.Equal(t, "chorus", script[0].Text)
	assert.Equal(t, 2*time.Second, script[0].Start)
	assert.Equal(t, "verse", script[1].Text)
	assert.Equal(t, 10*time.Second, script[1].End)
	assert.Equal(t, "chorus", script[2].Text)
}

func TestParse_Offset(t *testing.T) {
	script, err := Parse(strings.NewReader("[offset:+500]\n[00:02.00]a\n[00:04.00]b\n"))
	require.NoError(t, err)
	require.Len(t, script, 2)
	assert.Equal(t, 1500*time.Millisecond, script[0].Start)
	assert.Equal(t, 3500*time.Millisecond, script[0].End)
}

func TestParse_MalformedGivesEmptyScript(t *testing.T) {
	for _, in := range []string{"", "just some text\nno tags", "[99:99.99]bad seconds", "[xx:yy]nope"} {
		script, err := Parse(strings.NewReader(in))
		require.NoError(t, err)
		assert.Empty(t, script, in)
	}
}

func TestSplitTranslation(t *testing.T) {
	text, tr := splitTranslation("(whole line)")
	assert.Equal(t, "(whole line)", text)
	assert.Empty(t, tr)

	text, tr = splitTranslation("a (b) c (d)")
	assert.Equal(t, "a (b) c", text)
	assert.Equal(t, "d", tr)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParse_ReadError(t *testing.T) {
	_, err := Parse(failingReader{})
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.lrc")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	script, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, script, 3)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.lrc"))
	assert.Error(t, err)
}
