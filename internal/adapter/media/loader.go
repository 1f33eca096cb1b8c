package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/ports"
)

const (
	// DefaultFetchTimeout bounds downloading a remote track.
	DefaultFetchTimeout = 30 * time.Second

	// MaxFetchSize caps how much of a remote track is read.
	MaxFetchSize = 256 << 20
)

// Loader opens local files and http(s) URLs as media elements.
type Loader struct {
	client *http.Client
	clock  animation.Clock
	logger *slog.Logger
}

var _ ports.MediaLoader = (*Loader)(nil)

// NewLoader creates a loader. A nil client uses one with DefaultFetchTimeout.
func NewLoader(client *http.Client, clock animation.Clock, logger *slog.Logger) *Loader {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client: client,
		clock:  clock,
		logger: logger.With("component", "media_loader"),
	}
}

// Open reads, decodes and tags the resource at uri.
func (l *Loader) Open(uri string) (ports.MediaElement, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, domain.ErrInvalidURI
	}

	data, err := l.fetch(uri)
	if err != nil {
		return nil, domain.NewAudioEngineError("fetch", uri, err.Error(), err)
	}

	format, err := DetectFormat(uri, data)
	if err != nil {
		return nil, domain.NewAudioEngineError("decode", uri, "unknown format", err)
	}

	pcm, err := Decode(format, data)
	if err != nil {
		return nil, domain.NewAudioEngineError("decode", uri, err.Error(), err)
	}
	if len(pcm.Samples) == 0 {
		return nil, domain.NewAudioEngineError("decode", uri, "no audio samples", domain.ErrUnsupportedFormat)
	}

	track := ReadTrack(uri, data)
	el := NewElement(track, pcm, l.clock, l.logger)

	l.logger.Info("media opened",
		"uri", uri,
		"format", format,
		"sample_rate", pcm.SampleRate,
		"duration", el.Duration())

	return el, nil
}

func (l *Loader) fetch(uri string) ([]byte, error) {
	if !isRemote(uri) {
		return os.ReadFile(uri)
	}

	ctx, cancel := context.WithTimeout(context.Background(), l.client.Timeout+time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURI, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxFetchSize {
		return nil, errors.New("resource too large")
	}
	return data, nil
}

// ReadTrack extracts tag metadata from data. Missing tags fall back to the
// file name as the title.
func ReadTrack(uri string, data []byte) domain.Track {
	track := domain.Track{URI: uri, Title: titleFromURI(uri)}

	metadata, err := tag.ReadFrom(bytes.NewReader(data))
	if err != nil || metadata == nil {
		return track
	}

	if title := strings.TrimSpace(metadata.Title()); title != "" {
		track.Title = title
	}
	if artist := strings.TrimSpace(metadata.Artist()); artist != "" {
		track.Artist = artist
	}
	if album := strings.TrimSpace(metadata.Album()); album != "" {
		track.Album = album
	}
	if picture := metadata.Picture(); picture != nil {
		track.Cover = picture.Data
	}

	return track
}

func isRemote(uri string) bool {
	lower := strings.ToLower(uri)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func titleFromURI(uri string) string {
	name := stripQuery(uri)
	if isRemote(uri) {
		name = path.Base(name)
	} else {
		name = filepath.Base(name)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
