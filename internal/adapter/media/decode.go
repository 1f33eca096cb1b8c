package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

// Format is a decodable container format.
type Format string

const (
	FormatWAV Format = "wav"
	FormatMP3 Format = "mp3"
)

// PCM is decoded mono audio.
type PCM struct {
	Samples    []float32 // in [-1, 1]
	SampleRate int
}

// Duration returns the playing time of the samples.
func (p *PCM) Duration() time.Duration {
	if p == nil || p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(p.Samples)) * time.Second / time.Duration(p.SampleRate)
}

// DetectFormat picks a decoder from the file extension, falling back to the
// leading bytes of data.
func DetectFormat(uri string, data []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(stripQuery(uri))) {
	case ".wav", ".wave":
		return FormatWAV, nil
	case ".mp3":
		return FormatMP3, nil
	}

	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV, nil
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3, nil
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3, nil
	}
	return "", domain.ErrUnsupportedFormat
}

// Decode decodes data in the given format and mixes it down to mono.
func Decode(format Format, data []byte) (*PCM, error) {
	switch format {
	case FormatWAV:
		return decodeWAV(data)
	case FormatMP3:
		return decodeMP3(data)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}

func decodeWAV(data []byte) (*PCM, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid wav file", domain.ErrUnsupportedFormat)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: wav has no format chunk", domain.ErrUnsupportedFormat)
	}

	bitDepth := int(decoder.SampleBitDepth())
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += float32(buf.Data[i*channels+c]) / scale
		}
		out[i] = sum / float32(channels)
	}

	return &PCM{Samples: out, SampleRate: buf.Format.SampleRate}, nil
}

func decodeMP3(data []byte) (*PCM, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}

	// go-mp3 always produces 16-bit little-endian stereo.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	frames := len(raw) / 4
	out := make([]float32, frames)
	for i := range frames {
		l := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		r := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		out[i] = (float32(l) + float32(r)) / 2 / 32768
	}

	return &PCM{Samples: out, SampleRate: decoder.SampleRate()}, nil
}

func stripQuery(uri string) string {
	if i := strings.IndexAny(uri, "?#"); i >= 0 {
		return uri[:i]
	}
	return uri
}
