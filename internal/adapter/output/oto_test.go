package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

// The device itself is not opened here: CI machines have no audio hardware.

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	tests := []struct {
		name string
		opts Options
	}{
		{"zero rate", Options{SampleRate: 0}},
		{"rate too high", Options{SampleRate: 384000}},
		{"negative buffer", Options{SampleRate: 44100, BufferSize: -time.Millisecond}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			assert.True(t, domain.IsConfigurationError(err))
		})
	}
}

func TestNewOto_RejectsBadOptions(t *testing.T) {
	out, err := NewOto(Options{SampleRate: 1}, nil)
	assert.Nil(t, out)
	assert.True(t, domain.IsConfigurationError(err))
}
