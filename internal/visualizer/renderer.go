// Package visualizer implements the renderer variants that turn frequency
// snapshots into shape updates on a scene arena.
package visualizer

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tejashwikalptaru/govis/internal/animation"
	"github.com/tejashwikalptaru/govis/internal/domain"
	"github.com/tejashwikalptaru/govis/internal/scene"
)

// Type represents the type of visualizer.
type Type string

// Available visualizer types.
const (
	TypeRadialBars    Type = "radial_bars"
	TypeRadialDots    Type = "radial_dots"
	TypeOutline       Type = "outline"
	TypeOutlineDouble Type = "outline_double"
	TypeBlobs         Type = "blobs"
	TypeRingPulse     Type = "ring_pulse"
	TypeMultiCircle   Type = "multi_circle"
	TypeParticles     Type = "particles"
)

// Renderer draws one visual pattern. The render loop calls OnData once per
// frame; the shell calls the rest.
//
// Thread-safety: OnData and OnPlayingChange may be called from different
// goroutines. Shape mutation happens under the arena lock.
type Renderer interface {
	// Type returns the visualizer type.
	Type() Type

	// Mount creates every shape for the given viewport.
	// Mounting a mounted renderer returns domain.ErrAlreadyMounted.
	Mount(viewport domain.Viewport) error

	// OnData updates shape attributes from a snapshot. It never creates
	// shapes and ignores empty snapshots.
	OnData(snapshot domain.FrequencySnapshot)

	// OnPlayingChange pauses or resumes every owned animation.
	OnPlayingChange(playing bool)

	// Unmount stops animations and drops all shapes.
	Unmount()

	// Mounted reports whether Mount succeeded and Unmount was not called since.
	Mounted() bool

	// Arena returns the shapes to paint.
	Arena() *scene.Arena
}

// Deps are the collaborators shared by all renderers.
type Deps struct {
	// Clock drives every animation (default: system clock)
	Clock animation.Clock

	// Rand feeds salient picks and particle jitter (default: time-seeded PCG)
	Rand *rand.Rand

	Logger *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = animation.SystemClock()
	}
	if d.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		d.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// Factory creates a new renderer of the specified type.
func Factory(visType Type, deps Deps) (Renderer, error) {
	switch visType {
	case TypeRadialBars:
		return NewRadialBars(deps)
	case TypeRadialDots:
		return NewRadialDots(deps)
	case TypeOutline:
		return NewOutline(deps)
	case TypeOutlineDouble:
		return NewOutlineDouble(deps)
	case TypeBlobs:
		return NewBlobs(deps)
	case TypeRingPulse:
		return NewRingPulse(deps)
	case TypeMultiCircle:
		return NewMultiCircle(deps)
	case TypeParticles:
		return NewParticles(deps)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownVisualizer, visType)
	}
}

// TypeInfo contains information about a visualizer type.
type TypeInfo struct {
	Type Type
	Name string

	// Default marks types enabled when the user has not picked any
	Default bool
}

// Types returns all available visualizer types with their display names.
func Types() []TypeInfo {
	return []TypeInfo{
		{TypeRadialBars, "Radial Bars", true},
		{TypeRadialDots, "Radial Dots", true},
		{TypeOutline, "Outline", true},
		{TypeOutlineDouble, "Double Outline", true},
		{TypeBlobs, "Blobs", true},
		{TypeRingPulse, "Ring Pulse", true},
		{TypeMultiCircle, "Multi Circle", true},
		{TypeParticles, "Particles", false},
	}
}

// DefaultTypes returns the types enabled by default.
// Particles is left out because it is the most expensive to paint.
func DefaultTypes() []Type {
	var out []Type
	for _, info := range Types() {
		if info.Default {
			out = append(out, info.Type)
		}
	}
	return out
}

// ParseType validates a type name.
func ParseType(s string) (Type, error) {
	for _, info := range Types() {
		if string(info.Type) == s {
			return info.Type, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownVisualizer, s)
}
