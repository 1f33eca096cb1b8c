// Package smoothing converts raw frequency snapshots into display-ready values.
// All functions are pure: they never modify their input and keep no state.
package smoothing

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/tejashwikalptaru/govis/internal/domain"
)

const (
	// MinWindow and MaxWindow bound the smoothing window size (inclusive, odd only).
	MinWindow = 3
	MaxWindow = 13

	// SalientTop is how many of the loudest samples are candidates for the accent point.
	SalientTop = 10

	// SalientFallback is returned when no salient index can be found.
	SalientFallback = 1
)

// Number is the set of sample types the helpers accept.
type Number interface {
	~uint8 | ~int | ~float32 | ~float64
}

// Decimate keeps every stride-th sample, starting at index stride-1.
// With stride 2 this yields exactly the odd-indexed samples, floor(len/2) of them.
func Decimate[T Number](data []T, stride int) ([]T, error) {
	if stride < 1 {
		return nil, domain.NewConfigurationError("stride", stride, "must be at least 1")
	}
	out := make([]T, 0, len(data)/stride)
	for i := stride - 1; i < len(data); i += stride {
		out = append(out, data[i])
	}
	return out, nil
}

// ValidateWindow checks the smoothing parameters without running the transform.
func ValidateWindow(windowSize int, decayRate float64) error {
	if windowSize%2 == 0 {
		return domain.NewConfigurationError("windowSize", windowSize, "must be odd")
	}
	if windowSize < MinWindow || windowSize > MaxWindow {
		return domain.NewConfigurationError("windowSize", windowSize, "must be within [3,13]")
	}
	if !(decayRate > 0 && decayRate <= 1) {
		return domain.NewConfigurationError("decayRate", decayRate, "must be within (0,1]")
	}
	return nil
}

// Smooth reshapes the array so that every window of windowSize samples mirrors
// around its center and decays away from it, giving bars that grow from a flat
// center instead of showing literal per-bin magnitudes.
//
// For index i, offset = (windowSize-1)/2 - (i mod windowSize); the result is
// arr[i+offset] * decayRate^|offset| when that neighbor exists, else arr[i].
func Smooth(arr []float64, windowSize int, decayRate float64) ([]float64, error) {
	if err := ValidateWindow(windowSize, decayRate); err != nil {
		return nil, err
	}

	half := (windowSize - 1) / 2
	out := make([]float64, len(arr))
	for i := range arr {
		offset := half - i%windowSize
		j := i + offset
		if j < 0 || j >= len(arr) {
			out[i] = arr[i]
			continue
		}
		out[i] = arr[j] * math.Pow(decayRate, math.Abs(float64(offset)))
	}
	return out, nil
}

// ToFloat converts a snapshot into float64 samples.
func ToFloat[T Number](data []T) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// Prepare decimates a snapshot by stride and smooths the result.
// This is the pipeline every outline-style renderer runs each frame.
func Prepare(snapshot domain.FrequencySnapshot, stride, windowSize int, decayRate float64) ([]float64, error) {
	decimated, err := Decimate(snapshot, stride)
	if err != nil {
		return nil, err
	}
	return Smooth(ToFloat(decimated), windowSize, decayRate)
}

// PickSalientIndex returns the original index of one of the ten loudest samples,
// chosen uniformly at random. This is an aesthetic accent point, not a peak
// detector. It returns SalientFallback when values is empty.
func PickSalientIndex[T Number](values []T, rng *rand.Rand) int {
	if len(values) == 0 {
		return SalientFallback
	}

	sorted := slices.Clone(values)
	slices.SortFunc(sorted, func(a, b T) int { return cmp.Compare(b, a) })

	top := min(SalientTop, len(sorted))
	var pick int
	if rng != nil {
		pick = rng.IntN(top)
	} else {
		pick = rand.IntN(top)
	}

	idx := slices.Index(values, sorted[pick])
	if idx < 0 {
		return SalientFallback
	}
	return idx
}
