// Package domain defines domain-specific errors.
// These errors represent failures of the visualization core and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that the core and its adapters can return.
var (
	// ErrDataUnavailable is returned when a frame has no frequency data to work with.
	ErrDataUnavailable = errors.New("frequency data unavailable")

	// ErrNotBound is returned when an operation needs a bound media element and none is bound.
	ErrNotBound = errors.New("no media element bound")

	// ErrContextClosed is returned when the shared analysis context has been closed.
	ErrContextClosed = errors.New("analysis context closed")

	// ErrAlreadyMounted is returned when a renderer is mounted twice.
	ErrAlreadyMounted = errors.New("renderer already mounted")

	// ErrNotMounted is returned when a renderer is used before Mount.
	ErrNotMounted = errors.New("renderer not mounted")

	// ErrUnknownVisualizer is returned for an unregistered visualizer type.
	ErrUnknownVisualizer = errors.New("unknown visualizer type")

	// ErrUnsupportedFormat is returned when a media format cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidURI is returned when a media URI is empty or malformed.
	ErrInvalidURI = errors.New("invalid media uri")

	// ErrNoTrackLoaded is returned when playback is attempted with no track loaded.
	ErrNoTrackLoaded = errors.New("no track loaded")
)

// ConfigurationError reports invalid compile-time or construction-time parameters,
// such as a smoothing window that is even or out of range. It is never clamped.
type ConfigurationError struct {
	Param   string      // Parameter name (e.g., "windowSize")
	Value   interface{} // Offending value
	Message string      // Constraint that was violated
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s (value: %v)", e.Param, e.Message, e.Value)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(param string, value interface{}, message string) *ConfigurationError {
	return &ConfigurationError{
		Param:   param,
		Value:   value,
		Message: message,
	}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// AudioEngineError represents an error from the media or output layer.
// This wraps low-level decoder and device errors with additional context.
type AudioEngineError struct {
	Op      string // Operation that failed (e.g., "decode", "connect", "play")
	Path    string // Media URI (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *AudioEngineError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("audio %s failed for '%s': %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("audio %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *AudioEngineError) Unwrap() error {
	return e.Err
}

// NewAudioEngineError creates a new AudioEngineError.
func NewAudioEngineError(op, path, message string, err error) *AudioEngineError {
	return &AudioEngineError{
		Op:      op,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error for a runtime value.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ServiceError represents an error from a service layer operation.
type ServiceError struct {
	Service string // Service name (e.g., "PlaybackService")
	Op      string // Operation that failed
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("service %s.%s failed: %s", e.Service, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op, message string, err error) *ServiceError {
	return &ServiceError{
		Service: service,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
