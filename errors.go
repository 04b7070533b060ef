package imagestudio

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoImage is returned when a generation response carries no image payload.
	ErrNoImage = errors.New("no image returned")

	// ErrNoCurrentImage is returned by actions that need a current image when none is set.
	ErrNoCurrentImage = errors.New("no current image")

	// ErrShareUnsupported is returned when no export sink could deliver an image.
	ErrShareUnsupported = errors.New("sharing not supported")

	// ErrStorageNotConfigured is returned when storage operations are attempted
	// without a configured storage backend.
	ErrStorageNotConfigured = errors.New("storage not configured")
)

// GenerationError wraps every failure of a single generation request:
// transport errors, non-2xx responses, rate limiting and responses
// without an image.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("image generation failed: %v", e.Err)
	}
	return fmt.Sprintf("image generation failed (%s): %v", e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError checks if an error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// AlreadySavedError is returned when an image with the same ID is already in the saved store.
type AlreadySavedError struct {
	ID string
}

func (e *AlreadySavedError) Error() string {
	return fmt.Sprintf("image %s already saved", e.ID)
}

// IsAlreadySavedError checks if an error is an AlreadySavedError.
func IsAlreadySavedError(err error) bool {
	var saved *AlreadySavedError
	return errors.As(err, &saved)
}

// RateLimitError is returned when a rate limit is hit.
type RateLimitError struct {
	RetryAfter time.Duration
	LimitType  string
	Model      string
	Err        error // Underlying error from the provider
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %s limit, retry after %v",
		e.Model, e.LimitType, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsRateLimitError checks if an error is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}
