package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrUnknownSource indicates a source identifier outside the closed set.
	ErrUnknownSource = errors.New("unknown source")

	// ErrInvalidWindow indicates a sync window with since after until.
	ErrInvalidWindow = errors.New("invalid sync window")

	// ErrConfigMissing indicates a required credential or setting is absent.
	// A source reporting this is skipped as disabled, not failed.
	ErrConfigMissing = errors.New("configuration missing")

	// ErrProviderUnavailable indicates a non-success status or malformed
	// response from an external API.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderLogic indicates the API returned success but a
	// documented error payload.
	ErrProviderLogic = errors.New("provider logic error")

	// ErrSinkWrite indicates the backing store rejected or could not
	// complete a batch write.
	ErrSinkWrite = errors.New("sink write failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ProviderError carries the upstream detail of a failed provider call.
// When the payload parsed as the provider's documented error shape the
// Message is the provider's own message, verbatim.
type ProviderError struct {
	Source     SourceID
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: API error %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("%s: API error %d: %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap classifies the error: parsed provider messages are logic
// errors, everything else is unavailability.
func (e *ProviderError) Unwrap() error {
	if e.Message != "" {
		return ErrProviderLogic
	}
	return ErrProviderUnavailable
}

// IsDisabled reports whether err means a source lacks configuration
// rather than having genuinely failed.
func IsDisabled(err error) bool {
	return errors.Is(err, ErrConfigMissing)
}
