package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrNetworkUnavailable       = errors.New("network unavailable")
	ErrTimeout                  = errors.New("request timed out")
	ErrUnsupportedVersionFormat = errors.New("unsupported version format")
)

type HashMismatchError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// TransferError is a failed transfer: either a transport error (Err) or a non-2xx status.
type TransferError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransferError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer of %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transfer of %s failed: status code %d", e.URL, e.StatusCode)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// NewTransferError classifies a transport error as ErrTimeout or ErrNetworkUnavailable.
func NewTransferError(url string, err error) *TransferError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &TransferError{URL: url, Err: fmt.Errorf("%w: %w", ErrTimeout, err)}
	}
	if errors.Is(err, context.Canceled) {
		return &TransferError{URL: url, Err: err}
	}
	return &TransferError{URL: url, Err: fmt.Errorf("%w: %w", ErrNetworkUnavailable, err)}
}

type MissingArtifactError struct {
	Path string
}

func (e *MissingArtifactError) Error() string {
	return "missing artifact: " + e.Path
}

type RuntimeNotFoundError struct {
	RequiredMajor int
}

func (e *RuntimeNotFoundError) Error() string {
	return fmt.Sprintf("no java %d runtime found (install it with `java install %d`)", e.RequiredMajor, e.RequiredMajor)
}

type IncompleteInstanceError struct {
	Missing []string
}

func (e *IncompleteInstanceError) Error() string {
	return "instance is not installed correctly, missing: " + strings.Join(e.Missing, ", ")
}

type ProcessSpawnError struct {
	Err error
}

func (e *ProcessSpawnError) Error() string {
	return "failed to spawn game process: " + e.Err.Error()
}

func (e *ProcessSpawnError) Unwrap() error {
	return e.Err
}

type VersionNotFoundError struct {
	ID          string
	Suggestions []string
}

func (e *VersionNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("version %s not found", e.ID)
	}
	return fmt.Sprintf("version %s not found (did you mean %s?)", e.ID, strings.Join(e.Suggestions, ", "))
}
