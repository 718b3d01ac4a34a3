package dhc

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedCategory   = errors.New("dhc: no candidate algorithms for category")
	ErrUnsupportedAlgorithm  = errors.New("dhc: unsupported algorithm")
	ErrUnsupportedPayload    = errors.New("dhc: payload does not match algorithm")
	ErrTruncatedInput        = errors.New("dhc: truncated input")
	ErrHeaderMismatch        = errors.New("dhc: header does not match body")
	ErrLengthOverflow        = errors.New("dhc: length exceeds 32 bits")
	ErrPathEscape            = errors.New("dhc: entry path escapes output root")
	ErrChecksumMismatch      = errors.New("dhc: checksum mismatch")
	ErrInvalidLevel          = errors.New("dhc: invalid compression level")
	ErrTranscoderUnavailable = errors.New("dhc: audio transcoder unavailable")
)

// ArchiveError carries the context of a failed archive operation. It
// unwraps to one of the package sentinels.
type ArchiveError struct {
	Op   string // "encode", "decode", "read", "write", ...
	Path string // archive-internal path, when known

	// Declared and Available are set for length failures
	Declared  uint64
	Available uint64

	Err error
}

func (e *ArchiveError) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Declared != 0 || e.Available != 0 {
		msg += fmt.Sprintf(" (declared %d bytes, %d available)", e.Declared, e.Available)
	}
	return msg + ": " + e.Err.Error()
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// unsupportedPayload wraps cause so that it matches ErrUnsupportedPayload
func unsupportedPayload(algo AlgorithmID, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedPayload, algo)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnsupportedPayload, algo, cause)
}
