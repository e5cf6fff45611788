// Package types defines exit codes following standard Unix conventions.
package types

import "errors"

// Exit codes for the sopsync CLI.
// These follow standard Unix/BSD sysexits.h conventions where applicable.
const (
	// ExitSuccess indicates the operation completed successfully.
	ExitSuccess = 0

	// ExitGenericError indicates a generic error occurred.
	// Use this when no more specific exit code applies.
	ExitGenericError = 1

	// ExitMisuse indicates the command was used incorrectly.
	// Examples: missing file arguments, invalid flags.
	ExitMisuse = 2

	// ExitDataError indicates the input data format was invalid.
	// Examples: unsupported file format, unparseable config.
	ExitDataError = 64

	// ExitTimeout indicates a shell command timed out.
	ExitTimeout = 65

	// ExitIOError indicates an I/O error occurred.
	// Examples: can't write the re-encrypted file.
	ExitIOError = 66

	// ExitBackendUnavailable indicates the encryption backend could not be
	// used, typically because the sops binary is not installed.
	ExitBackendUnavailable = 69
)

// ExitCodeFromError returns the appropriate exit code for a given error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrCommandTimeout):
		return ExitTimeout
	case errors.Is(err, ErrBackendUnavailable):
		return ExitBackendUnavailable
	case errors.Is(err, ErrUnsupportedFormat):
		return ExitDataError
	case errors.Is(err, ErrEncryptFailed):
		return ExitIOError
	default:
		return ExitGenericError
	}
}
