package errors

import "errors"

var (
	// ErrStoreClosed is returned when a state update is attempted after the
	// state store actor has shut down.
	ErrStoreClosed = errors.New("state store closed")

	// ErrManifestEmpty is returned when a manifest parses but names no
	// downloads.
	ErrManifestEmpty = errors.New("manifest contains no downloads")
)
