package leccap

import "errors"

// Sentinel errors for the leccap package.
var (
	// ErrLookupFailure is returned when the metadata endpoint cannot be reached
	// or answers with a non-success status.
	ErrLookupFailure = errors.New("metadata lookup failed")

	// ErrMalformedMetadata is returned when a metadata response cannot be
	// decoded or lacks a required field.
	ErrMalformedMetadata = errors.New("malformed metadata")

	// ErrNoRecordings is returned when a course page carries no recordings list.
	ErrNoRecordings = errors.New("no recordings found on course page")
)
