package domain

import "errors"

var (
	ErrUnsupportedType   = errors.New("unsupported file type")
	ErrTooLarge          = errors.New("file exceeds maximum allowed size")
	ErrEmptyBatch        = errors.New("no files selected for submission")
	ErrAlreadyInProgress = errors.New("a submission is already in progress")
	ErrTransportFailure  = errors.New("extraction service request failed")
	ErrMalformedResponse = errors.New("extraction service returned a malformed response")
	ErrNothingToExport   = errors.New("no records match the export profile")
	ErrSessionNotFound   = errors.New("session not found")
	ErrResultNotFound    = errors.New("extraction result not found")
	ErrSessionLimit      = errors.New("too many active sessions")
	ErrUnknownProfile    = errors.New("unknown export profile")
	ErrUnknownFormat     = errors.New("unknown export format")
)
