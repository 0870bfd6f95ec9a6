package internal

import "errors"

var (
	// ErrInvalidPattern is fatal for the whole run.
	ErrInvalidPattern = errors.New("invalid pattern")

	// Per-file failures. They end up in ScanResult.Err and never stop sibling workers.
	ErrFileAccess  = errors.New("cannot access file")
	ErrDecode      = errors.New("content is not valid text")
	ErrWorkerPanic = errors.New("worker panic")
)
