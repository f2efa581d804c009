package ingest

import "errors"

// Sentinel causes wrapped inside fault errors.
var (
	ErrUnknownShotType = errors.New("unknown shot type")
	ErrBadDate         = errors.New("unparseable date")
	ErrBadNumber       = errors.New("unparseable number")
	ErrBadClock        = errors.New("unparseable MM:SS clock")
)
