package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel failures for the empty-result cases.
var (
	// ErrNoManifests means the page loaded but no manifest URLs were observed.
	ErrNoManifests = errors.New("failed to find any .m3u8 URL")

	// ErrNoMaster means no fetched candidate contained a master playlist.
	ErrNoMaster = errors.New("no valid video .m3u8 URL found")
)

// NavigationError wraps a failure to load the target page.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("loading page %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// TranscodeError wraps a remux failure, carrying ffmpeg's diagnostic output.
type TranscodeError struct {
	Detail string // last stderr lines from the engine, may be empty
	Err    error
}

func (e *TranscodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("remux failed: %v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("remux failed: %v", e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }
