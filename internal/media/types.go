// Package media defines shared types for the download service.
package media

import "time"

// Candidate is a manifest URL observed while a page loaded.
type Candidate struct {
	URL    string // absolute manifest URL
	Source string // where it was seen: "request", "response", "page"
}

// Download records one completed extraction for the history log.
type Download struct {
	When      time.Time // completion time
	PageURL   string    // page the stream was extracted from
	StreamURL string    // selected master manifest URL
	Bytes     int64     // size of the produced file
}
