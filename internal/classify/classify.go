// Package classify decides which of the collected manifest URLs is the
// master playlist, by fetching each body and checking for the variant
// stream marker.
package classify

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fractalqualia/video-downloader-api/internal/httputil"
	"github.com/fractalqualia/video-downloader-api/internal/media"
	"github.com/fractalqualia/video-downloader-api/internal/pipeline"
)

// masterMarker identifies a master playlist: only masters carry variant
// stream descriptions. Media playlists list segments instead.
const masterMarker = "#EXT-X-STREAM-INF"

// HTTP classifies candidates by fetching their bodies over HTTP.
type HTTP struct {
	client *http.Client
	logger *slog.Logger
}

// New creates a classifier using the given HTTP client.
func New(client *http.Client, logger *slog.Logger) *HTTP {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTP{client: client, logger: logger.With("stage", "classify")}
}

// Classify scans candidates in their collected order and returns the first
// whose body contains the master marker. A candidate that fails to fetch is
// skipped, not fatal; the scan only fails once every candidate is exhausted.
// First match wins deliberately: observation order tracks the player's own
// preference.
func (c *HTTP) Classify(ctx context.Context, candidates []media.Candidate) (string, error) {
	for _, cand := range candidates {
		body, err := httputil.GetBody(ctx, c.client, cand.URL)
		if err != nil {
			c.logger.Warn("candidate fetch failed, skipping", "url", cand.URL, "error", err)
			continue
		}

		if strings.Contains(body, masterMarker) {
			c.logger.Debug("master playlist identified", "url", cand.URL)
			return cand.URL, nil
		}
		c.logger.Debug("media playlist, skipping", "url", cand.URL)
	}

	return "", pipeline.ErrNoMaster
}
