package collect

import (
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/fractalqualia/video-downloader-api/internal/media"
)

// hlsMIMETypes are response MIME types that identify an HLS playlist even
// when the URL itself does not carry the .m3u8 extension.
var hlsMIMETypes = map[string]bool{
	"audio/mpegurl":                 true,
	"audio/x-mpegurl":               true,
	"application/x-mpegurl":         true,
	"application/vnd.apple.mpegurl": true,
}

// isManifestURL reports whether the URL's path ends in .m3u8.
func isManifestURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".m3u8")
}

// isHLSMIME reports whether a response MIME type identifies an HLS playlist.
func isHLSMIME(mime string) bool {
	return hlsMIMETypes[strings.ToLower(mime)]
}

// recorder accumulates candidate URLs in observation order, deduplicated.
// Safe for concurrent use; browser events arrive on chromedp's goroutines.
type recorder struct {
	mu         sync.Mutex
	seen       map[string]struct{}
	candidates []media.Candidate
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[string]struct{})}
}

// add records a URL unless it was already seen. Returns true if recorded.
func (r *recorder) add(rawURL, source string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[rawURL]; dup {
		return false
	}
	r.seen[rawURL] = struct{}{}
	r.candidates = append(r.candidates, media.Candidate{URL: rawURL, Source: source})
	return true
}

// snapshot returns the recorded candidates in observation order.
func (r *recorder) snapshot() []media.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]media.Candidate, len(r.candidates))
	copy(out, r.candidates)
	return out
}
