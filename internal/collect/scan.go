package collect

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fractalqualia/video-downloader-api/internal/httputil"
	"github.com/fractalqualia/video-downloader-api/internal/media"
)

// manifestURLPattern matches absolute m3u8 URLs embedded in markup or
// inline script text.
var manifestURLPattern = regexp.MustCompile(`https?://[^\s"'<>\\]+\.m3u8[^\s"'<>\\]*`)

// StaticScanner is the no-JavaScript fallback: it fetches the raw page HTML
// once and looks for manifest URLs in media elements and inline scripts.
// It catches pages that wire the stream URL server-side, which a headless
// session can miss when playback never starts.
type StaticScanner struct {
	client *http.Client
	logger *slog.Logger
}

// NewStaticScanner creates a scanner using the given HTTP client.
func NewStaticScanner(client *http.Client, logger *slog.Logger) *StaticScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaticScanner{client: client, logger: logger.With("stage", "scan")}
}

// Scan fetches pageURL and returns manifest URLs found in its source,
// in document order, deduplicated.
func (s *StaticScanner) Scan(ctx context.Context, pageURL string) ([]media.Candidate, error) {
	html, err := httputil.GetBody(ctx, s.client, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching page source: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing page source: %w", err)
	}

	rec := newRecorder()

	doc.Find("source[src], video[src]").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if ok && isManifestURL(src) && rec.add(src, "page") {
			s.logger.Debug("found manifest in media element", "url", src)
		}
	})

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, m := range manifestURLPattern.FindAllString(sel.Text(), -1) {
			if rec.add(m, "page") {
				s.logger.Debug("found manifest in inline script", "url", m)
			}
		}
	})

	// Last resort: attributes and escaped JSON blobs the DOM walk misses.
	for _, m := range manifestURLPattern.FindAllString(html, -1) {
		rec.add(m, "page")
	}

	return rec.snapshot(), nil
}
