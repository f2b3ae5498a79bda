// Package collect drives a headless browser session against a target page
// and records every HLS manifest URL the page requests while loading.
package collect

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/fractalqualia/video-downloader-api/internal/httputil"
	"github.com/fractalqualia/video-downloader-api/internal/media"
	"github.com/fractalqualia/video-downloader-api/internal/pipeline"
)

// Config holds browser session settings.
type Config struct {
	ChromePath   string        // explicit browser binary, empty for auto-detect
	NavTimeout   time.Duration // overall bound on the session
	SettleWindow time.Duration // network quiescence window
}

// Browser collects manifest URLs with a one-shot chromedp session per call.
// Sessions are never pooled; isolation is preferred over throughput.
type Browser struct {
	cfg      Config
	fallback *StaticScanner // optional, used when the session observes nothing
	logger   *slog.Logger
}

// NewBrowser creates a collector. fallback may be nil to disable the
// static page scan.
func NewBrowser(cfg Config, fallback *StaticScanner, logger *slog.Logger) *Browser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Browser{cfg: cfg, fallback: fallback, logger: logger.With("stage", "collect")}
}

// Collect renders pageURL and returns every manifest URL observed, in
// observation order. The browser session is torn down on every exit path.
func (b *Browser) Collect(ctx context.Context, pageURL string) ([]media.Candidate, error) {
	if err := httputil.ValidateURL(pageURL); err != nil {
		return nil, &pipeline.NavigationError{URL: pageURL, Err: err}
	}

	candidates, err := b.observe(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 && b.fallback != nil {
		b.logger.Info("no manifests observed in browser, scanning page source", "page", pageURL)
		scanned, err := b.fallback.Scan(ctx, pageURL)
		if err != nil {
			// The browser already rendered the page once; a failed second
			// fetch only means the fallback has nothing to add.
			b.logger.Warn("static scan failed", "page", pageURL, "error", err)
		} else {
			candidates = scanned
		}
	}

	if len(candidates) == 0 {
		return nil, pipeline.ErrNoManifests
	}
	return candidates, nil
}

// observe owns the browser session: open, subscribe, navigate, wait for
// quiescence, close. The deferred cancels release the session regardless
// of which path exits.
func (b *Browser) observe(ctx context.Context, pageURL string) ([]media.Candidate, error) {
	rec := newRecorder()
	tracker := newNetTracker()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("autoplay-policy", "no-user-gesture-required"),
	)
	if b.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(b.cfg.ChromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	if b.cfg.NavTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, b.cfg.NavTimeout)
		defer cancel()
	}

	chromedp.ListenTarget(taskCtx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventRequestWillBeSent:
			tracker.started(string(e.RequestID))
			if isManifestURL(e.Request.URL) && rec.add(e.Request.URL, "request") {
				b.logger.Debug("intercepted manifest request", "url", e.Request.URL)
			}
		case *network.EventResponseReceived:
			if isHLSMIME(e.Response.MimeType) && rec.add(e.Response.URL, "response") {
				b.logger.Debug("intercepted manifest response",
					"url", e.Response.URL, "mime", e.Response.MimeType)
			}
		case *network.EventLoadingFinished:
			tracker.finished(string(e.RequestID))
		case *network.EventLoadingFailed:
			tracker.finished(string(e.RequestID))
		}
	})

	if err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
	); err != nil {
		return nil, &pipeline.NavigationError{URL: pageURL, Err: err}
	}

	// Players often request manifests only after deferred initialization;
	// wait for the network to settle rather than returning at load.
	if err := tracker.waitQuiet(taskCtx, b.cfg.SettleWindow); err != nil {
		b.logger.Debug("quiescence wait ended early", "page", pageURL, "error", err)
	}

	return rec.snapshot(), nil
}
