package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fractalqualia/video-downloader-api/internal/httputil"
	"github.com/fractalqualia/video-downloader-api/internal/media"
	"github.com/fractalqualia/video-downloader-api/internal/pipeline"
)

const masterBody = `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=2149280,RESOLUTION=1280x720
hls/720/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=4686817,RESOLUTION=1920x1080
hls/1080/index.m3u8
`

const mediaBody = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXTINF:5.880,
seg-001.ts
#EXTINF:6.000,
seg-002.ts
#EXT-X-ENDLIST
`

// playlistServer serves fixed bodies under /master, /media and fails /broken.
func playlistServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/master", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, masterBody)
	})
	mux.HandleFunc("/media", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mediaBody)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream error", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClassifier() *HTTP {
	return New(httputil.NewClient(5*time.Second), nil)
}

func candidates(urls ...string) []media.Candidate {
	out := make([]media.Candidate, len(urls))
	for i, u := range urls {
		out[i] = media.Candidate{URL: u, Source: "request"}
	}
	return out
}

func TestClassifySelectsMaster(t *testing.T) {
	srv := playlistServer(t)
	c := newTestClassifier()

	got, err := c.Classify(context.Background(), candidates(srv.URL+"/media", srv.URL+"/master"))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != srv.URL+"/master" {
		t.Errorf("Classify() = %q, want master URL", got)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	srv := playlistServer(t)
	c := newTestClassifier()

	// Both qualify; the earlier one in observation order must win.
	first := srv.URL + "/master"
	second := srv.URL + "/master?copy=2"
	got, err := c.Classify(context.Background(), candidates(first, second))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != first {
		t.Errorf("Classify() = %q, want first candidate %q", got, first)
	}
}

func TestClassifyToleratesFetchFailure(t *testing.T) {
	srv := playlistServer(t)
	c := newTestClassifier()

	got, err := c.Classify(context.Background(), candidates(srv.URL+"/broken", srv.URL+"/master"))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if got != srv.URL+"/master" {
		t.Errorf("Classify() = %q, want master despite earlier fetch failure", got)
	}
}

func TestClassifyNoMaster(t *testing.T) {
	srv := playlistServer(t)
	c := newTestClassifier()

	_, err := c.Classify(context.Background(), candidates(srv.URL+"/media", srv.URL+"/broken"))
	if !errors.Is(err, pipeline.ErrNoMaster) {
		t.Fatalf("Classify() error = %v, want ErrNoMaster", err)
	}
}

func TestClassifyEmptySet(t *testing.T) {
	c := newTestClassifier()
	_, err := c.Classify(context.Background(), nil)
	if !errors.Is(err, pipeline.ErrNoMaster) {
		t.Fatalf("Classify() error = %v, want ErrNoMaster", err)
	}
}
