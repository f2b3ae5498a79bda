package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fractalqualia/video-downloader-api/internal/httputil"
)

const scanPage = `<!DOCTYPE html>
<html>
<head>
<script>
  var player = setupPlayer({
    src: "https://cdn.example.com/vod/master.m3u8?sig=xyz",
    poster: "/img/poster.jpg"
  });
</script>
</head>
<body>
<video controls>
  <source src="https://cdn.example.com/vod/fallback.m3u8" type="application/x-mpegURL">
  <source src="https://cdn.example.com/vod/fallback.mp4" type="video/mp4">
</video>
</body>
</html>`

func TestScanFindsManifests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, scanPage)
	}))
	defer srv.Close()

	s := NewStaticScanner(httputil.NewClient(5*time.Second), nil)
	got, err := s.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	urls := make([]string, len(got))
	for i, c := range got {
		urls[i] = c.URL
	}

	want := map[string]bool{
		"https://cdn.example.com/vod/fallback.m3u8":       false,
		"https://cdn.example.com/vod/master.m3u8?sig=xyz": false,
	}
	for _, u := range urls {
		if _, ok := want[u]; !ok {
			t.Errorf("unexpected candidate %q", u)
			continue
		}
		want[u] = true
	}
	for u, seen := range want {
		if !seen {
			t.Errorf("candidate %q not found (got %v)", u, urls)
		}
	}
}

func TestScanEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>no streams here</body></html>")
	}))
	defer srv.Close()

	s := NewStaticScanner(httputil.NewClient(5*time.Second), nil)
	got, err := s.Scan(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Scan() = %v, want no candidates", got)
	}
}

func TestScanFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	s := NewStaticScanner(httputil.NewClient(5*time.Second), nil)
	if _, err := s.Scan(context.Background(), srv.URL); err == nil {
		t.Error("Scan() succeeded against a failing origin")
	}
}
