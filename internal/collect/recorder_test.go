package collect

import "testing"

func TestIsManifestURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "plain", url: "https://cdn.example.com/master.m3u8", want: true},
		{name: "with query", url: "https://cdn.example.com/master.m3u8?token=abc&e=1", want: true},
		{name: "uppercase extension", url: "https://cdn.example.com/MASTER.M3U8", want: true},
		{name: "http scheme", url: "http://cdn.example.com/hls/index.m3u8", want: true},
		{name: "segment", url: "https://cdn.example.com/seg-001.ts", want: false},
		{name: "mpd manifest", url: "https://cdn.example.com/stream.mpd", want: false},
		{name: "m3u8 in query only", url: "https://example.com/player?src=master.m3u8", want: false},
		{name: "m3u8 mid-path", url: "https://example.com/master.m3u8/redirect", want: false},
		{name: "page url", url: "https://example.com/watch/123", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isManifestURL(tt.url); got != tt.want {
				t.Errorf("isManifestURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRecorderOrderAndDedup(t *testing.T) {
	rec := newRecorder()

	if !rec.add("https://a/1.m3u8", "request") {
		t.Error("first add returned false")
	}
	rec.add("https://a/2.m3u8", "request")
	if rec.add("https://a/1.m3u8", "response") {
		t.Error("duplicate add returned true")
	}
	rec.add("https://a/3.m3u8", "page")

	got := rec.snapshot()
	want := []string{"https://a/1.m3u8", "https://a/2.m3u8", "https://a/3.m3u8"}
	if len(got) != len(want) {
		t.Fatalf("snapshot has %d candidates, want %d", len(got), len(want))
	}
	for i, c := range got {
		if c.URL != want[i] {
			t.Errorf("candidate[%d] = %q, want %q", i, c.URL, want[i])
		}
	}
	// First-seen source wins for duplicates.
	if got[0].Source != "request" {
		t.Errorf("candidate[0].Source = %q, want %q", got[0].Source, "request")
	}
}

func TestIsHLSMIME(t *testing.T) {
	if !isHLSMIME("application/vnd.apple.mpegurl") {
		t.Error("apple mpegurl not recognized")
	}
	if !isHLSMIME("Application/X-MPEGURL") {
		t.Error("MIME matching should be case-insensitive")
	}
	if isHLSMIME("video/mp4") {
		t.Error("video/mp4 wrongly recognized as HLS")
	}
}
