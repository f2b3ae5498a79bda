package remux

import "strings"

// progressKeys are the key=value fields ffmpeg emits on -progress output.
var progressKeys = map[string]bool{
	"frame":        true,
	"fps":          true,
	"bitrate":      true,
	"total_size":   true,
	"out_time":     true,
	"out_time_ms":  true,
	"out_time_us":  true,
	"dup_frames":   true,
	"drop_frames":  true,
	"speed":        true,
	"progress":     true,
	"stream_0_0_q": true,
}

// parseProgressLine splits a -progress line into key and value. ok is false
// for lines that are not progress output (warnings, errors).
func parseProgressLine(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, "=")
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	if !progressKeys[k] {
		return "", "", false
	}
	return k, strings.TrimSpace(v), true
}

// tail keeps the last n added lines.
type tail struct {
	n     int
	lines []string
}

func newTail(n int) *tail {
	return &tail{n: n}
}

func (t *tail) add(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.n {
		t.lines = t.lines[1:]
	}
}

func (t *tail) String() string {
	return strings.Join(t.lines, "; ")
}
