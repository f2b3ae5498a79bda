package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fractalqualia/video-downloader-api/internal/httputil"
	"github.com/fractalqualia/video-downloader-api/internal/media"
	"github.com/fractalqualia/video-downloader-api/internal/scratch"
)

type handlers struct {
	deps   Deps
	logger *slog.Logger
}

// downloadVideo runs the full pipeline for ?url= and streams the artifact
// back. The scratch directory is released on every exit path, after the
// response body has been written.
func (h *handlers) downloadVideo(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if pageURL == "" {
		h.logger.Warn("request missing url parameter")
		writeJSONError(w, http.StatusBadRequest, "Missing URL")
		return
	}

	sc, err := scratch.New(h.deps.TempRoot)
	if err != nil {
		h.logger.Error("scratch allocation failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to allocate temp space")
		return
	}
	defer func() {
		if err := sc.Release(); err != nil {
			// The response is already sent; nothing to do but record it.
			h.logger.Warn("scratch cleanup failed", "error", err)
		}
	}()

	res, err := h.deps.Pipeline.Run(r.Context(), pageURL, sc.ArtifactPath())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	f, err := os.Open(sc.ArtifactPath())
	if err != nil {
		h.logger.Error("reading artifact failed", "path", sc.ArtifactPath(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to read the video file")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("stat artifact failed", "path", sc.ArtifactPath(), "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to read the video file")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", "attachment; filename="+suggestedFilename(r))
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	if _, err := io.Copy(w, f); err != nil {
		// Status and headers are already written; the client likely
		// disconnected mid-body.
		h.logger.Warn("writing response body failed", "error", err)
		return
	}

	h.record(media.Download{
		When:      time.Now(),
		PageURL:   pageURL,
		StreamURL: res.StreamURL,
		Bytes:     info.Size(),
	})
}

// suggestedFilename returns output.mp4 unless the caller passed a
// filename parameter, which is sanitized before use in the header.
func suggestedFilename(r *http.Request) string {
	custom := r.URL.Query().Get("filename")
	if custom == "" {
		return "output.mp4"
	}
	name := httputil.SanitizeFilename(strings.TrimSuffix(custom, ".mp4"))
	name = strings.ReplaceAll(name, " ", "_")
	return name + ".mp4"
}

func (h *handlers) record(d media.Download) {
	if h.deps.History == nil {
		return
	}
	if err := h.deps.History.Append(d); err != nil {
		h.logger.Warn("recording history failed", "error", err)
	}
}

// downloadEntry is the JSON shape of one history row.
type downloadEntry struct {
	Time      string `json:"time"`
	PageURL   string `json:"pageUrl"`
	StreamURL string `json:"streamUrl"`
	Bytes     int64  `json:"bytes"`
}

func (h *handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		writeJSONError(w, http.StatusNotFound, "History is disabled")
		return
	}

	entries, err := h.deps.History.Load()
	if err != nil {
		h.logger.Error("loading history failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}

	out := make([]downloadEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, downloadEntry{
			Time:      e.When.UTC().Format(time.RFC3339),
			PageURL:   e.PageURL,
			StreamURL: e.StreamURL,
			Bytes:     e.Bytes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	ffmpegOK := h.deps.FFmpegOK == nil || h.deps.FFmpegOK()
	status, text := http.StatusOK, "ok"
	if !ffmpegOK {
		status, text = http.StatusServiceUnavailable, "degraded"
	}
	writeJSON(w, status, map[string]any{
		"status": text,
		"ffmpeg": ffmpegOK,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
