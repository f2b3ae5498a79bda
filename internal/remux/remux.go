// Package remux produces a standalone MP4 from a stream URL using
// ffmpeg stream copy. No decoding or re-encoding takes place; ffmpeg
// repackages the compressed streams into the output container.
package remux

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/fractalqualia/video-downloader-api/internal/pipeline"
)

// FFmpeg invokes the ffmpeg binary for stream-copy remuxing.
type FFmpeg struct {
	path    string // binary name or path; looked up per call
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a remuxer. path may be empty to use "ffmpeg" from PATH;
// timeout bounds each remux operation.
func New(path string, timeout time.Duration, logger *slog.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpeg{path: path, timeout: timeout, logger: logger.With("stage", "remux")}
}

// Available reports whether the ffmpeg binary can be resolved.
func (f *FFmpeg) Available() bool {
	_, err := exec.LookPath(f.path)
	return err == nil
}

// buildArgs assembles the ffmpeg argument list as an explicit slice;
// nothing is shell-interpreted.
func buildArgs(streamURL, outPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "warning",
		"-y", // overwrite output
		"-i", streamURL,
		"-c", "copy", // stream copy, no re-encode
		"-bsf:a", "aac_adtstoasc", // ADTS AAC in TS segments needs repacking for MP4
		"-progress", "pipe:2",
		outPath,
	}
}

// Remux runs ffmpeg against streamURL, writing outPath. It blocks until the
// process terminates; on failure or deadline the partial output is removed
// and a TranscodeError carrying ffmpeg's diagnostics is returned. The
// deadline kills the process, no orphans are left behind.
func (f *FFmpeg) Remux(ctx context.Context, streamURL, outPath string) error {
	ffmpegPath, err := exec.LookPath(f.path)
	if err != nil {
		return &pipeline.TranscodeError{Err: fmt.Errorf("ffmpeg not found in PATH: %w", err)}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, ffmpegPath, buildArgs(streamURL, outPath)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &pipeline.TranscodeError{Err: fmt.Errorf("creating stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &pipeline.TranscodeError{Err: fmt.Errorf("starting ffmpeg: %w", err)}
	}
	f.logger.Debug("ffmpeg started", "stream", streamURL, "out", outPath)

	// Progress lines are logged and discarded; anything else is diagnostic
	// output kept for the error message.
	diag := newTail(8)
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		if key, value, ok := parseProgressLine(line); ok {
			if key == "out_time" || key == "speed" {
				f.logger.Debug("ffmpeg progress", key, value)
			}
			continue
		}
		if line != "" {
			diag.add(line)
			f.logger.Debug("ffmpeg", "line", line)
		}
	}

	if err := cmd.Wait(); err != nil {
		if removeErr := os.Remove(outPath); removeErr != nil && !os.IsNotExist(removeErr) {
			f.logger.Warn("removing partial output failed", "path", outPath, "error", removeErr)
		}
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("deadline exceeded after %s: %w", f.timeout, err)
		}
		return &pipeline.TranscodeError{Detail: diag.String(), Err: err}
	}

	// ffmpeg can exit zero having written nothing (e.g. empty playlist);
	// never report an artifact that does not hold data.
	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		os.Remove(outPath)
		return &pipeline.TranscodeError{
			Detail: diag.String(),
			Err:    fmt.Errorf("ffmpeg produced no output"),
		}
	}

	f.logger.Debug("ffmpeg finished", "out", outPath, "bytes", info.Size())
	return nil
}
