// Package history records completed downloads in a TSV log.
// Uses atomic writes (temp+rename) to prevent data corruption.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fractalqualia/video-downloader-api/internal/media"
)

// TSV columns: unix time, page URL, stream URL, bytes
const numColumns = 4

// Log is a TSV-backed download log at a fixed path.
type Log struct {
	path string
}

// NewLog creates a log writing to path.
func NewLog(path string) *Log {
	return &Log{path: path}
}

// Load reads the log and returns all entries, oldest first.
// A missing file yields an empty log.
func (l *Log) Load() ([]media.Download, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening history: %w", err)
	}
	defer f.Close()

	var entries []media.Download
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err != nil {
			continue // skip malformed lines
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Append adds an entry to the log.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (l *Log) Append(entry media.Download) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	entries, _ := l.Load()
	entries = append(entries, entry)

	tmpFile, err := os.CreateTemp(dir, "history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	writer := bufio.NewWriter(tmpFile)
	for _, e := range entries {
		if _, err := writer.WriteString(formatLine(e) + "\n"); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing history: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing history: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing history: %w", err)
	}

	return nil
}

func formatLine(e media.Download) string {
	return strings.Join([]string{
		strconv.FormatInt(e.When.Unix(), 10),
		e.PageURL,
		e.StreamURL,
		strconv.FormatInt(e.Bytes, 10),
	}, "\t")
}

func parseLine(line string) (media.Download, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != numColumns {
		return media.Download{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(fields))
	}

	when, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return media.Download{}, fmt.Errorf("parsing timestamp: %w", err)
	}
	bytes, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return media.Download{}, fmt.Errorf("parsing size: %w", err)
	}

	return media.Download{
		When:      time.Unix(when, 0),
		PageURL:   fields[1],
		StreamURL: fields[2],
		Bytes:     bytes,
	}, nil
}
