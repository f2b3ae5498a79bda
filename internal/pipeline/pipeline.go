// Package pipeline wires the three extraction stages together:
// collect manifest URLs from a rendered page, classify them to find
// the master playlist, and remux the selected stream to a local file.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/fractalqualia/video-downloader-api/internal/media"
)

// Collector observes a page load and records manifest URLs.
type Collector interface {
	Collect(ctx context.Context, pageURL string) ([]media.Candidate, error)
}

// Classifier picks the master playlist URL among the candidates.
type Classifier interface {
	Classify(ctx context.Context, candidates []media.Candidate) (string, error)
}

// Remuxer stream-copies the given URL into outPath.
type Remuxer interface {
	Remux(ctx context.Context, streamURL, outPath string) error
}

// Pipeline runs the stages strictly in order. A stage is never entered
// if the previous one failed.
type Pipeline struct {
	Collector  Collector
	Classifier Classifier
	Remuxer    Remuxer
	Logger     *slog.Logger
}

// Result describes a successful run.
type Result struct {
	StreamURL string // the selected master manifest
}

// Run executes collect -> classify -> remux against pageURL, writing the
// artifact to outPath. The caller owns outPath and its cleanup.
func (p *Pipeline) Run(ctx context.Context, pageURL, outPath string) (*Result, error) {
	log := p.logger()

	log.Info("collecting manifest URLs", "page", pageURL)
	candidates, err := p.Collector.Collect(ctx, pageURL)
	if err != nil {
		log.Error("collection failed", "page", pageURL, "error", err)
		return nil, err
	}
	log.Info("collected candidates", "count", len(candidates))

	streamURL, err := p.Classifier.Classify(ctx, candidates)
	if err != nil {
		log.Error("classification failed", "page", pageURL, "error", err)
		return nil, err
	}
	log.Info("selected master playlist", "url", streamURL)

	if err := p.Remuxer.Remux(ctx, streamURL, outPath); err != nil {
		log.Error("remux failed", "stream", streamURL, "error", err)
		return nil, err
	}
	log.Info("remux complete", "path", outPath)

	return &Result{StreamURL: streamURL}, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
