// Package scratch manages per-request temporary workspace. Every request
// gets its own directory and a unique artifact path inside it, so
// concurrent requests can never race on a shared filename.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Dir is a request-scoped scratch directory holding one artifact.
// Release is idempotent and must run on every exit path of the request.
type Dir struct {
	root     string
	artifact string
	once     sync.Once
}

// New creates a scratch directory under parent (os.TempDir() if empty).
func New(parent string) (*Dir, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	root, err := os.MkdirTemp(parent, "vidgrab-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Dir{
		root:     root,
		artifact: filepath.Join(root, uuid.NewString()+".mp4"),
	}, nil
}

// ArtifactPath returns the unique output path for this request.
func (d *Dir) ArtifactPath() string {
	return d.artifact
}

// Release removes the scratch directory and everything in it. Safe to call
// more than once; only the first call does work.
func (d *Dir) Release() error {
	var err error
	d.once.Do(func() {
		err = os.RemoveAll(d.root)
	})
	return err
}
