package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesUniquePaths(t *testing.T) {
	parent := t.TempDir()

	a, err := New(parent)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Release()

	b, err := New(parent)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Release()

	if a.ArtifactPath() == b.ArtifactPath() {
		t.Errorf("two scratch dirs share artifact path %q", a.ArtifactPath())
	}
	if filepath.Dir(a.ArtifactPath()) == filepath.Dir(b.ArtifactPath()) {
		t.Error("two scratch dirs share a directory")
	}
	if !strings.HasPrefix(a.ArtifactPath(), parent) {
		t.Errorf("artifact %q not under parent %q", a.ArtifactPath(), parent)
	}
}

func TestReleaseRemovesEverything(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := os.WriteFile(d.ArtifactPath(), []byte("data"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := d.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(d.ArtifactPath())); !os.IsNotExist(err) {
		t.Error("scratch directory survives Release")
	}

	// Second release is a no-op, not an error.
	if err := d.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}
