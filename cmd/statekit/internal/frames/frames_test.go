package frames

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCaptureWritesDecodablePNG(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "run1")
	if err != nil {
		t.Fatal(err)
	}

	path, err := w.Capture("panel", "00:01")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "run1-0001-panel") {
		t.Errorf("unexpected frame name %q", filepath.Base(path))
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("frame is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		t.Errorf("frame has empty bounds %v", img.Bounds())
	}
}

func TestCaptureNumbersFramesInOrder(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "run2")
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := w.Capture("panel", "x"); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != 3 {
		t.Errorf("Count = %d, want 3", w.Count())
	}
}

func TestNewWriterCreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if _, err := NewWriter(dir, "run3"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("frame directory was not created: %v", err)
	}
}
