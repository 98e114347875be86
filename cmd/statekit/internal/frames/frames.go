// Package frames captures render deliveries as PNG frame files, one
// image per delivery, for offline inspection of a scenario run.
package frames

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	padding    = 8
	lineHeight = 16
)

var (
	background = color.RGBA{R: 0x20, G: 0x24, B: 0x28, A: 0xff}
	foreground = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
)

// Writer renders delivery frames into a directory.
type Writer struct {
	dir   string
	runID string
	count int
}

// NewWriter creates the frame directory if needed.
func NewWriter(dir, runID string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create frame directory: %w", err)
	}
	return &Writer{dir: dir, runID: runID}, nil
}

// Capture renders one delivery as a PNG and returns the file path.
// Frames are numbered in capture order.
func (w *Writer) Capture(renderer, state string) (string, error) {
	w.count++
	label := fmt.Sprintf("%s: %s", renderer, state)
	img := render(label)

	name := fmt.Sprintf("%s-%04d-%s.png", w.runID, w.count, renderer)
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create frame: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return path, nil
}

// Count returns how many frames have been captured.
func (w *Writer) Count() int {
	return w.count
}

// render rasterizes one line of text onto a dark background.
func render(text string) *image.RGBA {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil() + 2*padding
	if width < 2*padding {
		width = 2 * padding
	}
	img := image.NewRGBA(image.Rect(0, 0, width, lineHeight+2*padding))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(foreground),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(padding),
			Y: fixed.I(padding + face.Ascent),
		},
	}
	drawer.DrawString(text)
	return img
}
