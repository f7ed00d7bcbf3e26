// Package thumbnail writes resized JPEG copies of images.
package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"iqdbtag/internal/tagger"
)

// DefaultQuality is the JPEG quality used when none is configured.
const DefaultQuality = 90

// Generator resizes images with Lanczos resampling so they fit inside the
// requested box, keeping the aspect ratio.
type Generator struct {
	quality int
}

// NewGenerator creates a Generator writing JPEGs at the given quality.
func NewGenerator(quality int) *Generator {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Generator{quality: quality}
}

// Generate writes a thumbnail of src to dst. Transparent areas are flattened
// onto white because JPEG has no alpha channel. dst is replaced atomically so
// a failed run never leaves a truncated thumbnail behind.
func (g *Generator) Generate(src, dst string, size tagger.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid thumbnail size %s", size)
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return &tagger.ImageReadError{Path: src, Err: err}
	}

	thumb := imaging.Fit(img, size.Width, size.Height, imaging.Lanczos)
	flat := flatten(thumb)

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*.jpg")
	if err != nil {
		return fmt.Errorf("creating temp thumbnail: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := imaging.Encode(tmp, flat, imaging.JPEG, imaging.JPEGQuality(g.quality)); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing thumbnail: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("moving thumbnail into place: %w", err)
	}
	return nil
}

func flatten(img *image.NRGBA) image.Image {
	if img.Opaque() {
		return img
	}
	bounds := img.Bounds()
	bg := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

var _ tagger.Thumbnailer = (*Generator)(nil)
