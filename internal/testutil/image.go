package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// Red is the fill of the default fixture image.
var Red = color.RGBA{R: 255, A: 255}

// WriteSolidJPEG writes a w×h JPEG filled with c and returns its path.
func WriteSolidJPEG(t *testing.T, path string, w, h int, c color.Color) string {
	t.Helper()
	writeImage(t, path, solid(w, h, c), func(f *os.File, img image.Image) error {
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	})
	return path
}

// WriteSolidPNG writes a w×h PNG filled with c and returns its path.
// A translucent c produces an image with an alpha channel.
func WriteSolidPNG(t *testing.T, path string, w, h int, c color.Color) string {
	t.Helper()
	writeImage(t, path, solid(w, h, c), func(f *os.File, img image.Image) error {
		return png.Encode(f, img)
	})
	return path
}

// WriteRedJPEG writes the 128×128 solid red fixture into dir under name.
func WriteRedJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	return WriteSolidJPEG(t, filepath.Join(dir, name), 128, 128, Red)
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func writeImage(t *testing.T, path string, img image.Image, encode func(*os.File, image.Image) error) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating fixture directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture %s: %v", path, err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		t.Fatalf("encoding fixture %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing fixture %s: %v", path, err)
	}
}
