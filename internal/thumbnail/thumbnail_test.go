package thumbnail

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"iqdbtag/internal/tagger"
	"iqdbtag/internal/testutil"
)

func TestGenerator_Generate(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		size       tagger.Size
		wantW      int
		wantH      int
	}{
		{"square into square", 300, 300, tagger.Size{Width: 150, Height: 150}, 150, 150},
		{"small image is not upscaled", 128, 128, tagger.Size{Width: 150, Height: 150}, 128, 128},
		{"landscape keeps aspect", 400, 200, tagger.Size{Width: 150, Height: 150}, 150, 75},
		{"portrait keeps aspect", 100, 300, tagger.Size{Width: 150, Height: 150}, 50, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src := testutil.WriteSolidJPEG(t, filepath.Join(dir, "src.jpg"), tt.srcW, tt.srcH, testutil.Red)
			dst := filepath.Join(dir, "thumb.jpg")

			g := NewGenerator(80)
			if err := g.Generate(src, dst, tt.size); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}

			img, err := imaging.Open(dst)
			if err != nil {
				t.Fatalf("opening thumbnail: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("thumbnail = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestGenerator_Generate_Alpha(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteSolidPNG(t, filepath.Join(dir, "src.png"), 64, 64, color.NRGBA{A: 0})
	dst := filepath.Join(dir, "thumb.jpg")

	if err := NewGenerator(0).Generate(src, dst, tagger.Size{Width: 32, Height: 32}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	img, err := imaging.Open(dst)
	if err != nil {
		t.Fatalf("opening thumbnail: %v", err)
	}
	r, g, b, _ := img.At(16, 16).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("transparent pixel = (%d,%d,%d), want near white", r>>8, g>>8, b>>8)
	}
}

func TestGenerator_Generate_Errors(t *testing.T) {
	t.Run("unreadable source", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "broken.jpg")
		if err := os.WriteFile(src, []byte("not an image"), 0644); err != nil {
			t.Fatal(err)
		}
		dst := filepath.Join(dir, "thumb.jpg")

		err := NewGenerator(90).Generate(src, dst, tagger.DefaultThumbnailSize)
		var readErr *tagger.ImageReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("Generate() error = %v, want *tagger.ImageReadError", err)
		}
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Error("thumbnail written for unreadable source")
		}
	})

	t.Run("zero size", func(t *testing.T) {
		dir := t.TempDir()
		src := testutil.WriteRedJPEG(t, dir, "red.jpg")
		if err := NewGenerator(90).Generate(src, filepath.Join(dir, "t.jpg"), tagger.Size{}); err == nil {
			t.Error("Generate() expected error for zero size")
		}
	})
}
