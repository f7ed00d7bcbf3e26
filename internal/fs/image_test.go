package fs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"iqdbtag/internal/tagger"
	"iqdbtag/internal/testutil"
)

func TestOSFilesystemManager_Inspect(t *testing.T) {
	t.Run("jpeg", func(t *testing.T) {
		path := testutil.WriteRedJPEG(t, t.TempDir(), "red.jpg")
		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		info, err := m.Inspect(p)
		if err != nil {
			t.Fatalf("Inspect() error = %v", err)
		}
		if want := testutil.FileSHA256Hex(t, path); info.Checksum != want {
			t.Errorf("Checksum = %q, want %q", info.Checksum, want)
		}
		if info.Width != 128 || info.Height != 128 {
			t.Errorf("size = %dx%d, want 128x128", info.Width, info.Height)
		}
		if info.DHash == "" {
			t.Error("DHash is empty")
		}
	})

	t.Run("png with alpha", func(t *testing.T) {
		path := testutil.WriteSolidPNG(t, filepath.Join(t.TempDir(), "a.png"), 40, 20, color.NRGBA{G: 255, A: 128})
		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		info, err := m.Inspect(p)
		if err != nil {
			t.Fatalf("Inspect() error = %v", err)
		}
		if info.Width != 40 || info.Height != 20 {
			t.Errorf("size = %dx%d, want 40x20", info.Width, info.Height)
		}
	})

	t.Run("same bytes same checksum", func(t *testing.T) {
		dir := t.TempDir()
		a := testutil.WriteRedJPEG(t, dir, "a.jpg")
		data, err := os.ReadFile(a)
		if err != nil {
			t.Fatal(err)
		}
		b := filepath.Join(dir, "b.jpg")
		if err := os.WriteFile(b, data, 0644); err != nil {
			t.Fatal(err)
		}

		m := NewOSFilesystemManager(nil)
		pa, _ := m.Resolve(a)
		pb, _ := m.Resolve(b)
		ia, err := m.Inspect(pa)
		if err != nil {
			t.Fatalf("Inspect(a) error = %v", err)
		}
		ib, err := m.Inspect(pb)
		if err != nil {
			t.Fatalf("Inspect(b) error = %v", err)
		}
		if ia.Checksum != ib.Checksum {
			t.Errorf("checksums differ: %s vs %s", ia.Checksum, ib.Checksum)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.jpg")
		if err := os.WriteFile(path, []byte("plain text"), 0644); err != nil {
			t.Fatal(err)
		}
		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		_, err = m.Inspect(p)
		var readErr *tagger.ImageReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("Inspect() error = %v, want *tagger.ImageReadError", err)
		}
		if readErr.Path != path {
			t.Errorf("ImageReadError.Path = %q, want %q", readErr.Path, path)
		}
	})

	t.Run("empty file is rejected before reading", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.jpg")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		m := NewOSFilesystemManager(nil)
		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.Size() != 0 {
			t.Fatalf("Size() = %d, want 0", p.Size())
		}

		_, err = m.Inspect(p)
		var readErr *tagger.ImageReadError
		if !errors.As(err, &readErr) {
			t.Fatalf("Inspect() error = %v, want *tagger.ImageReadError", err)
		}
		if !strings.Contains(readErr.Error(), "empty file") {
			t.Errorf("error = %q, want it to mention the empty file", readErr.Error())
		}
	})
}
