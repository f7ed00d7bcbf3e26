package fs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"

	"iqdbtag/internal/tagger"
)

// Inspect reads the file at path once, hashing its bytes and decoding the
// bitmap for its dimensions and difference hash.
func (m *OSFilesystemManager) Inspect(path *tagger.Path) (*tagger.ImageInfo, error) {
	if path.IsDir() {
		return nil, &tagger.ImageReadError{Path: path.String(), Err: fmt.Errorf("is a directory")}
	}
	if path.Size() == 0 {
		return nil, &tagger.ImageReadError{Path: path.String(), Err: fmt.Errorf("empty file")}
	}

	data, err := os.ReadFile(path.String())
	if err != nil {
		return nil, &tagger.ImageReadError{Path: path.String(), Err: err}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &tagger.ImageReadError{Path: path.String(), Err: fmt.Errorf("decoding: %w", err)}
	}

	sum := sha256.Sum256(data)
	bounds := img.Bounds()
	info := &tagger.ImageInfo{
		Checksum: hex.EncodeToString(sum[:]),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}

	// The hash is informational; an image it cannot handle is still stored.
	if hash, err := goimagehash.DifferenceHash(img); err == nil {
		info.DHash = hash.ToString()
	}
	return info, nil
}
