package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"iqdbtag/internal/tagger"
)

// OSFilesystemManager is the real filesystem implementation of tagger.FilesystemManager.
type OSFilesystemManager struct {
	ignore []string
}

// NewOSFilesystemManager creates a filesystem manager. ignore holds extra
// folder-mode patterns on top of the defaults and the folder's ignore file.
func NewOSFilesystemManager(ignore []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: ignore}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*tagger.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return tagger.NewPath(absPath, info), nil
}

// FindFiles lists the regular files directly inside dir, sorted by name.
// Sidecar tag files, the folder's ignore file and anything matching an ignore
// pattern are skipped. Subdirectories are not descended into.
func (m *OSFilesystemManager) FindFiles(dir *tagger.Path) ([]*tagger.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir.String())
	}

	filePatterns, err := ParseIgnoreFile(filepath.Join(dir.String(), IgnoreFileName))
	if err != nil {
		return nil, err
	}
	patterns := append(append([]string{}, m.ignore...), filePatterns...)
	matcher := NewIgnoreMatcher(patterns)

	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var paths []*tagger.Path
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if matcher.Match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		paths = append(paths, tagger.NewPath(filepath.Join(dir.String(), entry.Name()), info))
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i].String() < paths[j].String() })
	return paths, nil
}

// Compile-time check that OSFilesystemManager implements tagger.FilesystemManager interface
var _ tagger.FilesystemManager = (*OSFilesystemManager)(nil)
