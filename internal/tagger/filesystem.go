package tagger

import "io/fs"

// Path is an absolute path checked by FilesystemManager.Resolve, together
// with the file info seen at that time.
type Path struct {
	abs  string
	info fs.FileInfo
}

func NewPath(abs string, info fs.FileInfo) *Path {
	return &Path{abs: abs, info: info}
}

func (p *Path) String() string { return p.abs }

func (p *Path) IsDir() bool { return p.info.IsDir() }

// Size is the file size in bytes when the path was resolved.
func (p *Path) Size() int64 { return p.info.Size() }

// ImageInfo is what the image store needs to know about a file on disk.
type ImageInfo struct {
	Checksum string // SHA-256 of the file bytes, lowercase hex
	Width    int
	Height   int
	DHash    string // perceptual difference hash, empty when it could not be computed
}

// FilesystemManager provides the filesystem operations the pipeline needs.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	Resolve(rawPath string) (*Path, error)

	// FindFiles returns the regular, non-ignored files directly inside dir,
	// sorted by name.
	FindFiles(dir *Path) ([]*Path, error)

	// Inspect hashes and decodes the image at path.
	// Decoding failures are returned as *ImageReadError.
	Inspect(path *Path) (*ImageInfo, error)
}

// Thumbnailer writes a resized JPEG copy of src to dst, fitting inside size.
type Thumbnailer interface {
	Generate(src, dst string, size Size) error
}

// Logger is the slog-style logger the service writes to; args alternate
// keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger drops everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}
