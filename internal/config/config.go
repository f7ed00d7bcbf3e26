package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for iqdbtag.
type Config struct {
	BaseDir   string          `toml:"base_dir"`
	LogDir    string          `toml:"log_dir"`
	LogLevel  string          `toml:"log_level"` // "debug", "info", "warn" or "error"
	Database  DatabaseConfig  `toml:"database"`
	Thumbnail ThumbnailConfig `toml:"thumbnail"`
	Search    SearchConfig    `toml:"search"`
	Tags      TagsConfig      `toml:"tags"`
	Folder    FolderConfig    `toml:"folder"`
}

// DatabaseConfig represents configuration for the cache database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"`           // "sqlite" or "memory"
	Path string `toml:"path,omitempty"` // only used for type=sqlite
}

// ThumbnailConfig controls thumbnail generation.
type ThumbnailConfig struct {
	Dir           string `toml:"dir"`
	DefaultWidth  int    `toml:"default_width"`
	DefaultHeight int    `toml:"default_height"`
	JPEGQuality   int    `toml:"jpeg_quality"`
}

// SearchConfig controls the reverse image search upload.
type SearchConfig struct {
	Place          string `toml:"place"`        // "iqdb" or "danbooru"
	MatchFilter    string `toml:"match_filter"` // "default" or "best-match"
	UserAgent      string `toml:"user_agent"`
	IQDBURL        string `toml:"iqdb_url,omitempty"`     // overrides the iqdb endpoint, e.g. for a mirror
	DanbooruURL    string `toml:"danbooru_url,omitempty"` // overrides the danbooru endpoint
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TagsConfig controls tag page fetching.
type TagsConfig struct {
	TimeoutSeconds int      `toml:"timeout_seconds"`
	MaxConcurrent  int      `toml:"max_concurrent"`
	DenyHosts      []string `toml:"deny_hosts"`
}

// FolderConfig controls folder mode.
type FolderConfig struct {
	Ignore []string `toml:"ignore"`
}

// DefaultUserAgent is sent with every request unless configured otherwise.
const DefaultUserAgent = "iqdbtag/0.1 (+https://iqdb.org)"

// NewConfig creates a new Config with every value defaulted under baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: filepath.Join(baseDir, "iqdbtag.db"),
		},
		Thumbnail: ThumbnailConfig{
			Dir:           filepath.Join(baseDir, "thumbs"),
			DefaultWidth:  150,
			DefaultHeight: 150,
			JPEGQuality:   90,
		},
		Search: SearchConfig{
			Place:          "iqdb",
			MatchFilter:    "default",
			UserAgent:      DefaultUserAgent,
			TimeoutSeconds: 60,
		},
		Tags: TagsConfig{
			TimeoutSeconds: 10,
			MaxConcurrent:  8,
			DenyHosts:      []string{"anime-pictures.net", "www.theanimegallery.com"},
		},
		Folder: FolderConfig{
			Ignore: []string{"*.txt"},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
// Values missing from the input keep the defaults for baseDir.
func (m *Manager) Read(r io.Reader, baseDir string) (*Config, error) {
	cfg := NewConfig(baseDir)
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path, or returns the defaults when no file exists.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path, baseDir)
	if errors.Is(err, fs.ErrNotExist) {
		return NewConfig(baseDir), nil
	}
	return cfg, err
}

// Validate reports values that would make the pipeline unusable.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path required for sqlite database")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database type: %s", c.Database.Type)
	}
	if c.Thumbnail.Dir == "" {
		return fmt.Errorf("thumbnail.dir must be set")
	}
	if c.Thumbnail.DefaultWidth <= 0 || c.Thumbnail.DefaultHeight <= 0 {
		return fmt.Errorf("thumbnail default size must be positive, got %dx%d", c.Thumbnail.DefaultWidth, c.Thumbnail.DefaultHeight)
	}
	if c.Thumbnail.JPEGQuality < 1 || c.Thumbnail.JPEGQuality > 100 {
		return fmt.Errorf("thumbnail.jpeg_quality must be between 1 and 100, got %d", c.Thumbnail.JPEGQuality)
	}
	if c.Tags.MaxConcurrent <= 0 {
		return fmt.Errorf("tags.max_concurrent must be positive, got %d", c.Tags.MaxConcurrent)
	}
	return nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
