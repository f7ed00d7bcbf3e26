package tagger

import "fmt"

// ImageReadError means a file could not be opened or decoded as an image.
// It is fatal to the item being processed, never to a folder batch.
type ImageReadError struct {
	Path string
	Err  error
}

func (e *ImageReadError) Error() string {
	return fmt.Sprintf("reading image %s: %v", e.Path, e.Err)
}

func (e *ImageReadError) Unwrap() error { return e.Err }

// SearchEndpointError means the upload to a search place or the parsing of its
// result page failed.
type SearchEndpointError struct {
	Place Place
	Err   error
}

func (e *SearchEndpointError) Error() string {
	return fmt.Sprintf("searching %s: %v", e.Place, e.Err)
}

func (e *SearchEndpointError) Unwrap() error { return e.Err }

// TagFetchError is the failure of a single tag page fetch. The batch tag
// fetcher logs it and carries on; it never reaches the pipeline caller.
type TagFetchError struct {
	URL string
	Err error
}

func (e *TagFetchError) Error() string {
	return fmt.Sprintf("fetching tags from %s: %v", e.URL, e.Err)
}

func (e *TagFetchError) Unwrap() error { return e.Err }

// ConfigurationError is a fatal startup problem: unusable data directory,
// store locked by another process, or a schema version mismatch.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
