package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ErrTooLarge is returned when an audio resource exceeds the size limit.
var ErrTooLarge = errors.New("audio resource exceeds size limit")

// sourceReadError marks errors raised while reading the resource, as opposed
// to writing the media file.
type sourceReadError struct {
	err error
}

func (e *sourceReadError) Error() string { return e.err.Error() }
func (e *sourceReadError) Unwrap() error { return e.err }

// sourceReader tags every read failure of r except io.EOF
type sourceReader struct {
	r io.Reader
}

func (s sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &sourceReadError{err: err}
	}
	return n, err
}

// TransportError represents an audio resource that could not be retrieved.
type TransportError struct {
	Ref string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to fetch audio %s: %v", e.Ref, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError represents audio that could not be written to the media
// directory.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to store audio %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Config configures audio fetching
type Config struct {
	MediaDir          string        // Directory downloaded audio is stored in
	BaseURL           string        // Base for relative references; empty reads them from the table's directory
	Timeout           time.Duration // Per-request HTTP timeout
	MaxSizeBytes      int64         // Maximum size of one resource (0 = no limit)
	OverwriteExisting bool          // Fetch again when the media file already exists
	BreakerThreshold  uint32        // Consecutive HTTP failures before the breaker opens
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		MediaDir:         "media",
		Timeout:          30 * time.Second,
		MaxSizeBytes:     10 * 1024 * 1024, // 10MB
		BreakerThreshold: 5,
	}
}

// Item is one audio resource to fetch
type Item struct {
	Ref       string // Reference as written in the table
	SourceDir string // Directory of the table file
	Filename  string // Name of the file in the media directory
}

// Result describes a fetched item
type Result struct {
	Path    string
	Skipped bool // The file already existed and was kept
}

// Fetcher copies audio resources into the media directory
type Fetcher struct {
	config *Config
	base   *url.URL
	remote Source
	local  Source
}

// NewFetcher creates a new audio fetcher
func NewFetcher(config *Config) (*Fetcher, error) {
	if config == nil {
		config = DefaultConfig()
	}

	f := &Fetcher{
		config: config,
		remote: NewHTTPSource(config.Timeout, config.BreakerThreshold),
		local:  FileSource{},
	}

	if config.BaseURL != "" {
		base, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid audio base URL: %w", err)
		}
		if !isHTTP(base) {
			return nil, fmt.Errorf("audio base URL must be http or https: %s", config.BaseURL)
		}
		f.base = base
	}

	return f, nil
}

// MediaDir returns the directory audio is stored in
func (f *Fetcher) MediaDir() string {
	return f.config.MediaDir
}

// Prepare creates the media directory
func (f *Fetcher) Prepare() error {
	if err := os.MkdirAll(f.config.MediaDir, 0755); err != nil {
		return &PersistenceError{Path: f.config.MediaDir, Err: err}
	}
	return nil
}

// Fetch stores the item's audio in the media directory
func (f *Fetcher) Fetch(ctx context.Context, item Item) (Result, error) {
	if item.Filename == "" || item.Filename == "." || item.Filename == ".." || item.Filename != filepath.Base(item.Filename) {
		return Result{}, &PersistenceError{Path: item.Filename, Err: errors.New("invalid media filename")}
	}
	outputPath := filepath.Join(f.config.MediaDir, item.Filename)

	if !f.config.OverwriteExisting {
		if _, err := os.Stat(outputPath); err == nil {
			return Result{Path: outputPath, Skipped: true}, nil
		}
	}

	source, location, err := f.resolve(item)
	if err != nil {
		return Result{}, &TransportError{Ref: item.Ref, Err: err}
	}

	reader, err := source.Open(ctx, location)
	if err != nil {
		return Result{}, &TransportError{Ref: item.Ref, Err: err}
	}
	defer reader.Close()

	if err := f.store(sourceReader{r: reader}, outputPath); err != nil {
		var readErr *sourceReadError
		if errors.As(err, &readErr) {
			return Result{}, &TransportError{Ref: item.Ref, Err: readErr.err}
		}
		if errors.Is(err, ErrTooLarge) {
			return Result{}, &TransportError{Ref: item.Ref, Err: err}
		}
		return Result{}, &PersistenceError{Path: outputPath, Err: err}
	}

	return Result{Path: outputPath}, nil
}

// resolve picks the source and location for a reference
func (f *Fetcher) resolve(item Item) (Source, string, error) {
	ref, err := url.Parse(item.Ref)
	if err != nil {
		return nil, "", fmt.Errorf("invalid reference: %w", err)
	}

	switch {
	case isHTTP(ref):
		return f.remote, ref.String(), nil
	case ref.Scheme == "file":
		return f.local, ref.Path, nil
	case ref.Scheme != "":
		return nil, "", fmt.Errorf("unsupported scheme %q", ref.Scheme)
	case f.base != nil:
		return f.remote, f.base.ResolveReference(ref).String(), nil
	case filepath.IsAbs(ref.Path):
		return f.local, ref.Path, nil
	default:
		return f.local, filepath.Join(item.SourceDir, filepath.FromSlash(ref.Path)), nil
	}
}

// store copies reader into outputPath, removing the file on error
func (f *Fetcher) store(reader io.Reader, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}

	var written int64
	if f.config.MaxSizeBytes > 0 {
		written, err = io.Copy(file, io.LimitReader(reader, f.config.MaxSizeBytes+1))
		if err == nil && written > f.config.MaxSizeBytes {
			err = fmt.Errorf("%w of %d bytes", ErrTooLarge, f.config.MaxSizeBytes)
		}
	} else {
		_, err = io.Copy(file, reader)
	}

	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outputPath) // Clean up on error
		return err
	}
	return nil
}

func isHTTP(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
