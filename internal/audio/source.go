package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
)

// Source opens audio resources
type Source interface {
	// Open returns a reader for the resource at location
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Name returns the source name
	Name() string
}

// HTTPSource downloads audio over HTTP. Requests go through a circuit
// breaker so a dead host fails fast after a few consecutive errors.
type HTTPSource struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPSource creates an HTTP source. threshold is the number of
// consecutive failures that opens the breaker.
func NewHTTPSource(timeout time.Duration, threshold uint32) *HTTPSource {
	if threshold == 0 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        "audio-http",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	return &HTTPSource{
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Open issues a GET request for location
func (s *HTTPSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	body, err := s.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %s", resp.Status)
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}
	return body.(io.ReadCloser), nil
}

// Name returns the source name
func (s *HTTPSource) Name() string {
	return "http"
}

// State returns the breaker state, for diagnostics
func (s *HTTPSource) State() gobreaker.State {
	return s.breaker.State()
}

// FileSource reads audio from the local file system
type FileSource struct{}

// Open opens the file at location
func (FileSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(filepath.Clean(location))
}

// Name returns the source name
func (FileSource) Name() string {
	return "file"
}
