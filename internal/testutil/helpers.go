package testutil

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TableRow is one data row of a vocabulary table fixture
type TableRow struct {
	Prefix        string
	Audio         string // src of the audio element
	Word          string
	Transcription string
	Inflection    string
	Translation   string
}

// TableHTML renders rows as a six-column vocabulary table with a header row
func TableHTML(rows []TableRow) string {
	var b strings.Builder
	b.WriteString("<table>\n<tr><th>Prefix</th><th>Word</th><th>Transcription</th><th>Inflection</th><th>Translation</th><th></th></tr>\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "<tr><td>%s</td><td><audio src=\"%s\"></audio><a>%s</a></td><td>%s</td><td>%s</td><td>%s</td><td>&nbsp;</td></tr>\n",
			html.EscapeString(r.Prefix),
			html.EscapeString(r.Audio),
			html.EscapeString(r.Word),
			html.EscapeString(r.Transcription),
			html.EscapeString(r.Inflection),
			html.EscapeString(r.Translation),
		)
	}
	b.WriteString("</table>\n")
	return b.String()
}

// WriteTableFile writes a table fixture to path
func WriteTableFile(t *testing.T, path string, rows []TableRow) {
	t.Helper()
	CreateTestFile(t, path, []byte(TableHTML(rows)))
}

// AudioServer serves the given files by URL path and counts requests
type AudioServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[string]int
}

// NewAudioServer starts a server for files, keyed by URL path such as
// "/media/x.mp3". It is closed when the test ends.
func NewAudioServer(t *testing.T, files map[string][]byte) *AudioServer {
	t.Helper()

	s := &AudioServer{requests: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		s.mu.Unlock()

		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(data)
	}))
	t.Cleanup(s.Close)

	return s
}

// Requests returns how often path was requested
func (s *AudioServer) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Expected file to exist: %s", path)
	}
}

// AssertFileNotExists checks if a file does not exist
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Errorf("Expected file to not exist: %s", path)
	}
}

// AssertFileContent checks if a file has expected content
func AssertFileContent(t *testing.T, path string, expected []byte) {
	t.Helper()

	actual, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if string(actual) != string(expected) {
		t.Errorf("File content mismatch in %s\nExpected: %q\nActual: %q", path, expected, actual)
	}
}

// AssertFileContains checks if a file contains a substring
func AssertFileContains(t *testing.T, path string, substring string) {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), substring) {
		t.Errorf("File %s does not contain expected substring: %q", path, substring)
	}
}
