package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Fixture is one canned response replayed by FixtureTransport
type Fixture struct {
	// Method matches the request method; empty matches any method
	Method string `yaml:"method"`

	// Path matches the request URL path exactly
	Path string `yaml:"path"`

	Status  int               `yaml:"status"`
	Headers map[string]string `yaml:"headers"`
	Body    string            `yaml:"body"`

	// Timeout makes the transport fail the request with a timeout error
	Timeout bool `yaml:"timeout"`

	// Once removes the fixture after its first use
	Once bool `yaml:"once"`
}

// FixtureTransport is an http.RoundTripper that replays responses from fixtures
// instead of reaching the network. Fixtures are matched in order.
type FixtureTransport struct {
	mu       sync.Mutex
	fixtures []Fixture
	requests []string
}

// NewFixtureTransport creates a transport replaying the given fixtures
func NewFixtureTransport(fixtures []Fixture) *FixtureTransport {
	return &FixtureTransport{fixtures: append([]Fixture(nil), fixtures...)}
}

// LoadFixtures reads a YAML list of fixtures from path
func LoadFixtures(path string) (*FixtureTransport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures []Fixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return NewFixtureTransport(fixtures), nil
}

// RoundTrip answers req from the first matching fixture, or with 404
func (t *FixtureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		_ = req.Body.Close()
	}

	t.mu.Lock()
	t.requests = append(t.requests, req.Method+" "+req.URL.Path)
	fixture, ok := t.match(req)
	t.mu.Unlock()

	if !ok {
		return response(req, http.StatusNotFound, nil,
			fmt.Sprintf(`{"statusText":"no fixture for %s %s"}`, req.Method, req.URL.Path)), nil
	}
	if fixture.Timeout {
		return nil, fixtureTimeout{}
	}

	status := fixture.Status
	if status == 0 {
		status = http.StatusOK
	}
	return response(req, status, fixture.Headers, fixture.Body), nil
}

// Requests returns the "METHOD /path" lines of every request seen so far
func (t *FixtureTransport) Requests() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requests...)
}

func (t *FixtureTransport) match(req *http.Request) (Fixture, bool) {
	for i, f := range t.fixtures {
		if f.Method != "" && !strings.EqualFold(f.Method, req.Method) {
			continue
		}
		if f.Path != req.URL.Path {
			continue
		}
		if f.Once {
			t.fixtures = append(t.fixtures[:i:i], t.fixtures[i+1:]...)
		}
		return f, true
	}
	return Fixture{}, false
}

func response(req *http.Request, status int, headers map[string]string, body string) *http.Response {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}
	if body != "" && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewBufferString(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// fixtureTimeout satisfies net.Error so the pipeline classifies it as a timeout
type fixtureTimeout struct{}

func (fixtureTimeout) Error() string   { return "fixture: simulated timeout" }
func (fixtureTimeout) Timeout() bool   { return true }
func (fixtureTimeout) Temporary() bool { return true }
