// Package api provides the request pipeline for the REST backend: it builds
// authorized requests, dispatches them through an HTTP transport and
// normalizes every outcome into a Payload or a NetworkError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout is the per-request transport timeout
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries the per-request correlation id
	RequestIDHeader = "X-Request-ID"
)

// Session is the view of the current session the pipeline needs
type Session interface {
	// ResolveURL turns an endpoint into an absolute URL
	ResolveURL(endpoint string) (*url.URL, error)

	// CurrentAccessToken returns the access token if it is still valid
	CurrentAccessToken(ctx context.Context) (string, bool)
}

// ResponseCache is an HTTP response cache the pipeline can purge between sessions.
// The pipeline ships no cache of its own; without WithCache, PurgeCache only drops idle connections.
type ResponseCache interface {
	Purge()
}

// Request describes one HTTP call.
// Params are sent as a JSON object body, or as query items for GET and DELETE.
// Form, when set, is sent as an application/x-www-form-urlencoded body instead.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	Params map[string]any
	Form   url.Values
}

// Payload is a successful response: a JSON object body plus response headers
type Payload struct {
	Body   map[string]any
	Header http.Header
}

// Client is the request pipeline
type Client struct {
	httpClient     *http.Client
	session        Session
	dispatcher     Dispatcher
	queue          *Queue
	cache          ResponseCache
	logger         zerolog.Logger
	debug          bool
	userAgent      string
	acceptLanguage string
	now            func() time.Time
	newRequestID   func() string
}

// Option configures a Client
type Option func(*Client)

// WithSession sets the session used by authorized calls
func WithSession(s Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransport replaces the round tripper of the underlying HTTP client
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithTimeout sets the per-request transport timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithDispatcher sets the context asynchronous completions are delivered on
func WithDispatcher(d Dispatcher) Option {
	return func(c *Client) {
		c.dispatcher = d
	}
}

// WithCache sets the response cache purged by PurgeCache
func WithCache(cache ResponseCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the request logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithDebug enables the per-request log line
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithAcceptLanguage sets the Accept-Language header sent with every request
func WithAcceptLanguage(lang string) Option {
	return func(c *Client) {
		c.acceptLanguage = lang
	}
}

// WithClock replaces the clock used to time requests
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithRequestIDs replaces the correlation id generator
func WithRequestIDs(gen func() string) Option {
	return func(c *Client) {
		c.newRequestID = gen
	}
}

// NewClient creates a new request pipeline.
// Without WithDispatcher, asynchronous completions are serialized on a private Queue
// that Close stops.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       zerolog.Nop(),
		now:          time.Now,
		newRequestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dispatcher == nil {
		c.queue = NewQueue()
		c.dispatcher = c.queue
	}
	return c
}

// Close stops the private completion queue after draining it.
// A dispatcher passed with WithDispatcher is left to its owner.
func (c *Client) Close() {
	if c.queue != nil {
		c.queue.Close()
	}
}

// Do executes one HTTP request and classifies the outcome.
// It issues exactly one request and never retries.
func (c *Client) Do(ctx context.Context, r *Request) (*Payload, error) {
	if r.URL == nil {
		return nil, NewMalformedEndpoint("", nil)
	}

	req, body, err := c.buildRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	start := c.now()
	resp, err := c.httpClient.Do(req)
	payload, status, size, respBody, err := classify(resp, err)
	c.logRequest(req, body, respBody, status, size, c.now().Sub(start), err)

	return payload, err
}

// Go executes the request asynchronously and delivers the result exactly once on the client's Dispatcher
func (c *Client) Go(ctx context.Context, r *Request, done func(Result[*Payload])) {
	go func() {
		result := From(c.Do(ctx, r))
		c.dispatcher.Dispatch(func() { done(result) })
	}()
}

// Authorized resolves endpoint against the current session and executes it with the bearer token attached
func (c *Client) Authorized(ctx context.Context, method, endpoint string, params map[string]any) (*Payload, error) {
	r, err := c.AuthorizedRequest(ctx, method, endpoint, params)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, r)
}

// GoAuthorized is the asynchronous form of Authorized.
// Failures to build the request are delivered through done as well.
func (c *Client) GoAuthorized(ctx context.Context, method, endpoint string, params map[string]any, done func(Result[*Payload])) {
	r, err := c.AuthorizedRequest(ctx, method, endpoint, params)
	if err != nil {
		c.dispatcher.Dispatch(func() { done(Fail[*Payload](err)) })
		return
	}
	c.Go(ctx, r, done)
}

// AuthorizedRequest builds a request for endpoint carrying the current access token
func (c *Client) AuthorizedRequest(ctx context.Context, method, endpoint string, params map[string]any) (*Request, error) {
	if c.session == nil {
		return nil, &NetworkError{Kind: KindSessionNotConfigured}
	}

	u, err := c.session.ResolveURL(endpoint)
	if err != nil {
		return nil, err
	}

	accessToken, ok := c.session.CurrentAccessToken(ctx)
	if !ok {
		return nil, &NetworkError{Kind: KindAuthenticationRequired}
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+accessToken)

	return &Request{
		Method: method,
		URL:    u,
		Header: header,
		Params: params,
	}, nil
}

// Get performs an authorized GET request
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any) (*Payload, error) {
	return c.Authorized(ctx, http.MethodGet, endpoint, params)
}

// Post performs an authorized POST request
func (c *Client) Post(ctx context.Context, endpoint string, params map[string]any) (*Payload, error) {
	return c.Authorized(ctx, http.MethodPost, endpoint, params)
}

// Patch performs an authorized PATCH request
func (c *Client) Patch(ctx context.Context, endpoint string, params map[string]any) (*Payload, error) {
	return c.Authorized(ctx, http.MethodPatch, endpoint, params)
}

// Put performs an authorized PUT request
func (c *Client) Put(ctx context.Context, endpoint string, params map[string]any) (*Payload, error) {
	return c.Authorized(ctx, http.MethodPut, endpoint, params)
}

// Delete performs an authorized DELETE request
func (c *Client) Delete(ctx context.Context, endpoint string, params map[string]any) (*Payload, error) {
	return c.Authorized(ctx, http.MethodDelete, endpoint, params)
}

// PurgeCache drops cached responses and idle connections so nothing from a
// previous session is reused
func (c *Client) PurgeCache() {
	if c.cache != nil {
		c.cache.Purge()
	}
	c.httpClient.CloseIdleConnections()
}

// buildRequest encodes the body and sets the standard headers
func (c *Client) buildRequest(ctx context.Context, r *Request) (*http.Request, []byte, error) {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	u := *r.URL
	var body []byte
	var contentType string

	switch {
	case r.Form != nil:
		body = []byte(r.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case method == http.MethodGet || method == http.MethodDelete:
		if len(r.Params) == 0 {
			break
		}
		query := u.Query()
		for name, value := range r.Params {
			query.Set(name, fmt.Sprint(value))
		}
		u.RawQuery = query.Encode()
	case r.Params != nil:
		data, err := json.Marshal(r.Params)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = data
		contentType = "application/json"
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, nil, NewMalformedEndpoint(u.String(), err)
	}

	// Set headers
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, c.newRequestID())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}
	for name, values := range r.Header {
		req.Header.Del(name)
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	return req, body, nil
}
