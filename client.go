package apptest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultContentType = "application/x-www-form-urlencoded"

// jsonContentType is forced by RequestJSON unless the caller sets one.
const jsonContentType = "application/json;charset=utf8"

// Client drives requests through an Application.
//
// Each call builds its own environment, request and response and hands them
// to the application explicitly, so a Client may be shared by parallel tests
// as long as the application itself tolerates concurrent calls.
type Client struct {
	App    Application // Application under test.
	Logger interface{} // Customer logger instance. Can be either Logger or LeveledLogger

	// RequestLogHook allows a user-supplied function to be called
	// before each request is processed.
	RequestLogHook RequestLogHook

	// ResponseLogHook allows a user-supplied function to be called
	// with the response from each processed request.
	ResponseLogHook ResponseLogHook

	// Hosts lists the host names StandardClient dispatches in-process.
	// Requests to other hosts go to Passthrough.
	Hosts []string

	// Passthrough carries StandardClient requests for hosts not in Hosts.
	// It defaults to a pooled transport.
	Passthrough http.RoundTripper

	loggerInit    sync.Once
	transportInit sync.Once
}

// NewClient creates a new Client with default settings.
func NewClient(app Application) *Client {
	return &Client{
		App:    app,
		Logger: defaultLogger,
		Hosts:  []string{"", defaultServerName, "127.0.0.1"},
	}
}

func (c *Client) logger() interface{} {
	c.loggerInit.Do(func() {
		if c.Logger == nil {
			return
		}

		switch c.Logger.(type) {
		case Logger, LeveledLogger:
			// ok
		default:
			// This should happen in dev when they are setting Logger and work on code, not in prod.
			panic(fmt.Sprintf("invalid logger type passed, must be Logger or LeveledLogger, was %T", c.Logger))
		}
	})

	return c.Logger
}

// Request runs a request through the application.
//
// body may be nil, a string or []byte (sent verbatim), or a mapping
// (map[string]interface{}, map[string]string, url.Values or Fields) which is
// encoded as JSON or as a form according to the Content-Type header. headers
// are matched case-insensitively for Content-Type; files may be nil.
func (c *Client) Request(method, rawURL string, body interface{}, headers map[string]string, files Files) (*ExtraResponse, error) {
	return c.RequestWithContext(context.Background(), method, rawURL, body, headers, files)
}

// RequestWithContext is Request with a context attached to the request.
func (c *Client) RequestWithContext(ctx context.Context, method, rawURL string, body interface{}, headers map[string]string, files Files) (*ExtraResponse, error) {
	if c.App == nil {
		return nil, ErrApplicationMissing
	}

	req, err := c.buildRequest(ctx, method, rawURL, body, headers, files)
	if err != nil {
		return nil, err
	}

	logger := c.logger()
	if logger != nil {
		switch v := logger.(type) {
		case LeveledLogger:
			v.Debug("performing request", "id", req.ID, "method", req.Method, "url", req.URL)
		case Logger:
			v.Printf("[DEBUG] %s %s %s", req.ID, req.Method, req.URL)
		}
	}

	if c.RequestLogHook != nil {
		switch v := logger.(type) {
		case LeveledLogger:
			c.RequestLogHook(hookLogger{v}, req)
		case Logger:
			c.RequestLogHook(v, req)
		default:
			c.RequestLogHook(nil, req)
		}
	}

	settings := settingsOf(c.App)
	fresh := NewResponse(http.StatusOK).WithProtocolVersion(settings.HTTPVersion)

	resp, err := c.App.Process(req, fresh)
	if err != nil {
		switch v := logger.(type) {
		case LeveledLogger:
			v.Error("request failed", "id", req.ID, "error", err, "method", req.Method, "url", req.URL)
		case Logger:
			v.Printf("[ERR] %s %s %s request failed: %v", req.ID, req.Method, req.URL, err)
		}
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL)
	}
	if resp == nil {
		return nil, ErrNoResponse
	}

	if c.ResponseLogHook != nil {
		switch v := logger.(type) {
		case LeveledLogger:
			c.ResponseLogHook(hookLogger{v}, resp)
		case Logger:
			c.ResponseLogHook(v, resp)
		default:
			c.ResponseLogHook(nil, resp)
		}
	}

	return NewExtraResponse(c.App, resp), nil
}

// RequestJSON is Request with Content-Type application/json;charset=utf8,
// unless headers already carry a Content-Type.
func (c *Client) RequestJSON(method, rawURL string, body interface{}, headers map[string]string) (*ExtraResponse, error) {
	merged := map[string]string{"Content-Type": jsonContentType}
	if _, ok := lookupHeader(headers, "Content-Type"); ok {
		merged = make(map[string]string, len(headers))
	}
	for name, value := range headers {
		merged[name] = value
	}
	return c.Request(method, rawURL, body, merged, nil)
}

// Get is a convenience helper for doing simple GET requests.
func (c *Client) Get(url string, headers map[string]string) (*ExtraResponse, error) {
	return c.Request(http.MethodGet, url, nil, headers, nil)
}

// Post is a convenience method for doing simple POST requests.
func (c *Client) Post(url string, body interface{}, headers map[string]string) (*ExtraResponse, error) {
	return c.Request(http.MethodPost, url, body, headers, nil)
}

// Put is a convenience method for doing simple PUT requests.
func (c *Client) Put(url string, body interface{}, headers map[string]string) (*ExtraResponse, error) {
	return c.Request(http.MethodPut, url, body, headers, nil)
}

// Patch is a convenience method for doing simple PATCH requests.
func (c *Client) Patch(url string, body interface{}, headers map[string]string) (*ExtraResponse, error) {
	return c.Request(http.MethodPatch, url, body, headers, nil)
}

// Delete is a convenience method for doing simple DELETE requests.
func (c *Client) Delete(url string, headers map[string]string) (*ExtraResponse, error) {
	return c.Request(http.MethodDelete, url, nil, headers, nil)
}

// PostForm posts data as an url encoded form.
func (c *Client) PostForm(url string, data url.Values) (*ExtraResponse, error) {
	return c.Post(url, data, map[string]string{"Content-Type": defaultContentType})
}

func (c *Client) buildRequest(ctx context.Context, method, rawURL string, body interface{}, headers map[string]string, files Files) (*Request, error) {
	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse request url")
	}

	contentType, ok := lookupHeader(headers, "Content-Type")
	if !ok {
		contentType = defaultContentType
	}
	serializedBody, err := serializeBody(contentType, body)
	if err != nil {
		return nil, errors.Wrap(err, "serialize request body")
	}

	env := newEnvironment(method, uri, contentType, serializedBody, headers)

	payload := NewBody(nil)
	if serializedBody != "" {
		if _, err := payload.WriteString(serializedBody); err != nil {
			return nil, errors.Wrap(err, "write request body")
		}
		payload.Rewind()
	}

	host := env["SERVER_NAME"]
	if port := env["SERVER_PORT"]; port != "80" {
		host = net.JoinHostPort(host, port)
	}
	target := &url.URL{
		Scheme:   "http",
		Host:     host,
		Path:     env["REQUEST_URI"],
		RawQuery: env["QUERY_STRING"],
	}
	if path, err := url.PathUnescape(target.Path); err == nil {
		target.Path, target.RawPath = path, target.Path
	}
	httpReq, err := http.NewRequestWithContext(ctx, env["REQUEST_METHOD"], target.String(), payload)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	httpReq.Header = env.Headers()
	httpReq.Host = target.Host
	httpReq.RequestURI = target.RequestURI()
	httpReq.RemoteAddr = env["REMOTE_ADDR"]
	httpReq.ContentLength = payload.Size()
	httpReq.GetBody = func() (io.ReadCloser, error) {
		return NewBodyString(serializedBody), nil
	}

	req := &Request{
		ID:            uuid.NewString(),
		ServerParams:  env.Copy(),
		CookieParams:  make(map[string]string),
		UploadedFiles: convertUploadFiles(files),
		body:          payload,
	}
	for _, cookie := range httpReq.Cookies() {
		req.CookieParams[cookie.Name] = cookie.Value
	}
	req.Request = httpReq.WithContext(context.WithValue(ctx, requestContextKey{}, req))

	return req, nil
}

// newEnvironment builds the server parameters for one call. Every header is
// also stored under HTTP_ plus the name as given.
func newEnvironment(method string, uri *url.URL, contentType, body string, headers map[string]string) Environment {
	path := uri.EscapedPath()
	if path == "" {
		path = "/"
	}
	host := uri.Hostname()
	if host == "" {
		host = defaultServerName
	}

	params := map[string]string{
		"REQUEST_METHOD": method,
		"REQUEST_URI":    path,
		"QUERY_STRING":   uri.RawQuery,
		"SERVER_NAME":    host,
		"CONTENT_TYPE":   contentType,
		"CONTENT_LENGTH": strconv.Itoa(utf8.RuneCountInString(body)),
	}
	if port := uri.Port(); port != "" {
		params["SERVER_PORT"] = port
	}
	for name, value := range headers {
		params["HTTP_"+name] = value
	}
	return MockEnvironment(params)
}

// lookupHeader finds a header by name, ignoring case. An exact match wins,
// otherwise the first matching key in sorted order.
func lookupHeader(headers map[string]string, name string) (string, bool) {
	if value, ok := headers[name]; ok {
		return value, true
	}
	key, ok := findFirst(sortedKeys(headers), func(key string) bool {
		return strings.EqualFold(key, name)
	})
	if !ok {
		return "", false
	}
	return headers[key], true
}
