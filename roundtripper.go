package apptest

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
)

// RoundTripper implements the http.RoundTripper interface, dispatching
// requests for the client's hosts to the application in-process.
//
// WARN: roundTripper struct is not intended to be used by outside package, only to support StandardClient
type roundTripper struct {
	Client *Client
}

// RoundTrip satisfies the http.RoundTripper interface.
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {

	if rt.Client == nil {
		return nil, ErrApplicationMissing
	}

	if !in(req.URL.Hostname(), rt.Client.Hosts) {
		return rt.Client.passthrough().RoundTrip(req)
	}

	var body []byte
	if req.Body != nil {
		defer req.Body.Close()
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = b
	}

	headers := make(map[string]string, len(req.Header))
	for name, values := range req.Header {
		headers[name] = strings.Join(values, ", ")
	}

	resp, err := rt.Client.RequestWithContext(req.Context(), req.Method, req.URL.String(), body, headers, nil)
	if err != nil {
		return nil, err
	}

	raw, err := resp.RawBody()
	if err != nil {
		return nil, err
	}

	major, minor, ok := http.ParseHTTPVersion("HTTP/" + resp.ProtocolVersion())
	if !ok {
		major, minor = 1, 1
	}

	return &http.Response{
		Status:        strconv.Itoa(resp.StatusCode()) + " " + resp.ReasonPhrase(),
		StatusCode:    resp.StatusCode(),
		Proto:         "HTTP/" + resp.ProtocolVersion(),
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        resp.Headers(),
		Body:          io.NopCloser(strings.NewReader(raw)),
		ContentLength: int64(len(raw)),
		Request:       req,
	}, nil
}

func (c *Client) passthrough() http.RoundTripper {
	c.transportInit.Do(func() {
		if c.Passthrough == nil {
			c.Passthrough = cleanhttp.DefaultPooledTransport()
		}
	})
	return c.Passthrough
}

// StandardClient returns a stdlib *http.Client whose transport runs requests
// for Client.Hosts through the application and sends the rest upstream.
func (c *Client) StandardClient() *http.Client {
	return &http.Client{
		Transport: &roundTripper{Client: c},
	}
}
