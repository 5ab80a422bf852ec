package apptest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/William9923/go-apptest/parser"
)

type requestContextKey struct{}

// Request wraps the request handed to the application.
type Request struct {
	// ID identifies the call in log output.
	ID string

	// ServerParams is the synthetic environment the request was built from.
	ServerParams Environment

	// CookieParams holds the cookies parsed from the Cookie header.
	CookieParams map[string]string

	// UploadedFiles mirrors the files argument of Client.Request.
	UploadedFiles UploadedFiles

	body *Body

	// Embed an HTTP request directly. This makes a *Request act exactly
	// like an *http.Request so that all meta methods are supported.
	*http.Request
}

// RequestFrom returns the *Request a HandlerApp attached to r.
func RequestFrom(r *http.Request) (*Request, bool) {
	req, ok := r.Context().Value(requestContextKey{}).(*Request)
	return req, ok
}

// WithContext returns wrapped Request with a shallow copy of underlying *http.Request
// with its context changed to ctx. The provided ctx must be non-nil.
func (r *Request) WithContext(ctx context.Context) *Request {
	return &Request{
		ID:            r.ID,
		ServerParams:  r.ServerParams,
		CookieParams:  r.CookieParams,
		UploadedFiles: r.UploadedFiles,
		body:          r.body,
		Request:       r.Request.WithContext(ctx),
	}
}

// QueryParams returns the query string parameters. Repeated keys keep the
// last value.
func (r *Request) QueryParams() map[string]string {
	query := make(map[string]string)
	for name, values := range r.URL.Query() {
		query[name] = values[len(values)-1]
	}
	return query
}

// HeaderLine joins the values of the named header with a comma.
func (r *Request) HeaderLine(name string) string {
	return strings.Join(r.Header.Values(name), ",")
}

// RawBody returns the serialized payload without consuming r.Body.
func (r *Request) RawBody() string {
	if r.body == nil {
		return ""
	}
	return r.body.String()
}

// ParsedBody decodes the payload according to its media type: JSON into any
// JSON value, forms into a map and XML into a map keyed by the root element.
// Other media types and empty bodies yield nil.
func (r *Request) ParsedBody() (interface{}, error) {
	raw := r.RawBody()
	if raw == "" {
		return nil, nil
	}

	switch classifyBody(r.Header.Get("Content-Type")) {
	case bodyJSON:
		return parser.DecodeJSON(raw)
	case bodyForm:
		return parser.ParseForm(raw)
	case bodyXML:
		return parser.ParseXML(raw)
	}
	return nil, nil
}

// BodyBytes returns a copy of the payload. It is an analogue to reading
// http.Request's Body, but it does not consume it.
func (r *Request) BodyBytes() []byte {
	if r.body == nil {
		return nil
	}
	return bytes.Clone(r.body.Bytes())
}

// WriteTo copies the payload into w.
// The signature matches io.WriterTo interface.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte(r.RawBody()))
	return int64(n), err
}
