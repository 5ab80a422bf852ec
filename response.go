package apptest

import (
	"net/http"
	"strings"
)

// Response is an immutable HTTP response value. Every With* method returns a
// new Response and leaves the receiver untouched; the body stream is shared.
type Response interface {
	StatusCode() int
	ReasonPhrase() string
	ProtocolVersion() string

	// Headers returns a copy of all header values keyed by canonical name.
	Headers() http.Header
	HasHeader(name string) bool
	Header(name string) []string
	// HeaderLine joins the values of name with a comma.
	HeaderLine(name string) string

	Body() Stream

	WithStatus(code int, reasonPhrase string) Response
	WithProtocolVersion(version string) Response
	WithHeader(name string, values ...string) Response
	WithAddedHeader(name string, values ...string) Response
	WithoutHeader(name string) Response
	WithBody(body Stream) Response
}

var _ Response = (*Message)(nil)

// Message is the concrete Response handed to applications.
type Message struct {
	code     int
	reason   string
	protocol string
	header   http.Header
	body     Stream
}

// NewResponse creates a response with an empty in-memory body.
func NewResponse(code int) *Message {
	return &Message{
		code:     code,
		protocol: DefaultHTTPVersion,
		header:   make(http.Header),
		body:     NewBody(nil),
	}
}

func (m *Message) clone() *Message {
	c := *m
	c.header = m.header.Clone()
	return &c
}

func (m *Message) StatusCode() int {
	return m.code
}

// ReasonPhrase returns the phrase given to WithStatus, or the standard text
// for the status code.
func (m *Message) ReasonPhrase() string {
	if m.reason != "" {
		return m.reason
	}
	return http.StatusText(m.code)
}

func (m *Message) ProtocolVersion() string {
	return m.protocol
}

func (m *Message) Headers() http.Header {
	return m.header.Clone()
}

func (m *Message) HasHeader(name string) bool {
	_, ok := m.header[http.CanonicalHeaderKey(name)]
	return ok
}

func (m *Message) Header(name string) []string {
	values := m.header.Values(name)
	if len(values) == 0 {
		return []string{}
	}
	return append([]string(nil), values...)
}

func (m *Message) HeaderLine(name string) string {
	return strings.Join(m.header.Values(name), ",")
}

func (m *Message) Body() Stream {
	return m.body
}

func (m *Message) WithStatus(code int, reasonPhrase string) Response {
	c := m.clone()
	c.code = code
	c.reason = reasonPhrase
	return c
}

func (m *Message) WithProtocolVersion(version string) Response {
	c := m.clone()
	c.protocol = version
	return c
}

func (m *Message) WithHeader(name string, values ...string) Response {
	c := m.clone()
	c.header[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
	return c
}

func (m *Message) WithAddedHeader(name string, values ...string) Response {
	c := m.clone()
	for _, v := range values {
		c.header.Add(name, v)
	}
	return c
}

func (m *Message) WithoutHeader(name string) Response {
	c := m.clone()
	c.header.Del(name)
	return c
}

func (m *Message) WithBody(body Stream) Response {
	c := m.clone()
	c.body = body
	return c
}
