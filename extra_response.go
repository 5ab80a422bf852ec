package apptest

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/William9923/go-apptest/parser"
	"github.com/pkg/errors"
)

var _ Response = (*ExtraResponse)(nil)

// ExtraResponse wraps the Response returned by an application and adds raw
// and parsed body reads. It implements Response itself; its With* methods
// return a new *ExtraResponse.
type ExtraResponse struct {
	app   Application
	inner Response
}

// NewExtraResponse wraps resp. app is consulted for the chunk size used by
// RawBody and may be nil.
func NewExtraResponse(app Application, resp Response) *ExtraResponse {
	return &ExtraResponse{
		app:   app,
		inner: resp,
	}
}

// Unwrap returns the wrapped response.
func (r *ExtraResponse) Unwrap() Response {
	return r.inner
}

func (r *ExtraResponse) chunkSize() int {
	return settingsOf(r.app).ResponseChunkSize
}

// RawBody drains the body into a string.
//
// The length is taken from the Content-Length header, else from the stream
// size. The stream is rewound when it is seekable and then read in chunks;
// reading stops at the end of the stream or once the length is consumed.
// Without a known length the stream is read in chunks until it ends.
func (r *ExtraResponse) RawBody() (string, error) {
	body := r.Body()
	if body == nil {
		return "", nil
	}

	length := r.contentLength(body)

	if seeker, ok := body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", errors.Wrap(err, "rewind response body")
		}
	}

	chunkSize := r.chunkSize()
	var sb strings.Builder

	if length < 0 {
		buf := make([]byte, chunkSize)
		for {
			n, err := body.Read(buf)
			sb.Write(buf[:n])
			if err == io.EOF {
				return sb.String(), nil
			}
			if err != nil {
				return "", errors.Wrap(err, "read response body")
			}
		}
	}

	chunks := length / int64(chunkSize)
	if length%int64(chunkSize) != 0 {
		chunks++
	}
	for i := int64(0); i < chunks; i++ {
		size := int64(chunkSize)
		if i == chunks-1 && length%size != 0 {
			size = length % size
		}
		buf := make([]byte, size)
		n, err := io.ReadFull(body, buf)
		sb.Write(buf[:n])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return "", errors.Wrap(err, "read response body")
		}
	}
	return sb.String(), nil
}

// contentLength returns the number of bytes to read, or -1 when unknown.
func (r *ExtraResponse) contentLength(body Stream) int64 {
	if cl := r.HeaderLine("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	switch s := body.(type) {
	case Sizer:
		return s.Size()
	case LenReader:
		return int64(s.Len())
	}
	return -1
}

// ParsedBody decodes the body as JSON when Content-Type starts with
// application/json and returns the raw string otherwise. Decode errors are
// returned as is.
func (r *ExtraResponse) ParsedBody() (interface{}, error) {
	raw, err := r.RawBody()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(r.HeaderLine("Content-Type"), "application/json") {
		return raw, nil
	}
	if raw == "" {
		return nil, nil
	}
	return parser.DecodeJSON(raw)
}

// XMLBody decodes the body as an XML document.
func (r *ExtraResponse) XMLBody() (map[string]interface{}, error) {
	raw, err := r.RawBody()
	if err != nil {
		return nil, err
	}
	return parser.ParseXML(raw)
}

func (r *ExtraResponse) StatusCode() int {
	return r.inner.StatusCode()
}

func (r *ExtraResponse) WithStatus(code int, reasonPhrase string) Response {
	return NewExtraResponse(r.app, r.inner.WithStatus(code, reasonPhrase))
}

func (r *ExtraResponse) ReasonPhrase() string {
	return r.inner.ReasonPhrase()
}

func (r *ExtraResponse) ProtocolVersion() string {
	return r.inner.ProtocolVersion()
}

func (r *ExtraResponse) WithProtocolVersion(version string) Response {
	return NewExtraResponse(r.app, r.inner.WithProtocolVersion(version))
}

func (r *ExtraResponse) Headers() http.Header {
	return r.inner.Headers()
}

func (r *ExtraResponse) HasHeader(name string) bool {
	return r.inner.HasHeader(name)
}

func (r *ExtraResponse) Header(name string) []string {
	return r.inner.Header(name)
}

func (r *ExtraResponse) HeaderLine(name string) string {
	return r.inner.HeaderLine(name)
}

func (r *ExtraResponse) WithHeader(name string, values ...string) Response {
	return NewExtraResponse(r.app, r.inner.WithHeader(name, values...))
}

func (r *ExtraResponse) WithAddedHeader(name string, values ...string) Response {
	return NewExtraResponse(r.app, r.inner.WithAddedHeader(name, values...))
}

func (r *ExtraResponse) WithoutHeader(name string) Response {
	return NewExtraResponse(r.app, r.inner.WithoutHeader(name))
}

func (r *ExtraResponse) Body() Stream {
	return r.inner.Body()
}

func (r *ExtraResponse) WithBody(body Stream) Response {
	return NewExtraResponse(r.app, r.inner.WithBody(body))
}
