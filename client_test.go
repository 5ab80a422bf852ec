package apptest

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(r http.Handler) *Client {
	client := NewClient(NewHandlerApp(r))
	client.Logger = nil
	return client
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// capture registers a route that stores the built *Request for inspection.
func capture(t *testing.T, method, pattern string) (*chi.Mux, **Request) {
	t.Helper()
	var captured *Request
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, func(w http.ResponseWriter, hr *http.Request) {
		req, ok := RequestFrom(hr)
		require.True(t, ok, "request should be attached to the context")
		captured = req
	})
	return r, &captured
}

func TestClient_Request(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/todos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	resp, err := newTestClient(r).Request(http.MethodGet, "/todos", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, "Created", resp.ReasonPhrase())
}

func TestClient_Request_Post(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	_, err := newTestClient(r).Request(http.MethodPost, "/todos", map[string]interface{}{"title": "日本語"}, nil, nil)
	require.NoError(t, err)

	req := *captured
	require.NotNil(t, req)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))

	parsed, err := req.ParsedBody()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "日本語"}, parsed)
}

func TestClient_Request_QueryString(t *testing.T) {
	r, captured := capture(t, http.MethodGet, "/todos")

	_, err := newTestClient(r).Request(http.MethodGet, "/todos?a=1&b=2", nil, nil, nil)
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, req.QueryParams())
	assert.Equal(t, "a=1&b=2", req.ServerParams["QUERY_STRING"])
	assert.Equal(t, "/todos", req.ServerParams["REQUEST_URI"])
}

func TestClient_Request_Cookie(t *testing.T) {
	r, captured := capture(t, http.MethodGet, "/todos")

	_, err := newTestClient(r).Request(http.MethodGet, "/todos", nil, map[string]string{
		"Cookie": "test=1;",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"test": "1"}, (*captured).CookieParams)
}

func TestClient_Request_Header(t *testing.T) {
	r, captured := capture(t, http.MethodGet, "/todos")

	_, err := newTestClient(r).Request(http.MethodGet, "/todos", nil, map[string]string{
		"X-My-Custom": "test",
	}, nil)
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, "test", req.HeaderLine("x-my-custom"))
	assert.Equal(t, "test", req.Header.Get("X-My-Custom"))
	assert.Equal(t, "test", req.ServerParams["HTTP_X-My-Custom"])
}

func TestClient_Request_Environment(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	_, err := newTestClient(r).Request(http.MethodPost, "/todos", `{"title":"日本語"}`, map[string]string{
		"Content-Type": "application/json",
	}, nil)
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, http.MethodPost, req.ServerParams["REQUEST_METHOD"])
	assert.Equal(t, "localhost", req.ServerParams["SERVER_NAME"])
	assert.Equal(t, "application/json", req.ServerParams["CONTENT_TYPE"])
	// codepoints, not bytes
	assert.Equal(t, "15", req.ServerParams["CONTENT_LENGTH"])
	assert.Equal(t, "15", req.Header.Get("Content-Length"))
	assert.Equal(t, int64(21), req.ContentLength)
	assert.Equal(t, "localhost", req.Host)
	assert.Equal(t, `{"title":"日本語"}`, req.RawBody())
}

func TestClient_Request_Host(t *testing.T) {
	r, captured := capture(t, http.MethodGet, "/todos")

	_, err := newTestClient(r).Request(http.MethodGet, "http://example.com:8080/todos", nil, nil, nil)
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, "example.com", req.ServerParams["SERVER_NAME"])
	assert.Equal(t, "8080", req.ServerParams["SERVER_PORT"])
	assert.Equal(t, "example.com:8080", req.Host)
}

func TestClient_Request_EscapedPath(t *testing.T) {
	r, captured := capture(t, http.MethodGet, "/files/{name}")

	resp, err := newTestClient(r).Request(http.MethodGet, "/files/a%2Fb?x=1", nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	req := *captured
	require.NotNil(t, req)
	assert.Equal(t, "/files/a%2Fb", req.ServerParams["REQUEST_URI"])
	assert.Equal(t, "/files/a%2Fb", req.URL.EscapedPath())
	assert.Equal(t, "/files/a/b", req.URL.Path)
	assert.Equal(t, "/files/a%2Fb?x=1", req.RequestURI)
}

func TestClient_Request_BodyBytes(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	_, err := newTestClient(r).Request(http.MethodPost, "/todos", "payload", nil, nil)
	require.NoError(t, err)

	req := *captured
	body := req.BodyBytes()
	assert.Equal(t, []byte("payload"), body)
	body[0] = 'P'
	assert.Equal(t, "payload", req.RawBody())

	var sb strings.Builder
	n, err := req.WriteTo(&sb)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "payload", sb.String())
}

func Test_lookupHeader(t *testing.T) {
	headers := map[string]string{
		"content-type": "text/plain",
		"Content-Type": "application/json",
		"CONTENT-TYPE": "text/html",
	}
	for i := 0; i < 20; i++ {
		got, ok := lookupHeader(headers, "Content-Type")
		require.True(t, ok)
		assert.Equal(t, "application/json", got)
	}

	got, ok := lookupHeader(map[string]string{"X-A": "1", "x-a": "2"}, "X-a")
	require.True(t, ok)
	assert.Equal(t, "1", got, "sorted keys decide when no key matches exactly")

	_, ok = lookupHeader(headers, "Accept")
	assert.False(t, ok)
}

func TestClient_Request_EmptyBody(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	_, err := newTestClient(r).Request(http.MethodPost, "/todos", 42, map[string]string{
		"Content-Type": "application/json",
	}, nil)
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, "", req.RawBody())
	assert.Equal(t, int64(0), req.ContentLength)
	assert.Equal(t, "0", req.ServerParams["CONTENT_LENGTH"])
	assert.Empty(t, req.UploadedFiles)

	parsed, err := req.ParsedBody()
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestClient_Request_File(t *testing.T) {
	r := chi.NewRouter()
	var result string
	r.Post("/todos", func(w http.ResponseWriter, hr *http.Request) {
		req, _ := RequestFrom(hr)
		f, ok := req.UploadedFiles.File("uploadfile")
		require.True(t, ok)
		content, err := f.Contents()
		require.NoError(t, err)
		result = string(content)
		assert.Equal(t, "test.txt", f.ClientFilename())
		assert.Equal(t, UploadErrOK, f.Error())
	})

	content := "testtest"
	path := writeTempFile(t, "upload.tmp", content)

	_, err := newTestClient(r).Request(http.MethodPost, "/todos", nil, map[string]string{
		"Content-Type": "multipart/form-data",
	}, Files{
		"uploadfile": UploadDescriptor{
			Name:    "test.txt",
			TmpName: path,
			Size:    int64(len(content)),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, content, result)
}

func TestClient_Request_MultiFile(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	first := writeTempFile(t, "first.txt", "test1")
	second := writeTempFile(t, "second.txt", "test2")
	multi, err := GenerateUploadFiles([]string{first, second})
	require.NoError(t, err)

	_, err = newTestClient(r).Request(http.MethodPost, "/todos", nil, map[string]string{
		"Content-Type": "multipart/form-data",
	}, Files{"uploadfiles": multi})
	require.NoError(t, err)

	list := (*captured).UploadedFiles.List("uploadfiles")
	require.Len(t, list, 2)
	for i, want := range []string{"test1", "test2"} {
		content, err := list[i].Contents()
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	}
	assert.Equal(t, "first.txt", list[0].ClientFilename())
}

func TestClient_Request_NestedFiles(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	avatar := writeTempFile(t, "avatar.png", "png")
	doc := writeTempFile(t, "doc.txt", "doc")

	_, err := newTestClient(r).Request(http.MethodPost, "/todos", nil, nil, Files{
		"profile": Files{
			"avatar": UploadDescriptor{TmpName: avatar},
			"docs":   UploadList{{TmpName: doc}},
		},
	})
	require.NoError(t, err)

	profile := (*captured).UploadedFiles.Group("profile")
	require.NotNil(t, profile)

	f, ok := profile.File("avatar")
	require.True(t, ok)
	assert.Equal(t, "avatar.png", f.ClientFilename())

	docs := profile.List("docs")
	require.Len(t, docs, 1)
	content, err := docs[0].Contents()
	require.NoError(t, err)
	assert.Equal(t, "doc", string(content))
}

func TestClient_RequestJSON(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	_, err := newTestClient(r).RequestJSON(http.MethodPost, "/todos", map[string]interface{}{"title": "にほんご"}, nil)
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, "application/json;charset=utf8", req.Header.Get("Content-Type"))
	parsed, err := req.ParsedBody()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "にほんご"}, parsed)
}

func TestClient_RequestJSON_ContentTypeOverride(t *testing.T) {
	r, captured := capture(t, http.MethodPost, "/todos")

	_, err := newTestClient(r).RequestJSON(http.MethodPost, "/todos", "plain", map[string]string{
		"content-type": "text/plain",
	})
	require.NoError(t, err)

	req := *captured
	assert.Equal(t, "text/plain", req.Header.Get("Content-Type"))
	assert.Equal(t, "plain", req.RawBody())
}

func TestClient_RequestJSON_ParsedResponse(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/todos", func(w http.ResponseWriter, hr *http.Request) {
		req, _ := RequestFrom(hr)
		w.Header().Set("Content-Type", "application/json;charset=utf8")
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, req.RawBody())
	})

	resp, err := newTestClient(r).RequestJSON(http.MethodPost, "/todos", map[string]interface{}{"title": "日本語"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode())

	parsed, err := resp.ParsedBody()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"title": "日本語"}, parsed)
}

func TestClient_Request_HelloWorld(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello, world!"))
	})

	resp, err := newTestClient(r).Get("/test", nil)
	require.NoError(t, err)

	raw, err := resp.RawBody()
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", raw)
}

func TestClient_Request_Errors(t *testing.T) {
	t.Run("application missing", func(t *testing.T) {
		_, err := (&Client{}).Request(http.MethodGet, "/", nil, nil, nil)
		assert.ErrorIs(t, err, ErrApplicationMissing)
	})

	t.Run("malformed url", func(t *testing.T) {
		client := newTestClient(chi.NewRouter())
		_, err := client.Request(http.MethodGet, "http://[::1", nil, nil, nil)
		assert.Error(t, err)
	})

	t.Run("application error", func(t *testing.T) {
		boom := fmt.Errorf("boom")
		client := NewClient(ApplicationFunc(func(req *Request, resp Response) (Response, error) {
			return nil, boom
		}))
		client.Logger = nil
		_, err := client.Request(http.MethodGet, "/", nil, nil, nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no response", func(t *testing.T) {
		client := NewClient(ApplicationFunc(func(req *Request, resp Response) (Response, error) {
			return nil, nil
		}))
		client.Logger = nil
		_, err := client.Request(http.MethodGet, "/", nil, nil, nil)
		assert.ErrorIs(t, err, ErrNoResponse)
	})
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestClient_LogHooks(t *testing.T) {
	logger := &recordingLogger{}
	client := NewClient(ApplicationFunc(func(req *Request, resp Response) (Response, error) {
		return resp.WithStatus(http.StatusAccepted, ""), nil
	}))
	client.Logger = logger

	var requestID string
	var status int
	client.RequestLogHook = func(l Logger, req *Request) {
		requestID = req.ID
		l.Printf("hook %s", req.Method)
	}
	client.ResponseLogHook = func(l Logger, resp Response) {
		status = resp.StatusCode()
	}

	_, err := client.Delete("/todos/1", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, requestID)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Contains(t, logger.lines, "hook DELETE")
}

func TestClient_InvalidLogger(t *testing.T) {
	client := NewClient(ApplicationFunc(func(req *Request, resp Response) (Response, error) {
		return resp, nil
	}))
	client.Logger = "not a logger"

	assert.Panics(t, func() {
		client.Get("/", nil) // nolint: errcheck
	})
}

func TestClient_ApplicationSettings(t *testing.T) {
	app := NewHandlerApp(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	app.Config.HTTPVersion = "2.0"
	client := NewClient(app)
	client.Logger = nil

	resp, err := client.Get("/", nil)
	require.NoError(t, err)
	assert.Equal(t, "2.0", resp.ProtocolVersion())
}
