package apptest

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultServerName = "localhost"

// Environment is the synthetic set of server parameters standing in for what
// a real HTTP server would hand to the application.
type Environment map[string]string

// MockEnvironment returns the default server parameters overlaid with
// params. Keys in params win.
func MockEnvironment(params map[string]string) Environment {
	env := Environment{
		"SERVER_PROTOCOL": "HTTP/1.1",
		"REQUEST_METHOD":  http.MethodGet,
		"REQUEST_URI":     "/",
		"QUERY_STRING":    "",
		"SERVER_NAME":     defaultServerName,
		"SERVER_PORT":     "80",
		"REMOTE_ADDR":     "127.0.0.1",
		"REQUEST_TIME":    strconv.FormatInt(time.Now().Unix(), 10),
	}
	for key, value := range params {
		env[key] = value
	}
	return env
}

// Copy returns an independent copy of the environment.
func (e Environment) Copy() Environment {
	c := make(Environment, len(e))
	for key, value := range e {
		c[key] = value
	}
	return c
}

// specialHeaders are server parameters that become headers without the
// HTTP_ prefix. They win over an HTTP_ entry for the same header.
var specialHeaders = map[string]string{
	"CONTENT_TYPE":   "Content-Type",
	"CONTENT_LENGTH": "Content-Length",
}

// Headers derives the request headers from the environment.
func (e Environment) Headers() http.Header {
	header := make(http.Header)
	for key, value := range e {
		if !strings.HasPrefix(key, "HTTP_") {
			continue
		}
		name := strings.ReplaceAll(strings.TrimPrefix(key, "HTTP_"), "_", "-")
		header.Set(name, value)
	}
	for key, name := range specialHeaders {
		if value, ok := e[key]; ok {
			header.Set(name, value)
		}
	}
	return header
}
