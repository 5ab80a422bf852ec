package apptest

import (
	"net/http"
)

// Application is the program under test. Process receives the built request
// and a fresh response and returns the completed response.
type Application interface {
	Process(req *Request, resp Response) (Response, error)
}

// Configurer is implemented by applications that carry Settings.
type Configurer interface {
	Settings() Settings
}

// ApplicationFunc adapts a function to Application. It uses DefaultSettings.
type ApplicationFunc func(req *Request, resp Response) (Response, error)

func (f ApplicationFunc) Process(req *Request, resp Response) (Response, error) {
	return f(req, resp)
}

// HandlerApp runs an http.Handler as an Application. The handler sees the
// embedded *http.Request; RequestFrom recovers the full *Request from it.
type HandlerApp struct {
	Handler http.Handler
	Config  Settings
}

// NewHandlerApp wraps h with DefaultSettings.
func NewHandlerApp(h http.Handler) *HandlerApp {
	return &HandlerApp{
		Handler: h,
		Config:  DefaultSettings(),
	}
}

func (a *HandlerApp) Settings() Settings {
	return a.Config
}

// Process serves req with the handler and records what it writes into resp.
func (a *HandlerApp) Process(req *Request, resp Response) (Response, error) {
	w := &responseWriter{
		header: resp.Headers(),
		body:   resp.Body(),
		status: resp.StatusCode(),
	}
	a.Handler.ServeHTTP(w, req.Request)

	header := w.sent
	if header == nil {
		header = w.header
	}
	out := resp.WithStatus(w.status, "")
	for name := range resp.Headers() {
		if _, ok := header[name]; !ok {
			out = out.WithoutHeader(name)
		}
	}
	for name, values := range header {
		out = out.WithHeader(name, values...)
	}
	return out, nil
}

// responseWriter records a handler's output into a Response body stream.
// The header map is frozen into sent by the first WriteHeader or Write.
type responseWriter struct {
	header      http.Header
	sent        http.Header
	body        Stream
	status      int
	wroteHeader bool
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	w.sent = w.header.Clone()
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.body.Write(p)
}

// Flush is a no-op; everything is buffered until the handler returns.
func (w *responseWriter) Flush() {}
