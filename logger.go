package apptest

import (
	"fmt"
	"log"
	"os"
)

// defaultLogger is the logger provided with NewClient.
var defaultLogger = log.New(os.Stderr, "", log.LstdFlags)

// Logger interface allows to use other loggers than
// standard log.Logger.
type Logger interface {
	Printf(string, ...interface{})
}

// LeveledLogger is an interface that can be implemented by any logger or a
// logger wrapper to provide leveled logging. The methods accept a message
// string and a variadic number of key-value pairs.
type LeveledLogger interface {
	Error(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// hookLogger adapts an LeveledLogger to Logger for use by the existing hook functions
// without changing the API.
type hookLogger struct {
	LeveledLogger
}

func (h hookLogger) Printf(s string, args ...interface{}) {
	h.Info(fmt.Sprintf(s, args...))
}

// RequestLogHook allows a function to run before the request is handed to
// the application. The request is fully built: environment, cookies and
// uploaded files are in place.
type RequestLogHook func(Logger, *Request)

// ResponseLogHook is like RequestLogHook, but allows running a function
// on the response returned by the application.
type ResponseLogHook func(Logger, Response)
